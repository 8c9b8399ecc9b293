package emu

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"invaders/emu/shared"
)

func TestKeyText(t *testing.T) {
	var k Key
	if err := k.UnmarshalText([]byte("Space")); err != nil {
		t.Fatal(err)
	}
	if k != Key(sdl.SCANCODE_SPACE) {
		t.Errorf("UnmarshalText(Space) = %d, want %d", k, sdl.SCANCODE_SPACE)
	}
	text, err := Key(sdl.SCANCODE_LEFT).MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "Left" {
		t.Errorf("MarshalText() = %q, want Left", text)
	}
	if err := k.UnmarshalText([]byte("foobar")); err == nil {
		t.Error("UnmarshalText(foobar) should fail")
	}
}

func TestKeyboardButtons(t *testing.T) {
	state := shared.NewState()
	kb := newKeyboard(DefaultInputConfig(), state)

	kb.keyDown(Key(sdl.SCANCODE_SPACE))
	kb.keyDown(Key(sdl.SCANCODE_A))
	if got := state.InputPort(1); got != 0x18 {
		t.Errorf("port 1 = %02x, want 18", got)
	}
	if got := state.InputPort(2); got != 0x20 {
		t.Errorf("port 2 = %02x, want 20", got)
	}

	kb.keyUp(Key(sdl.SCANCODE_SPACE))
	kb.keyUp(Key(sdl.SCANCODE_A))
	if got := state.InputPort(1); got != 0x08 {
		t.Errorf("port 1 = %02x, want 08", got)
	}
	if got := state.InputPort(2); got != 0x00 {
		t.Errorf("port 2 = %02x, want 00", got)
	}
}

func TestKeyboardPause(t *testing.T) {
	state := shared.NewState()
	kb := newKeyboard(DefaultInputConfig(), state)

	pause := Key(sdl.SCANCODE_P)
	kb.keyDown(pause)
	if !state.IsPaused() {
		t.Fatal("pause key should pause")
	}
	kb.keyDown(pause)
	if state.IsPaused() {
		t.Fatal("pause key should resume")
	}

	// fire resumes without firing.
	kb.keyDown(pause)
	kb.keyDown(Key(sdl.SCANCODE_SPACE))
	if state.IsPaused() {
		t.Error("fire should resume")
	}
	if got := state.InputPort(1); got != 0x08 {
		t.Errorf("port 1 = %02x, want 08", got)
	}

	// so does any unbound key.
	kb.keyDown(pause)
	kb.keyDown(Key(sdl.SCANCODE_F1))
	if state.IsPaused() {
		t.Error("unbound key should resume")
	}

	// bound keys other than fire don't.
	kb.keyDown(pause)
	kb.keyDown(Key(sdl.SCANCODE_C))
	if !state.IsPaused() {
		t.Error("coin key should not resume")
	}
}

func TestKeyboardReset(t *testing.T) {
	state := shared.NewState()
	kb := newKeyboard(DefaultInputConfig(), state)

	state.Pause()
	if quit := kb.keyDown(Key(sdl.SCANCODE_F3)); quit {
		t.Fatal("reset key should not quit")
	}
	if !state.TakeReset() {
		t.Error("reset key should request a reset")
	}
	if !state.IsPaused() {
		t.Error("reset key should leave pause alone")
	}
}

func TestKeyboardEvents(t *testing.T) {
	state := shared.NewState()
	kb := newKeyboard(DefaultInputConfig(), state)

	keyEvent := func(state uint8, code sdl.Scancode, repeat uint8) *sdl.KeyboardEvent {
		return &sdl.KeyboardEvent{
			State:  state,
			Repeat: repeat,
			Keysym: sdl.Keysym{Scancode: code},
		}
	}

	if kb.handleEvent(keyEvent(sdl.PRESSED, sdl.SCANCODE_C, 0)) {
		t.Fatal("coin shouldn't quit")
	}
	if got := state.InputPort(1); got != 0x09 {
		t.Errorf("port 1 = %02x, want 09", got)
	}

	kb.handleEvent(keyEvent(sdl.PRESSED, sdl.SCANCODE_P, 0))
	kb.handleEvent(keyEvent(sdl.PRESSED, sdl.SCANCODE_P, 1))
	if !state.IsPaused() {
		t.Error("repeated key events should be ignored")
	}

	kb.handleEvent(keyEvent(sdl.RELEASED, sdl.SCANCODE_C, 0))
	if got := state.InputPort(1); got != 0x08 {
		t.Errorf("port 1 = %02x, want 08", got)
	}

	if !kb.handleEvent(keyEvent(sdl.PRESSED, sdl.SCANCODE_ESCAPE, 0)) {
		t.Error("escape should quit")
	}
	if !kb.handleEvent(&sdl.QuitEvent{}) {
		t.Error("quit event should quit")
	}
}
