package emu

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"invaders/emu/log"
	"invaders/emu/shared"
	"invaders/hw"
)

// Key is a physical keyboard key, stored in configuration files by its SDL
// scancode name.
type Key sdl.Scancode

func (k Key) String() string {
	return sdl.GetScancodeName(sdl.Scancode(k))
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	code := sdl.GetScancodeFromName(string(text))
	if code == sdl.SCANCODE_UNKNOWN {
		return fmt.Errorf("unknown key %q", text)
	}
	*k = Key(code)
	return nil
}

type InputConfig struct {
	Coin    Key `toml:"coin"`
	P1Start Key `toml:"p1_start"`
	P2Start Key `toml:"p2_start"`
	P1Fire  Key `toml:"p1_fire"`
	P1Left  Key `toml:"p1_left"`
	P1Right Key `toml:"p1_right"`
	P2Fire  Key `toml:"p2_fire"`
	P2Left  Key `toml:"p2_left"`
	P2Right Key `toml:"p2_right"`
	Tilt    Key `toml:"tilt"`

	Pause Key `toml:"pause"`
	Reset Key `toml:"reset"`
	Quit  Key `toml:"quit"`
}

func DefaultInputConfig() InputConfig {
	return InputConfig{
		Coin:    Key(sdl.SCANCODE_C),
		P1Start: Key(sdl.SCANCODE_1),
		P2Start: Key(sdl.SCANCODE_2),
		P1Fire:  Key(sdl.SCANCODE_SPACE),
		P1Left:  Key(sdl.SCANCODE_LEFT),
		P1Right: Key(sdl.SCANCODE_RIGHT),
		P2Fire:  Key(sdl.SCANCODE_S),
		P2Left:  Key(sdl.SCANCODE_A),
		P2Right: Key(sdl.SCANCODE_D),
		Tilt:    Key(sdl.SCANCODE_T),
		Pause:   Key(sdl.SCANCODE_P),
		Reset:   Key(sdl.SCANCODE_F3),
		Quit:    Key(sdl.SCANCODE_ESCAPE),
	}
}

func (cfg *InputConfig) buttons() map[Key]hw.Button {
	return map[Key]hw.Button{
		cfg.Coin:    hw.BtnCoin,
		cfg.P1Start: hw.BtnP1Start,
		cfg.P2Start: hw.BtnP2Start,
		cfg.P1Fire:  hw.BtnP1Fire,
		cfg.P1Left:  hw.BtnP1Left,
		cfg.P1Right: hw.BtnP1Right,
		cfg.P2Fire:  hw.BtnP2Fire,
		cfg.P2Left:  hw.BtnP2Left,
		cfg.P2Right: hw.BtnP2Right,
		cfg.Tilt:    hw.BtnTilt,
	}
}

// keyboard translates key events into button presses and pause changes on
// the shared state.
type keyboard struct {
	state   *shared.State
	buttons map[Key]hw.Button
	pause   Key
	reset   Key
	quit    Key
}

func newKeyboard(cfg InputConfig, state *shared.State) *keyboard {
	return &keyboard{
		state:   state,
		buttons: cfg.buttons(),
		pause:   cfg.Pause,
		reset:   cfg.Reset,
		quit:    cfg.Quit,
	}
}

// keyDown handles a key press and reports whether the user asked to quit.
//
// While paused, P1 fire and any key not bound to a button resume the
// emulation. P1 fire doesn't fire in that case.
func (kb *keyboard) keyDown(key Key) (quit bool) {
	switch key {
	case kb.quit:
		return true
	case kb.pause:
		paused := kb.state.TogglePause()
		log.ModInput.DebugZ("pause toggled").Bool("paused", paused).End()
		return false
	case kb.reset:
		kb.state.RequestReset()
		log.ModInput.DebugZ("reset requested").End()
		return false
	}

	btn, ok := kb.buttons[key]
	switch {
	case !ok:
		kb.state.Unpause()
	case btn == hw.BtnP1Fire && kb.state.IsPaused():
		kb.state.Unpause()
	default:
		kb.state.SetButton(btn, true)
	}
	return false
}

func (kb *keyboard) keyUp(key Key) {
	if btn, ok := kb.buttons[key]; ok {
		kb.state.SetButton(btn, false)
	}
}

// handleEvent processes an SDL event and reports whether the application
// should quit.
func (kb *keyboard) handleEvent(event sdl.Event) (quit bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true
	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return false
		}
		key := Key(e.Keysym.Scancode)
		if e.State == sdl.PRESSED {
			return kb.keyDown(key)
		}
		kb.keyUp(key)
	}
	return false
}
