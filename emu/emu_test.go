package emu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"invaders/emu/shared"
	"invaders/hw"
	"invaders/rom"
)

func testRom(prog ...byte) *rom.Rom {
	data := make([]byte, rom.MinSize)
	copy(data, prog)
	return &rom.Rom{Name: "test", Data: data}
}

func newTestEmulator(t *testing.T, cfg Config, prog ...byte) *Emulator {
	t.Helper()
	e, err := New(testRom(prog...), cfg, shared.NewState())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

type cpuState struct {
	A, B, C, D, E, H, L uint8
	SP, PC              uint16
	P                   hw.P
	IE                  bool
	Cycles              int64
}

func cpuStateOf(c *hw.CPU) cpuState {
	return cpuState{
		A: c.A, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP, PC: c.PC, P: c.P, IE: c.IE, Cycles: c.Cycles,
	}
}

// counting loop: INR A; INX B; JMP $0000
var loopProg = []byte{0x3C, 0x03, 0xC3, 0x00, 0x00}

func TestPauseZeroStepLoss(t *testing.T) {
	e := newTestEmulator(t, DefaultConfig(), loopProg...)

	for range 3 {
		if _, err := e.RunOneFrame(); err != nil {
			t.Fatal(err)
		}
	}

	e.State.Pause()
	before := cpuStateOf(e.Machine.CPU)
	for range 5 {
		cycles, err := e.RunOneFrame()
		if err != nil {
			t.Fatal(err)
		}
		if cycles != 0 {
			t.Errorf("paused frame ran %d cycles", cycles)
		}
	}
	if diff := cmp.Diff(before, cpuStateOf(e.Machine.CPU)); diff != "" {
		t.Fatalf("CPU state changed while paused (-before +after):\n%s", diff)
	}

	e.State.Unpause()
	cycles, err := e.RunOneFrame()
	if err != nil {
		t.Fatal(err)
	}
	if cycles < hw.CyclesPerFrame {
		t.Errorf("cycles = %d after unpause, want at least %d", cycles, hw.CyclesPerFrame)
	}
	if got := e.Machine.CPU.Cycles; got != before.Cycles+cycles {
		t.Errorf("total cycles = %d, want %d", got, before.Cycles+cycles)
	}
}

func TestRunOneFramePublishesVRAM(t *testing.T) {
	e := newTestEmulator(t, DefaultConfig(),
		0x21, 0x10, 0x24, // LXI H,$2410
		0x36, 0xA5, // MVI M,$A5
		0x76, // HLT
	)

	if e.State.FramebufferByte(0x10) != 0 {
		t.Fatal("framebuffer should be blank before the first frame")
	}
	if _, err := e.RunOneFrame(); err != nil {
		t.Fatal(err)
	}
	if got := e.State.FramebufferByte(0x10); got != 0xA5 {
		t.Errorf("FramebufferByte(0x10) = %02x, want a5", got)
	}
	if !e.Machine.CPU.IsHalted() {
		t.Error("CPU should be halted")
	}
}

func TestRunOneFrameSyncsInputs(t *testing.T) {
	e := newTestEmulator(t, DefaultConfig(),
		0xDB, 0x01, // IN 1
		0x32, 0x00, 0x20, // STA $2000
		0x76, // HLT
	)
	e.State.SetButton(hw.BtnCoin, true)

	if _, err := e.RunOneFrame(); err != nil {
		t.Fatal(err)
	}
	if got := e.Machine.Read8(0x2000); got != 0x09 {
		t.Errorf("port 1 read by the CPU = %02x, want 09", got)
	}
}

func TestNewAppliesDIPSwitches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DIP = hw.DIPSwitches{Ships: 4, ExtraShipAt: 1000, CoinInfo: false}
	e := newTestEmulator(t, cfg)

	if got := e.State.InputPort(2); got != 0x89 {
		t.Errorf("port 2 = %02x, want 89", got)
	}
	if got := e.Machine.In(2); got != 0x89 {
		t.Errorf("In(2) = %02x, want 89", got)
	}
}

func TestRunOneFrameReset(t *testing.T) {
	e := newTestEmulator(t, DefaultConfig(), loopProg...)
	if _, err := e.RunOneFrame(); err != nil {
		t.Fatal(err)
	}
	e.Machine.CPU.IE = true

	// reset is performed even while paused.
	e.State.Pause()
	e.State.RequestReset()
	if _, err := e.RunOneFrame(); err != nil {
		t.Fatal(err)
	}

	c := e.Machine.CPU
	want := cpuState{Cycles: c.Cycles}
	if diff := cmp.Diff(want, cpuStateOf(c)); diff != "" {
		t.Errorf("CPU state after reset mismatch (-want +got):\n%s", diff)
	}
	if e.State.TakeReset() {
		t.Error("reset request should have been consumed")
	}
}

func TestRun(t *testing.T) {
	e := newTestEmulator(t, DefaultConfig(), loopProg...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*FramePeriod)
	defer cancel()

	start := time.Now()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	frames := e.State.Frames()
	if frames == 0 {
		t.Fatal("no frame published")
	}
	// frames are paced, never faster than the frame period.
	if maxFrames := int64(time.Since(start)/FramePeriod) + 1; frames > maxFrames {
		t.Errorf("%d frames published, want at most %d", frames, maxFrames)
	}
	if mhz := e.State.MeasuredClockMHz(); mhz <= 0 || mhz > 2.2 {
		t.Errorf("MeasuredClockMHz() = %.3f, want in (0, 2.2]", mhz)
	}
}

func TestRunUnsupportedOpcode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Emulation.StrictOpcodes = true
	e := newTestEmulator(t, cfg, 0x00, 0xD9)

	err := e.Run(context.Background())
	var uerr *hw.UnsupportedOpcodeError
	if !errors.As(err, &uerr) {
		t.Fatalf("Run() = %v, want UnsupportedOpcodeError", err)
	}
	if uerr.PC != 1 || uerr.Opcode != 0xD9 {
		t.Errorf("got %+v, want opcode d9 at 0001", *uerr)
	}
}

func TestTitle(t *testing.T) {
	if got, want := title(1.996, false), "Space Invaders - 2.00 MHz"; got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
	if got, want := title(0, true), "Space Invaders - 0.00 MHz - Paused"; got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
}
