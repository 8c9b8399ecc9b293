package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"invaders/emu/log"
)

func TestShifter(t *testing.T) {
	var s Shifter
	s.WriteData(0xFF)
	s.WriteData(0x00)

	tests := []struct {
		amount uint8
		want   uint8
	}{
		{0, 0x00},
		{4, 0x0F},
		{7, 0x7F},
		{8, 0x00}, // only 3 bits used
		{12, 0x0F},
	}
	for _, tt := range tests {
		s.WriteAmount(tt.amount)
		if got := s.Result(); got != tt.want {
			t.Errorf("amount %d: Result() = %02x, want %02x", tt.amount, got, tt.want)
		}
	}
}

func TestPorts(t *testing.T) {
	dip := DIPSwitches{Ships: 5, ExtraShipAt: 1000, CoinInfo: true}
	m := NewMachine(Config{DIP: dip})

	if got := m.In(0); got != 0x0E {
		t.Errorf("In(0) = %02x, want 0e", got)
	}
	if got := m.In(1); got != 0x08 {
		t.Errorf("In(1) = %02x, want 08", got)
	}
	if got := m.In(2); got != 0x0A {
		t.Errorf("In(2) = %02x, want 0a", got)
	}

	// input ports are not writable.
	m.Out(1, 0xFF)
	if got := m.In(1); got != 0x08 {
		t.Errorf("In(1) = %02x after write, want 08", got)
	}

	m.Out(4, 0xAB)
	m.Out(4, 0xCD)
	m.Out(2, 0)
	if got := m.In(3); got != 0xCD {
		t.Errorf("In(3) = %02x, want cd", got)
	}
	m.Out(2, 3)
	if got := m.In(3); got != 0x6D {
		t.Errorf("In(3) = %02x, want 6d", got)
	}

	// writing the shift amount doesn't affect what port 2 reads.
	if got := m.In(2); got != 0x0A {
		t.Errorf("In(2) = %02x after shift amount write, want 0a", got)
	}

	// write-only and unmapped ports read as 0.
	for _, port := range []uint8{4, 5, 6, 7, 0xFF} {
		if got := m.In(port); got != 0 {
			t.Errorf("In(%d) = %02x, want 0", port, got)
		}
	}

	m.SetInputs(0x09, 0x8B)
	if in1, in2 := m.Inputs(); in1 != 0x09 || in2 != 0x8B {
		t.Errorf("Inputs() = %02x, %02x, want 09, 8b", in1, in2)
	}
	if got := m.In(2); got != 0x8B {
		t.Errorf("In(2) = %02x, want 8b", got)
	}
}

func TestDIPSwitches(t *testing.T) {
	tests := []struct {
		dip  DIPSwitches
		want uint8
	}{
		{DIPSwitches{Ships: 3, ExtraShipAt: 1500}, 0x80},
		{DIPSwitches{Ships: 6, ExtraShipAt: 1000, CoinInfo: true}, 0x0B},
		{DIPSwitches{Ships: 0, CoinInfo: true}, 0x00},
		{DIPSwitches{Ships: 9, CoinInfo: true}, 0x03},
	}
	for _, tt := range tests {
		if got := tt.dip.Bits(); got != tt.want {
			t.Errorf("%+v.Bits() = %02x, want %02x", tt.dip, got, tt.want)
		}
	}
}

type soundEvent struct {
	Start bool
	Sound Sound
}

type recordSink struct{ events []soundEvent }

func (r *recordSink) Start(s Sound) { r.events = append(r.events, soundEvent{true, s}) }
func (r *recordSink) Stop(s Sound)  { r.events = append(r.events, soundEvent{false, s}) }

func TestSoundEvents(t *testing.T) {
	sink := &recordSink{}
	m := NewMachine(Config{Sound: sink})

	m.Out(3, 0x01)
	m.Out(3, 0x03)
	m.Out(3, 0x03) // no edge
	m.Out(3, 0x02)
	m.Out(3, 0x22) // amplifier enable, not a sound
	m.Out(5, 0x10)
	m.Out(5, 0x01)

	want := []soundEvent{
		{true, SoundUFO},
		{true, SoundShot},
		{false, SoundUFO},
		{true, SoundUFOHit},
		{true, SoundFleet1},
		{false, SoundUFOHit},
	}
	if diff := cmp.Diff(want, sink.events); diff != "" {
		t.Errorf("sound events mismatch (-want +got):\n%s", diff)
	}
}

func TestROMProtection(t *testing.T) {
	m := NewMachine(Config{ProtectROM: true})
	if err := m.LoadImage([]byte{0xAA}, 0x100); err != nil {
		t.Fatal(err)
	}

	m.Write8(0x100, 0x55)
	if got := m.Read8(0x100); got != 0xAA {
		t.Errorf("ROM byte = %02x after write, want aa", got)
	}
	m.Write8(0x2000, 0x55)
	if got := m.Read8(0x2000); got != 0x55 {
		t.Errorf("RAM byte = %02x after write, want 55", got)
	}
}

func TestLoadImage(t *testing.T) {
	m := NewMachine(Config{})
	if err := m.LoadImage(make([]byte, 0x10000), 0); err != nil {
		t.Errorf("full address space image: %v", err)
	}
	if err := m.LoadImage(make([]byte, 0x101), 0xFF00); err == nil {
		t.Error("LoadImage should fail on overflowing image")
	}
}

// interrupt counting program: the RST 1 handler increments $2000, the RST 2
// handler increments $2001.
func interruptProgram(ei bool) []byte {
	prog := make([]byte, 0x30)
	copy(prog[0x00:], []byte{0xC3, 0x20, 0x00})             // JMP $0020
	copy(prog[0x08:], []byte{0x34, 0xFB, 0xC9})             // INR M; EI; RET
	copy(prog[0x10:], []byte{0x2C, 0x34, 0x2D, 0xFB, 0xC9}) // INR L; INR M; DCR L; EI; RET
	copy(prog[0x20:], []byte{0x21, 0x00, 0x20})             // LXI H,$2000
	if ei {
		copy(prog[0x23:], []byte{0xFB, 0xC3, 0x24, 0x00}) // EI; JMP $0024
	} else {
		copy(prog[0x23:], []byte{0x00, 0xC3, 0x24, 0x00}) // NOP; JMP $0024
	}
	return prog
}

// longest 8080 instruction.
const maxInstrCycles = 18

func TestRunOneFrame(t *testing.T) {
	m := newTestMachine(t, interruptProgram(true)...)

	const nframes = 10
	for i := range nframes {
		cycles, err := m.RunOneFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if cycles < CyclesPerFrame || cycles >= CyclesPerFrame+maxInstrCycles {
			t.Errorf("frame %d: %d cycles, want [%d, %d)", i, cycles, CyclesPerFrame, CyclesPerFrame+maxInstrCycles)
		}
	}

	if got := m.Read8(0x2000); got != nframes {
		t.Errorf("RST 1 count = %d, want %d", got, nframes)
	}
	// the last vblank interrupt is accepted but its handler runs in the
	// next frame.
	if got := m.Read8(0x2001); got != nframes-1 {
		t.Errorf("RST 2 count = %d, want %d", got, nframes-1)
	}
	if m.CPU.PC != 0x10 {
		t.Errorf("PC = %04x, want 0010", m.CPU.PC)
	}
	if m.Frames != nframes {
		t.Errorf("Frames = %d, want %d", m.Frames, nframes)
	}
}

func TestRunOneFrameInterruptsDisabled(t *testing.T) {
	m := newTestMachine(t, interruptProgram(false)...)

	for range 3 {
		if _, err := m.RunOneFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if a, b := m.Read8(0x2000), m.Read8(0x2001); a != 0 || b != 0 {
		t.Errorf("interrupt counts = %d, %d, want 0, 0", a, b)
	}
	if pc := m.CPU.PC; pc < 0x24 || pc > 0x26 {
		t.Errorf("PC = %04x, want inside main loop", pc)
	}
}

func TestRunOneFrameError(t *testing.T) {
	m := NewMachine(Config{StrictOpcodes: true})
	// 3 NOPs then an undocumented opcode.
	if err := m.LoadImage([]byte{0x00, 0x00, 0x00, 0xED}, 0); err != nil {
		t.Fatal(err)
	}

	cycles, err := m.RunOneFrame()
	if err == nil {
		t.Fatal("RunOneFrame should fail")
	}
	if cycles != 12 {
		t.Errorf("cycles = %d, want 12", cycles)
	}
	if m.CPU.PC != 3 {
		t.Errorf("PC = %04x, want 0003", m.CPU.PC)
	}
}

func TestVRAMPattern(t *testing.T) {
	m := newTestMachine(t,
		0x21, 0x00, 0x24, // LXI H,$2400
		0x36, 0x01, // MVI M,$01
		0x21, 0x5A, 0x25, // LXI H,$255A
		0x36, 0x80, // MVI M,$80
		0x76, // HLT
	)

	cycles, err := m.RunOneFrame()
	if err != nil {
		t.Fatal(err)
	}
	if cycles < CyclesPerFrame {
		t.Errorf("cycles = %d, want at least %d", cycles, CyclesPerFrame)
	}
	if !m.CPU.IsHalted() {
		t.Error("CPU should be halted")
	}

	vram := m.VRAM()
	if len(vram) != VRAMSize {
		t.Fatalf("len(VRAM) = %d, want %d", len(vram), VRAMSize)
	}
	if vram[0] != 0x01 || vram[0x15A] != 0x80 {
		t.Errorf("vram[0] = %02x, vram[15a] = %02x, want 01, 80", vram[0], vram[0x15A])
	}

	img := NewFrame()
	Rasterize(img, vram, false)

	// byte 0 bit 0 is the bottom left pixel.
	px := func(x, y int) rgba {
		off := img.PixOffset(x, y)
		return rgba(img.Pix[off : off+4])
	}
	if got := px(0, ScreenHeight-1); got != white {
		t.Errorf("pixel (0, 255) = %v, want white", got)
	}
	if got := px(0, ScreenHeight-2); got != black {
		t.Errorf("pixel (0, 254) = %v, want black", got)
	}
	// byte $15A: column 10, rows 208-215, bit 7 is row 215.
	if got := px(10, ScreenHeight-1-215); got != white {
		t.Errorf("pixel (10, 40) = %v, want white", got)
	}

	Rasterize(img, vram, true)
	if got := px(0, ScreenHeight-1); got != green {
		t.Errorf("overlay pixel (0, 255) = %v, want green", got)
	}
	if got := px(10, ScreenHeight-1-215); got != red {
		t.Errorf("overlay pixel (10, 40) = %v, want red", got)
	}
}

func TestMachineReset(t *testing.T) {
	sink := &recordSink{}
	m := NewMachine(Config{Sound: sink, DIP: DIPSwitches{Ships: 5}})
	// EI; HLT
	if err := m.LoadImage([]byte{0xFB, 0x76}, 0); err != nil {
		t.Fatal(err)
	}
	m.Write8(0x2000, 0x42)
	for range 2 {
		if _, err := m.CPU.Step(); err != nil {
			t.Fatal(err)
		}
	}
	m.Out(4, 0xAA)
	m.Out(2, 0x03)
	m.Out(3, 0x01)
	m.Out(5, 0x01)
	sink.events = nil

	m.Reset()

	if m.CPU.PC != 0 || m.CPU.IE || m.CPU.IsHalted() {
		t.Errorf("PC, IE, halted = %04x, %t, %t, want 0000, false, false", m.CPU.PC, m.CPU.IE, m.CPU.IsHalted())
	}
	if got := m.In(3); got != 0 {
		t.Errorf("shift result = %02x, want 00", got)
	}
	want := []soundEvent{{false, SoundUFO}, {false, SoundFleet1}}
	if diff := cmp.Diff(want, sink.events); diff != "" {
		t.Errorf("sound events mismatch (-want +got):\n%s", diff)
	}
	// memory and input ports survive.
	if got := m.Read8(0x2000); got != 0x42 {
		t.Errorf("RAM = %02x, want 42", got)
	}
	if got, want := m.In(2), (DIPSwitches{Ships: 5}).Bits(); got != want {
		t.Errorf("port 2 = %02x, want %02x", got, want)
	}
}

func TestIOBusLogModule(t *testing.T) {
	m := NewMachine(Config{})
	if m.IO.Mod != log.ModIO {
		t.Errorf("I/O bus logs on %s, want %s", m.IO.Mod, log.ModIO)
	}
	if m.Bus.Mod != log.ModHwIo {
		t.Errorf("memory bus logs on %s, want %s", m.Bus.Mod, log.ModHwIo)
	}
	// unmapped port.
	if got := m.In(7); got != 0 {
		t.Errorf("In(7) = %02x, want 00", got)
	}
}

func TestRunOneFrameInterruptAfterEI(t *testing.T) {
	// From $0100, NOPs up to the EI crossing the middle of the frame, then
	// HLT. The RST 1 handler stores 1 at $2000 and halts.
	const nops = midFrameCycles / 4
	prog := make([]byte, 0x100+nops+2)
	copy(prog[0x08:], []byte{0x3E, 0x01, 0x32, 0x00, 0x20, 0x76}) // MVI A,1; STA $2000; HLT
	prog[0x100+nops] = 0xFB                                       // EI
	prog[0x100+nops+1] = 0x76                                     // HLT

	m := newTestMachine(t, prog...)
	m.CPU.PC = 0x100

	cycles, err := m.RunOneFrame()
	if err != nil {
		t.Fatal(err)
	}
	if cycles < CyclesPerFrame || cycles >= CyclesPerFrame+maxInstrCycles {
		t.Errorf("%d cycles, want [%d, %d)", cycles, CyclesPerFrame, CyclesPerFrame+maxInstrCycles)
	}
	if got := m.Read8(0x2000); got != 1 {
		t.Fatalf("RST 1 handler didn't run")
	}
	if ret, want := m.CPU.Read16(0x23FE), uint16(0x100+nops+2); ret != want {
		t.Errorf("return address = %04x, want %04x", ret, want)
	}
}
