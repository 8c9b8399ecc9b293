package hw

import (
	"fmt"

	"invaders/emu/log"
	"invaders/hw/hwio"
)

const (
	ClockHz        = 2_000_000
	FrameHz        = 60
	CyclesPerFrame = ClockHz / FrameHz

	// The video hardware raises RST 1 when the beam reaches the middle of
	// the screen and RST 2 at vertical blank.
	midFrameCycles = CyclesPerFrame / 2
)

// Memory map.
const (
	ROMStart  = 0x0000
	ROMSize   = 0x2000
	RAMStart  = 0x2000
	RAMSize   = 0x0400
	VRAMStart = 0x2400
	VRAMSize  = 0x1C00
	HighStart = 0x4000
	HighSize  = 0xC000
)

// Config holds the board options.
type Config struct {
	ProtectROM    bool        // drop CPU writes to $0000-$1FFF
	StrictOpcodes bool        // fail on undocumented opcodes
	DIP           DIPSwitches // operator settings
	Sound         SoundSink   // optional
}

// Machine is the Space Invaders board: an 8080 CPU, 64K of memory, the
// input and output ports and the shift register.
type Machine struct {
	CPU   *CPU
	Ports Ports

	Bus *hwio.Table // 16-bit address space
	IO  *hwio.Table // 256 I/O ports

	Frames int64 // number of completed frames

	mem   [0x10000]uint8
	areas [4]hwio.Mem
}

// NewMachine creates a board at power-up state. Execution starts at $0000.
func NewMachine(cfg Config) *Machine {
	m := &Machine{
		Bus: hwio.NewTable("bus", 0x10000),
		IO:  hwio.NewTable("io", 0x100),
	}
	m.IO.Mod = log.ModIO

	m.areas = [4]hwio.Mem{
		{Name: "ROM", Data: m.mem[:], VSize: ROMSize},
		{Name: "RAM", Data: m.mem[:], VSize: RAMSize},
		{Name: "VRAM", Data: m.mem[:], VSize: VRAMSize},
		{Name: "HIGH", Data: m.mem[:], VSize: HighSize},
	}
	if cfg.ProtectROM {
		m.areas[0].Flags = hwio.MemFlagReadOnly
	}
	m.Bus.MapMem(ROMStart, &m.areas[0])
	m.Bus.MapMem(RAMStart, &m.areas[1])
	m.Bus.MapMem(VRAMStart, &m.areas[2])
	m.Bus.MapMem(HighStart, &m.areas[3])

	m.Ports.sound = cfg.Sound
	if m.Ports.sound == nil {
		m.Ports.sound = nopSoundSink{}
	}
	hwio.MustInitRegs(&m.Ports)
	m.Ports.INP2.Value = cfg.DIP.Bits()
	m.IO.MapBank(0x00, &m.Ports, 0)

	m.CPU = NewCPU(m.Bus, m.IO, ROMStart)
	m.CPU.Strict = cfg.StrictOpcodes
	return m
}

// Reset performs a hardware reset, as the cabinet does at power up: the CPU
// restarts at $0000 with interrupts disabled, the shift register is cleared
// and all sounds are silenced. Memory and input ports are left untouched.
func (m *Machine) Reset() {
	m.CPU.Reset(ROMStart)
	m.Ports.Shifter = Shifter{}
	m.Out(3, 0)
	m.Out(5, 0)

	log.ModEmu.InfoZ("Machine reset").Int64("frames", m.Frames).End()
}

// LoadImage copies buf into memory, starting at address at. It bypasses
// ROM write protection.
func (m *Machine) LoadImage(buf []byte, at uint16) error {
	if len(buf) > len(m.mem)-int(at) {
		return fmt.Errorf("image too large: %d bytes at $%04X", len(buf), at)
	}
	copy(m.mem[at:], buf)

	log.ModMem.DebugZ("image loaded").
		Hex16("at", at).
		Int("size", len(buf)).
		End()
	return nil
}

// Read8 reads the byte at addr, without side effects.
func (m *Machine) Read8(addr uint16) uint8 { return m.Bus.Peek8(addr) }

// Write8 writes val at addr, as the CPU would.
func (m *Machine) Write8(addr uint16, val uint8) { m.Bus.Write8(addr, val) }

// In reads input port n.
func (m *Machine) In(n uint8) uint8 { return m.IO.Read8(uint16(n), false) }

// Out writes val to output port n.
func (m *Machine) Out(n, val uint8) { m.IO.Write8(uint16(n), val) }

// VRAM returns the video memory. The returned slice aliases the machine
// memory, it must not be used concurrently with RunOneFrame.
func (m *Machine) VRAM() []byte {
	return m.mem[VRAMStart : VRAMStart+VRAMSize]
}

// SetInputs sets the values of input ports 1 and 2.
func (m *Machine) SetInputs(in1, in2 uint8) {
	m.Ports.INP1.Value = in1
	m.Ports.INP2.Value = in2
}

// Inputs returns the values of input ports 1 and 2.
func (m *Machine) Inputs() (in1, in2 uint8) {
	return m.Ports.INP1.Value, m.Ports.INP2.Value
}

// RunOneFrame runs the CPU for one video frame, raising the mid-screen
// interrupt (RST 1) after half of it and the vblank one (RST 2) at the end.
// Interrupts are dropped when the CPU has them disabled. When one is raised
// right after EI, it is held until the next instruction completes.
//
// It returns the number of cycles executed, at least CyclesPerFrame and
// less than CyclesPerFrame plus the cost of the longest instruction (of two
// instructions when vblank comes right after EI). The cycles spent accepting
// an interrupt are not accounted. On error, the
// cycles executed so far are returned along with it.
func (m *Machine) RunOneFrame() (int64, error) {
	var cycles int64

	run := func(until int64) error {
		for cycles < until {
			n, err := m.CPU.Step()
			if err != nil {
				return err
			}
			cycles += int64(n)
		}
		return nil
	}

	interrupt := func(n uint8) error {
		if m.CPU.InterruptDelayed() {
			if err := run(cycles + 1); err != nil {
				return err
			}
		}
		m.CPU.Interrupt(n)
		return nil
	}

	if err := run(midFrameCycles); err != nil {
		return cycles, err
	}
	if err := interrupt(1); err != nil {
		return cycles, err
	}
	if err := run(CyclesPerFrame); err != nil {
		return cycles, err
	}
	if err := interrupt(2); err != nil {
		return cycles, err
	}

	m.Frames++
	return cycles, nil
}
