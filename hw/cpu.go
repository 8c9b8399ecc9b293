package hw

import (
	"fmt"

	"invaders/emu/log"
	"invaders/hw/hwio"
)

// Cycles consumed by each Step while the CPU is halted.
const haltCycles = 4

// CPU is an Intel 8080 core. It executes instructions from Bus and routes
// IN/OUT instructions to IO.
type CPU struct {
	Bus *hwio.Table // memory bus
	IO  *hwio.Table // I/O ports bus

	Cycles int64 // cycles executed since power up

	// cpu registers
	A, B, C, D, E, H, L uint8
	SP, PC              uint16
	P                   P
	IE                  bool // interrupt enable

	// Strict makes undocumented opcodes fail with an UnsupportedOpcodeError
	// instead of executing the instruction they alias on the silicon.
	Strict bool

	halted bool
	taken  bool // set by conditional instructions taking their longer path

	// eiDelay is set by EI. Interrupts are only accepted once the
	// instruction following EI has completed.
	eiDelay bool
}

// NewCPU creates a CPU at power-up state, starting execution at entry.
func NewCPU(bus, io *hwio.Table, entry uint16) *CPU {
	return &CPU{
		Bus: bus,
		IO:  io,
		PC:  entry,
	}
}

// Reset puts the CPU back in its architectural reset state.
func (c *CPU) Reset(entry uint16) {
	c.A, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0
	c.SP = 0
	c.P = 0
	c.IE = false
	c.eiDelay = false
	c.halted = false
	c.PC = entry
}

// UnsupportedOpcodeError is returned by Step when the CPU meets an opcode it
// won't execute.
type UnsupportedOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode $%02X (%s) at $%04X", e.Opcode, OpcodeName(e.Opcode), e.PC)
}

// Step executes one instruction and returns the number of cycles it took.
// While halted, Step doesn't fetch anything and burns a few idle cycles.
//
// On error, the CPU state is left as it was before the call.
func (c *CPU) Step() (int, error) {
	if c.halted {
		c.Cycles += haltCycles
		return haltCycles, nil
	}

	opcode := c.Bus.Read8(c.PC, false)
	op := &ops[opcode]
	if op.undoc && c.Strict {
		return 0, &UnsupportedOpcodeError{Opcode: opcode, PC: c.PC}
	}

	c.eiDelay = false
	c.PC++
	c.taken = false
	op.fn(c)

	cycles := int(op.cycles)
	if c.taken {
		cycles = int(op.taken)
	}
	c.Cycles += int64(cycles)
	return cycles, nil
}

// Interrupt requests a hardware interrupt, which jumps to the restart
// vector n (that's address 8*n). The interrupt is only accepted if
// interrupts are enabled, and not just enabled by the last instruction.
// Once accepted interrupts get disabled, and a halted CPU is resumed.
// Interrupt reports whether the interrupt has been accepted.
func (c *CPU) Interrupt(n uint8) bool {
	if !c.IE || c.eiDelay {
		log.ModCPU.DebugZ("interrupt ignored").
			Uint("rst", uint64(n&7)).
			Bool("IE", c.IE).
			String("op", OpcodeName(c.Read8(c.PC))).
			End()
		return false
	}

	prevpc := c.PC
	c.IE = false
	c.halted = false
	c.push16(c.PC)
	c.PC = uint16(n&7) * 8

	log.ModCPU.DebugZ("interrupt").
		Uint("rst", uint64(n&7)).
		Hex16("from", prevpc).
		String("next", OpcodeName(c.Read8(prevpc))).
		End()
	return true
}

// InterruptDelayed reports whether the last executed instruction is EI, in
// which case interrupts are held until the next one completes.
func (c *CPU) InterruptDelayed() bool {
	return c.eiDelay
}

// IsHalted reports whether the CPU executed HLT and is waiting for an
// interrupt.
func (c *CPU) IsHalted() bool {
	return c.halted
}

func (c *CPU) halt() {
	c.halted = true
	log.ModCPU.DebugZ("CPU halted").
		Hex16("PC", c.PC-1).
		Bool("IE", c.IE).
		End()
}

/* register pairs */

func (c *CPU) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *CPU) SetBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) SetDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) SetHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }

// PSW returns the processor status word, accumulator and flags.
func (c *CPU) PSW() uint16 { return uint16(c.A)<<8 | uint16(c.P.psw()) }

func (c *CPU) SetPSW(v uint16) {
	c.A = uint8(v >> 8)
	c.P = pswToFlags(uint8(v))
}

// reg returns the value of the register encoded as r in opcodes (B, C, D,
// E, H, L, M, A), where M is the memory pointed at by HL.
func (c *CPU) reg(r uint8) uint8 {
	switch r {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.Read8(c.HL())
	}
	return c.A
}

func (c *CPU) setReg(r, val uint8) {
	switch r {
	case 0:
		c.B = val
	case 1:
		c.C = val
	case 2:
		c.D = val
	case 3:
		c.E = val
	case 4:
		c.H = val
	case 5:
		c.L = val
	case 6:
		c.Write8(c.HL(), val)
	default:
		c.A = val
	}
}

// rp returns the register pair encoded as rp in opcodes (BC, DE, HL, SP).
func (c *CPU) rp(rp uint8) uint16 {
	switch rp {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	}
	return c.SP
}

func (c *CPU) setRP(rp uint8, val uint16) {
	switch rp {
	case 0:
		c.SetBC(val)
	case 1:
		c.SetDE(val)
	case 2:
		c.SetHL(val)
	default:
		c.SP = val
	}
}

/* memory access */

func (c *CPU) Read8(addr uint16) uint8 {
	return c.Bus.Read8(addr, false)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	return hwio.Read16(c.Bus, addr)
}

func (c *CPU) Write16(addr uint16, val uint16) {
	hwio.Write16(c.Bus, addr, val)
}

func (c *CPU) fetch8() uint8 {
	val := c.Read8(c.PC)
	c.PC++
	return val
}

func (c *CPU) fetch16() uint16 {
	val := c.Read16(c.PC)
	c.PC += 2
	return val
}

/* stack operations */

func (c *CPU) push16(val uint16) {
	c.SP -= 2
	c.Write16(c.SP, val)
}

func (c *CPU) pop16() uint16 {
	val := c.Read16(c.SP)
	c.SP += 2
	return val
}
