package hw

import "fmt"

type opdef struct {
	name   string
	fn     func(*CPU)
	cycles uint8 // cycles when not taken (or unconditional)
	taken  uint8 // cycles when a conditional CALL or RET is taken
	undoc  bool  // undocumented alias of another opcode
}

var ops [256]opdef

// Cycle counts from the Intel 8080 Microcomputer Systems User's Manual.
// Conditional RET and CALL are listed with their not-taken cost.
var opcycles = [256]uint8{
	// 0  1   2   3   4   5   6   7   8   9   A   B   C   D   E   F
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4, // 0
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4, // 1
	4, 10, 16, 5, 5, 5, 7, 4, 4, 10, 16, 5, 5, 5, 7, 4, // 2
	4, 10, 13, 5, 10, 10, 10, 4, 4, 10, 13, 5, 5, 5, 7, 4, // 3
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5, // 4
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5, // 5
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5, // 6
	7, 7, 7, 7, 7, 7, 7, 7, 5, 5, 5, 5, 5, 5, 7, 5, // 7
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 8
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 9
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // A
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // B
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11, // C
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11, // D
	5, 10, 10, 18, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11, // E
	5, 10, 10, 4, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11, // F
}

// extra cycles of a taken conditional RET or CALL.
const takenPenalty = 6

var (
	regNames  = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}
	rpNames   = [4]string{"B", "D", "H", "SP"}
	condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	aluNames  = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
	aluiNames = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}
)

func def(opcode int, name string, fn func(*CPU)) {
	ops[opcode] = opdef{
		name:   name,
		fn:     fn,
		cycles: opcycles[opcode],
		taken:  opcycles[opcode],
	}
}

func init() {
	def(0x00, "NOP", NOP)
	for _, opcode := range []int{0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38} {
		def(opcode, "NOP", NOP)
		ops[opcode].undoc = true
	}

	for rp := range uint8(4) {
		base := int(rp) << 4
		def(0x01|base, "LXI "+rpNames[rp], LXI(rp))
		def(0x03|base, "INX "+rpNames[rp], INX(rp))
		def(0x09|base, "DAD "+rpNames[rp], DAD(rp))
		def(0x0B|base, "DCX "+rpNames[rp], DCX(rp))
	}

	def(0x02, "STAX B", func(c *CPU) { c.Write8(c.BC(), c.A) })
	def(0x12, "STAX D", func(c *CPU) { c.Write8(c.DE(), c.A) })
	def(0x0A, "LDAX B", func(c *CPU) { c.A = c.Read8(c.BC()) })
	def(0x1A, "LDAX D", func(c *CPU) { c.A = c.Read8(c.DE()) })
	def(0x22, "SHLD", SHLD)
	def(0x2A, "LHLD", LHLD)
	def(0x32, "STA", STA)
	def(0x3A, "LDA", LDA)

	for r := range uint8(8) {
		def(0x04|int(r)<<3, "INR "+regNames[r], INR(r))
		def(0x05|int(r)<<3, "DCR "+regNames[r], DCR(r))
		def(0x06|int(r)<<3, "MVI "+regNames[r], MVI(r))
	}

	def(0x07, "RLC", (*CPU).rlc)
	def(0x0F, "RRC", (*CPU).rrc)
	def(0x17, "RAL", (*CPU).ral)
	def(0x1F, "RAR", (*CPU).rar)
	def(0x27, "DAA", (*CPU).daa)
	def(0x2F, "CMA", func(c *CPU) { c.A = ^c.A })
	def(0x37, "STC", func(c *CPU) { c.P.set(Carry, true) })
	def(0x3F, "CMC", func(c *CPU) { c.P.set(Carry, !c.P.Carry()) })

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		dst, src := uint8(opcode>>3)&7, uint8(opcode)&7
		def(opcode, "MOV "+regNames[dst]+","+regNames[src], MOV(dst, src))
	}
	def(0x76, "HLT", (*CPU).halt)

	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op, src := uint8(opcode>>3)&7, uint8(opcode)&7
		def(opcode, aluNames[op]+" "+regNames[src], ALU(op, src))
	}

	for i := range uint8(8) {
		base := int(i) << 3
		def(0xC0|base, "R"+condNames[i], Rcc(i))
		def(0xC2|base, "J"+condNames[i], Jcc(i))
		def(0xC4|base, "C"+condNames[i], Ccc(i))
		def(0xC6|base, aluiNames[i], ALUI(i))
		def(0xC7|base, fmt.Sprintf("RST %d", i), RST(i))
		ops[0xC0|base].taken += takenPenalty
		ops[0xC4|base].taken += takenPenalty
	}

	for rp := range uint8(4) {
		base := int(rp) << 4
		name := rpNames[rp]
		if rp == 3 {
			name = "PSW"
		}
		def(0xC1|base, "POP "+name, POP(rp))
		def(0xC5|base, "PUSH "+name, PUSH(rp))
	}

	def(0xC3, "JMP", JMP)
	def(0xC9, "RET", RET)
	def(0xCD, "CALL", CALL)
	def(0xD3, "OUT", OUT)
	def(0xDB, "IN", IN)
	def(0xE3, "XTHL", XTHL)
	def(0xE9, "PCHL", func(c *CPU) { c.PC = c.HL() })
	def(0xEB, "XCHG", XCHG)
	def(0xF3, "DI", func(c *CPU) { c.IE = false })
	def(0xF9, "SPHL", func(c *CPU) { c.SP = c.HL() })
	def(0xFB, "EI", func(c *CPU) { c.IE, c.eiDelay = true, true })

	// Undocumented aliases, decoded by the silicon as their documented
	// counterpart.
	for opcode, alias := range map[int]int{
		0xCB: 0xC3, // JMP
		0xD9: 0xC9, // RET
		0xDD: 0xCD, // CALL
		0xED: 0xCD,
		0xFD: 0xCD,
	} {
		ops[opcode] = ops[alias]
		ops[opcode].undoc = true
	}
}

// OpcodeName returns the mnemonic of an opcode, "*" is appended to
// undocumented ones.
func OpcodeName(opcode uint8) string {
	op := ops[opcode]
	if op.undoc {
		return op.name + "*"
	}
	return op.name
}

func NOP(c *CPU) {}

func LXI(rp uint8) func(*CPU) {
	return func(c *CPU) { c.setRP(rp, c.fetch16()) }
}

func INX(rp uint8) func(*CPU) {
	return func(c *CPU) { c.setRP(rp, c.rp(rp)+1) }
}

func DCX(rp uint8) func(*CPU) {
	return func(c *CPU) { c.setRP(rp, c.rp(rp)-1) }
}

func DAD(rp uint8) func(*CPU) {
	return func(c *CPU) { c.dad(c.rp(rp)) }
}

func INR(r uint8) func(*CPU) {
	return func(c *CPU) { c.setReg(r, c.inr(c.reg(r))) }
}

func DCR(r uint8) func(*CPU) {
	return func(c *CPU) { c.setReg(r, c.dcr(c.reg(r))) }
}

func MVI(r uint8) func(*CPU) {
	return func(c *CPU) { c.setReg(r, c.fetch8()) }
}

func MOV(dst, src uint8) func(*CPU) {
	return func(c *CPU) { c.setReg(dst, c.reg(src)) }
}

func ALU(op, src uint8) func(*CPU) {
	return func(c *CPU) { c.alu(op, c.reg(src)) }
}

func ALUI(op uint8) func(*CPU) {
	return func(c *CPU) { c.alu(op, c.fetch8()) }
}

func SHLD(c *CPU) { c.Write16(c.fetch16(), c.HL()) }
func LHLD(c *CPU) { c.SetHL(c.Read16(c.fetch16())) }
func STA(c *CPU)  { c.Write8(c.fetch16(), c.A) }
func LDA(c *CPU)  { c.A = c.Read8(c.fetch16()) }

func JMP(c *CPU) { c.PC = c.fetch16() }

func CALL(c *CPU) {
	addr := c.fetch16()
	c.push16(c.PC)
	c.PC = addr
}

func RET(c *CPU) { c.PC = c.pop16() }

// Conditional jumps take the same time whether the branch is taken or not.
func Jcc(cc uint8) func(*CPU) {
	return func(c *CPU) {
		addr := c.fetch16()
		if c.cond(cc) {
			c.PC = addr
		}
	}
}

func Ccc(cc uint8) func(*CPU) {
	return func(c *CPU) {
		addr := c.fetch16()
		if c.cond(cc) {
			c.push16(c.PC)
			c.PC = addr
			c.taken = true
		}
	}
}

func Rcc(cc uint8) func(*CPU) {
	return func(c *CPU) {
		if c.cond(cc) {
			c.PC = c.pop16()
			c.taken = true
		}
	}
}

func RST(n uint8) func(*CPU) {
	return func(c *CPU) {
		c.push16(c.PC)
		c.PC = uint16(n) * 8
	}
}

func PUSH(rp uint8) func(*CPU) {
	if rp == 3 {
		return func(c *CPU) { c.push16(c.PSW()) }
	}
	return func(c *CPU) { c.push16(c.rp(rp)) }
}

func POP(rp uint8) func(*CPU) {
	if rp == 3 {
		return func(c *CPU) { c.SetPSW(c.pop16()) }
	}
	return func(c *CPU) { c.setRP(rp, c.pop16()) }
}

func XTHL(c *CPU) {
	val := c.Read16(c.SP)
	c.Write16(c.SP, c.HL())
	c.SetHL(val)
}

func XCHG(c *CPU) {
	c.H, c.D = c.D, c.H
	c.L, c.E = c.E, c.L
}

func IN(c *CPU) {
	port := c.fetch8()
	c.A = c.IO.Read8(uint16(port), false)
}

func OUT(c *CPU) {
	port := c.fetch8()
	c.IO.Write8(uint16(port), c.A)
}
