package hw

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// carried reports whether adding a, b and cy carries out of bit n.
func carried(n uint, a, b uint8, cy bool) bool {
	sum := uint16(a) + uint16(b) + uint16(b2u8(cy))
	return (sum^uint16(a)^uint16(b))&(1<<n) != 0
}

func (c *CPU) add(a, b uint8, cy bool) uint8 {
	res := a + b + b2u8(cy)
	c.P.set(Carry, carried(8, a, b, cy))
	c.P.set(AuxCarry, carried(4, a, b, cy))
	c.P.setSZP(res)
	return res
}

// sub is performed as an addition of the complement. The carry flag then
// holds the borrow while the auxiliary carry keeps the addition meaning, as
// on the silicon.
func (c *CPU) sub(a, b uint8, borrow bool) uint8 {
	res := c.add(a, ^b, !borrow)
	c.P.set(Carry, !c.P.Carry())
	return res
}

func (c *CPU) ana(val uint8) {
	res := c.A & val
	c.P.set(Carry, false)
	c.P.set(AuxCarry, (c.A|val)&0x08 != 0)
	c.P.setSZP(res)
	c.A = res
}

func (c *CPU) xra(val uint8) {
	c.A ^= val
	c.P.set(Carry, false)
	c.P.set(AuxCarry, false)
	c.P.setSZP(c.A)
}

func (c *CPU) ora(val uint8) {
	c.A |= val
	c.P.set(Carry, false)
	c.P.set(AuxCarry, false)
	c.P.setSZP(c.A)
}

// alu performs the arithmetic or logic operation encoded as op (ADD, ADC,
// SUB, SBB, ANA, XRA, ORA, CMP) between the accumulator and val.
func (c *CPU) alu(op, val uint8) {
	switch op {
	case 0:
		c.A = c.add(c.A, val, false)
	case 1:
		c.A = c.add(c.A, val, c.P.Carry())
	case 2:
		c.A = c.sub(c.A, val, false)
	case 3:
		c.A = c.sub(c.A, val, c.P.Carry())
	case 4:
		c.ana(val)
	case 5:
		c.xra(val)
	case 6:
		c.ora(val)
	case 7:
		c.sub(c.A, val, false)
	}
}

// inr and dcr leave the carry untouched.

func (c *CPU) inr(val uint8) uint8 {
	res := val + 1
	c.P.set(AuxCarry, res&0x0F == 0)
	c.P.setSZP(res)
	return res
}

func (c *CPU) dcr(val uint8) uint8 {
	res := val - 1
	c.P.set(AuxCarry, res&0x0F != 0x0F)
	c.P.setSZP(res)
	return res
}

func (c *CPU) dad(val uint16) {
	sum := uint32(c.HL()) + uint32(val)
	c.P.set(Carry, sum > 0xFFFF)
	c.SetHL(uint16(sum))
}

func (c *CPU) daa() {
	cy := c.P.Carry()
	var corr uint8

	lsb := c.A & 0x0F
	msb := c.A >> 4
	if c.P.AuxCarry() || lsb > 9 {
		corr += 0x06
	}
	if c.P.Carry() || msb > 9 || (msb >= 9 && lsb > 9) {
		corr += 0x60
		cy = true
	}
	c.A = c.add(c.A, corr, false)
	c.P.set(Carry, cy)
}

/* rotations, only the carry is affected */

func (c *CPU) rlc() {
	cy := c.A >> 7
	c.A = c.A<<1 | cy
	c.P.set(Carry, cy != 0)
}

func (c *CPU) rrc() {
	cy := c.A & 1
	c.A = c.A>>1 | cy<<7
	c.P.set(Carry, cy != 0)
}

func (c *CPU) ral() {
	cy := b2u8(c.P.Carry())
	c.P.set(Carry, c.A&0x80 != 0)
	c.A = c.A<<1 | cy
}

func (c *CPU) rar() {
	cy := b2u8(c.P.Carry())
	c.P.set(Carry, c.A&1 != 0)
	c.A = c.A>>1 | cy<<7
}

// cond evaluates the condition encoded as cc in opcodes (NZ, Z, NC, C, PO,
// PE, P, M).
func (c *CPU) cond(cc uint8) bool {
	switch cc {
	case 0:
		return !c.P.Zero()
	case 1:
		return c.P.Zero()
	case 2:
		return !c.P.Carry()
	case 3:
		return c.P.Carry()
	case 4:
		return !c.P.Parity()
	case 5:
		return c.P.Parity()
	case 6:
		return !c.P.Sign()
	}
	return c.P.Sign()
}
