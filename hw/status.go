package hw

import "math/bits"

// P holds the 8080 condition flags, with the same bit layout as the flags
// byte of the PSW register pair: S Z 0 AC 0 P 1 C.
type P uint8

const (
	Carry    P = 1 << 0
	Parity   P = 1 << 2
	AuxCarry P = 1 << 4
	Zero     P = 1 << 6
	Sign     P = 1 << 7

	flagsMask = Carry | Parity | AuxCarry | Zero | Sign
)

func (p P) String() string {
	const bits = "sz.a.p.cSZ.A.P.C"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(p) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p P) Carry() bool    { return p&Carry != 0 }
func (p P) Parity() bool   { return p&Parity != 0 }
func (p P) AuxCarry() bool { return p&AuxCarry != 0 }
func (p P) Zero() bool     { return p&Zero != 0 }
func (p P) Sign() bool     { return p&Sign != 0 }

func (p *P) set(flag P, on bool) {
	if on {
		*p |= flag
	} else {
		*p &^= flag
	}
}

// setSZP sets the sign, zero and parity flags from val.
func (p *P) setSZP(val uint8) {
	p.set(Sign, val&0x80 != 0)
	p.set(Zero, val == 0)
	p.set(Parity, bits.OnesCount8(val)%2 == 0)
}

// psw returns the flags as pushed on the stack (bit 1 always set, bits 3
// and 5 always clear).
func (p P) psw() uint8 {
	return uint8(p&flagsMask) | 0x02
}

func pswToFlags(v uint8) P {
	return P(v) & flagsMask
}
