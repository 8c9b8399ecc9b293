package hwio

// 8-bit operations

func GetBit8(v uint8, n uint) bool   { return GetBiti8(v, n) != 0 }
func GetBiti8(v uint8, n uint) uint8 { return v >> n & 0x01 }
func SetBit8(v *uint8, n uint)       { *v |= 1 << n }
func ClearBit8(v *uint8, n uint)     { *v &^= 1 << n }

// Rising returns the bits that went from 0 in old to 1 in cur.
func Rising(old, cur uint8) uint8 { return ^old & cur }

// Falling returns the bits that went from 1 in old to 0 in cur.
func Falling(old, cur uint8) uint8 { return old &^ cur }
