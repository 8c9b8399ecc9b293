package hw

// Shifter is the board's 16-bit barrel shifter. The game writes sprite data
// one byte at a time and reads it back shifted, rather than shifting pixels
// in software.
type Shifter struct {
	value  uint16
	amount uint8
}

// WriteData pushes a byte into the high half of the shift register, the
// previous high half moving to the low half.
func (s *Shifter) WriteData(val uint8) {
	s.value = uint16(val)<<8 | s.value>>8
}

// WriteAmount sets the shift amount, only the 3 lower bits are used.
func (s *Shifter) WriteAmount(val uint8) {
	s.amount = val & 0x07
}

// Result returns the 8 bits of the register starting at bit 8-amount.
func (s *Shifter) Result() uint8 {
	return uint8(s.value >> (8 - s.amount))
}
