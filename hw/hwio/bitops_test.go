package hwio

import "testing"

func TestBitops8(t *testing.T) {
	var v uint8

	SetBit8(&v, 3)
	if v != 0x08 || !GetBit8(v, 3) || GetBiti8(v, 3) != 1 {
		t.Fatalf("SetBit8: got %08b", v)
	}
	SetBit8(&v, 0)
	if v != 0x09 {
		t.Fatalf("SetBit8: got %08b", v)
	}
	ClearBit8(&v, 3)
	if v != 0x01 || GetBit8(v, 3) {
		t.Fatalf("ClearBit8: got %08b", v)
	}
}

func TestEdges(t *testing.T) {
	if got := Rising(0b0011, 0b0110); got != 0b0100 {
		t.Errorf("Rising = %04b, want 0100", got)
	}
	if got := Falling(0b0011, 0b0110); got != 0b0001 {
		t.Errorf("Falling = %04b, want 0001", got)
	}
}
