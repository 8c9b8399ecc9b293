package hw

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Button -trimprefix=Btn

// Button is a cabinet control wired to an input port bit.
type Button uint8

const (
	BtnCoin Button = iota
	BtnP2Start
	BtnP1Start
	BtnP1Fire
	BtnP1Left
	BtnP1Right
	BtnP2Fire
	BtnP2Left
	BtnP2Right
	BtnTilt
)

const NumButtons = int(BtnTilt) + 1

// Port returns the input port and bit the button is wired to.
func (b Button) Port() (port, bit uint8) {
	loc := buttonPorts[b]
	return loc[0], loc[1]
}

var buttonPorts = [NumButtons][2]uint8{
	BtnCoin:    {1, 0},
	BtnP2Start: {1, 1},
	BtnP1Start: {1, 2},
	BtnP1Fire:  {1, 4},
	BtnP1Left:  {1, 5},
	BtnP1Right: {1, 6},
	BtnP2Fire:  {2, 4},
	BtnP2Left:  {2, 5},
	BtnP2Right: {2, 6},
	BtnTilt:    {2, 2},
}

// ParseButton returns the button with the given name (case insensitive).
func ParseButton(name string) (Button, error) {
	for i := range NumButtons {
		if strings.EqualFold(Button(i).String(), name) {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	btn, err := ParseButton(string(text))
	if err != nil {
		return err
	}
	*b = btn
	return nil
}
