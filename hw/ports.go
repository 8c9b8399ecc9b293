package hw

import "invaders/hw/hwio"

// Ports is the I/O port bank of the board.
//
// Ports 2 and 3 decode reads and writes to different hardware, they're
// mapped as devices dispatching accesses to the relevant register.
type Ports struct {
	INP0 hwio.Reg8 `hwio:"offset=0x0,reset=0x0E,readonly"`
	INP1 hwio.Reg8 `hwio:"offset=0x1,reset=0x08,readonly"`

	// read: INP2, write: shift amount.
	PORT2 hwio.Device `hwio:"offset=0x2,rcb,wcb,pcb=ReadPORT2"`
	// read: shift result, write: SOUND1.
	PORT3 hwio.Device `hwio:"offset=0x3,rcb,wcb,pcb=ReadPORT3"`

	SHFTDATA hwio.Reg8 `hwio:"offset=0x4,writeonly,wcb"`
	SOUND2   hwio.Reg8 `hwio:"offset=0x5,writeonly,wcb"`
	WATCHDOG hwio.Reg8 `hwio:"offset=0x6,writeonly"`

	INP2   hwio.Reg8 `hwio:""`
	SOUND1 hwio.Reg8 `hwio:""`

	Shifter Shifter

	sound SoundSink
}

func (p *Ports) ReadPORT2(_ uint16) uint8       { return p.INP2.Value }
func (p *Ports) WritePORT2(_ uint16, val uint8) { p.Shifter.WriteAmount(val) }
func (p *Ports) ReadPORT3(_ uint16) uint8       { return p.Shifter.Result() }
func (p *Ports) WriteSHFTDATA(_, val uint8)     { p.Shifter.WriteData(val) }
func (p *Ports) WriteSOUND2(old, val uint8)     { dispatchSounds(p.sound, &port5Sounds, old, val) }
func (p *Ports) WritePORT3(_ uint16, val uint8) {
	old := p.SOUND1.Value
	p.SOUND1.Value = val
	dispatchSounds(p.sound, &port3Sounds, old, val)
}

// DIPSwitches holds the operator settings, read by the game on port 2.
type DIPSwitches struct {
	Ships       int  `toml:"ships"`         // 3 to 6
	ExtraShipAt int  `toml:"extra_ship_at"` // 1000 or 1500
	CoinInfo    bool `toml:"coin_info"`     // show coin info on the demo screen
}

// Bits returns the port 2 bits of the switches.
func (d DIPSwitches) Bits() uint8 {
	var bits uint8
	ships := min(max(d.Ships, 3), 6)
	bits |= uint8(ships - 3)
	if d.ExtraShipAt == 1000 {
		bits |= 1 << 3
	}
	if !d.CoinInfo {
		bits |= 1 << 7
	}
	return bits
}
