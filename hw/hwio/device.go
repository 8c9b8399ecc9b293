package hwio

import "invaders/emu/log"

// Device is a BankIO8 implementation that allows manual management of an
// entire range of addresses. Nothing is stored, accesses are forwarded to the
// callbacks.
type Device struct {
	Name  string // name of the area (for debugging)
	Size  int    // number of addresses
	Flags RWFlags

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	if peek {
		if d.PeekCb != nil {
			return d.PeekCb(addr)
		}
		return 0
	}
	if d.Flags&WriteOnlyFlag != 0 {
		log.ModHwIo.DebugZ("Read8 from writeonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		return 0
	}
	if d.ReadCb == nil {
		return 0
	}
	return d.ReadCb(addr)
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.DebugZ("ignored Write8 to readonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		return
	}
	if d.WriteCb != nil {
		d.WriteCb(addr, val)
	}
}
