package hwio

import (
	"fmt"

	"invaders/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

func Write16(b BankIO8, addr uint16, val uint16) {
	b.Write8(addr, uint8(val))
	b.Write8(addr+1, uint8(val>>8))
}

// A Table decodes addresses of a bus into the devices mapped on it. Decoding
// is done with a flat lookup table, one entry per address.
//
// Accesses to unmapped addresses read as 0 and writes are dropped.
type Table struct {
	Name string
	Mod  log.Module // module unmapped accesses are logged on

	mask  uint16
	slots []BankIO8
}

// NewTable creates a table decoding size addresses. size must be a power of
// 2 and at most 64K.
func NewTable(name string, size int) *Table {
	if size <= 0 || size > 0x10000 || size&(size-1) != 0 {
		panic(fmt.Sprintf("hwio: invalid table size %d", size))
	}
	return &Table{
		Name:  name,
		Mod:   log.ModHwIo,
		mask:  uint16(size - 1),
		slots: make([]BankIO8, size),
	}
}

// MapBank maps a register bank, that is a structure containing Mem, Reg8 or
// Device fields, initialized with MustInitRegs. Only the fields with an
// 'offset' option belonging to bank number bankNum are mapped, at addr+offset.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Device:
			t.MapDevice(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) mapBus8(addr uint16, size int, io BankIO8) {
	if size <= 0 || int(addr)+size > len(t.slots) {
		panic(fmt.Errorf("hwio: %s: cannot map %d bytes at $%04X", t.Name, size, addr))
	}
	for i := range size {
		t.slots[int(addr)+i] = io
	}
}

func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	t.mapBus8(addr, 1, reg)
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	t.mapBus8(addr, dev.Size, dev)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Int("size", mem.VSize).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, mem.VSize, mem.BankIO8())
}

// Read8 forwards the read to the device mapped at addr.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.slots[addr&t.mask]
	if io == nil {
		if !peek {
			t.Mod.DebugZ("unmapped Read8").
				String("bus", t.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	}
	return io.Read8(addr, peek)
}

// Peek8 reads without side effects.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

// Write8 forwards the write to the device mapped at addr.
func (t *Table) Write8(addr uint16, val uint8) {
	io := t.slots[addr&t.mask]
	if io == nil {
		t.Mod.DebugZ("unmapped Write8").
			String("bus", t.Name).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return
	}
	if m, ok := io.(*mem); ok {
		// Inlined fast path for read-write memory.
		if !m.Write8CheckRO(addr, val) {
			log.ModMem.DebugZ("Write8 to read-only address").
				String("bus", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	io.Write8(addr, val)
}
