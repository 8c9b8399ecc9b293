package hwio

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = 1 << iota // writes are dropped
)

// mem is the BankIO8 adaptor for linear memory. Addresses are masked with
// the (power of 2) buffer size, so an area mapped over part of a larger
// buffer sees the buffer bytes at their own addresses.
type mem struct {
	buf  []uint8
	mask uint16
	wcb  func(uint16, uint8)
	ro   bool
}

func (m *mem) Read8(addr uint16, _ bool) uint8 {
	return m.buf[addr&m.mask]
}

// Write8CheckRO writes val at addr, reporting false if the memory is
// read-only.
func (m *mem) Write8CheckRO(addr uint16, val uint8) bool {
	if m.ro {
		return false
	}
	m.buf[addr&m.mask] = val
	if m.wcb != nil {
		m.wcb(addr, val)
	}
	return true
}

func (m *mem) Write8(addr uint16, val uint8) {
	m.Write8CheckRO(addr, val)
}

// Mem is a linear memory area that can be mapped into a Table.
//
// Mem does not implement BankIO8 directly, BankIO8 creates an adaptor
// specialized for the area flags.
type Mem struct {
	Name    string              // name of the memory area (for debugging)
	Data    []byte              // backing buffer, its size must be a power of 2
	VSize   int                 // number of mapped bytes
	Flags   MemFlags            // access flags
	WriteCb func(uint16, uint8) // optional, called after each write
}

func (m *Mem) BankIO8() BankIO8 {
	if len(m.Data) == 0 || len(m.Data)&(len(m.Data)-1) != 0 {
		panic("hwio: memory buffer size is not pow2")
	}
	return &mem{
		buf:  m.Data,
		mask: uint16(len(m.Data) - 1),
		wcb:  m.WriteCb,
		ro:   m.Flags&MemFlagReadOnly != 0,
	}
}
