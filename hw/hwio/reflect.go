package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MustInitRegs initializes the Mem, Reg8 and Device fields of a register
// bank from their "hwio" struct tag. bank must be a pointer to a struct. It
// panics on malformed tags, since those are programming errors.
//
// Supported options:
//
//	offset=0x12   byte offset of the field within the bank. Fields without
//	              offset are initialized but never mapped by MapBank.
//	bank=NN       bank number (default 0), a structure may expose several banks.
//	size=0x100    Mem: buffer size to allocate if Data is nil. Device: number
//	              of addresses (default 1).
//	vsize=0x200   Mem: number of mapped bytes (default: size).
//	reset=0x99    Reg8: initial value.
//	romask=0xF0   Reg8: bits that writes can't modify.
//	readonly      writes are ignored.
//	writeonly     reads return 0 (Reg8, Device).
//	rcb[=Name]    read callback, method Read<FIELD> by default.
//	wcb[=Name]    write callback, method Write<FIELD> by default.
//	pcb[=Name]    peek callback, method Peek<FIELD> by default.
func MustInitRegs(bank any) {
	if err := initRegs(bank); err != nil {
		panic(err)
	}
}

type bankReg struct {
	offset uint16
	regPtr any
}

type regTag struct {
	hasOffset bool
	offset    uint16
	bank      int
	size      int
	vsize     int
	reset     uint8
	romask    uint8
	flags     RWFlags
	rcb       string
	wcb       string
	pcb       string
}

func parseTag(field, tag string) (regTag, error) {
	var rt regTag
	for opt := range strings.SplitSeq(tag, ",") {
		key, val, hasVal := strings.Cut(strings.TrimSpace(opt), "=")
		num := func(bits int) (uint64, error) {
			if !hasVal {
				return 0, fmt.Errorf("hwio: field %s: option %q needs a value", field, key)
			}
			n, err := strconv.ParseUint(val, 0, bits)
			if err != nil {
				return 0, fmt.Errorf("hwio: field %s: option %q: %v", field, key, err)
			}
			return n, nil
		}
		cbname := func(prefix string) string {
			if hasVal {
				return val
			}
			return prefix + strings.ToUpper(field)
		}

		var (
			n   uint64
			err error
		)
		switch key {
		case "":
		case "offset":
			n, err = num(16)
			rt.hasOffset, rt.offset = true, uint16(n)
		case "bank":
			n, err = num(8)
			rt.bank = int(n)
		case "size":
			n, err = num(32)
			rt.size = int(n)
		case "vsize":
			n, err = num(32)
			rt.vsize = int(n)
		case "reset":
			n, err = num(8)
			rt.reset = uint8(n)
		case "romask":
			n, err = num(8)
			rt.romask = uint8(n)
		case "readonly":
			rt.flags |= ReadOnlyFlag
		case "writeonly":
			rt.flags |= WriteOnlyFlag
		case "rcb":
			rt.rcb = cbname("Read")
		case "wcb":
			rt.wcb = cbname("Write")
		case "pcb":
			rt.pcb = cbname("Peek")
		default:
			return rt, fmt.Errorf("hwio: field %s: unknown option %q", field, key)
		}
		if err != nil {
			return rt, err
		}
	}
	return rt, nil
}

func bankStruct(bank any) (reflect.Value, error) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("hwio: bank must be a pointer to struct, got %T", bank)
	}
	return v, nil
}

// method returns the bank method with the given name, converted to type T.
func method[T any](bank reflect.Value, field, name string) (T, error) {
	var zero T
	m := bank.MethodByName(name)
	if !m.IsValid() {
		return zero, fmt.Errorf("hwio: field %s: missing method %s", field, name)
	}
	fn, ok := m.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("hwio: field %s: method %s has type %s, want %T", field, name, m.Type(), zero)
	}
	return fn, nil
}

func initRegs(bank any) error {
	pv, err := bankStruct(bank)
	if err != nil {
		return err
	}
	sv := pv.Elem()
	st := sv.Type()

	for i := range st.NumField() {
		sf := st.Field(i)
		tag, ok := sf.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		rt, err := parseTag(sf.Name, tag)
		if err != nil {
			return err
		}

		switch r := sv.Field(i).Addr().Interface().(type) {
		case *Reg8:
			r.Name = sf.Name
			r.Value = rt.reset
			r.RoMask = rt.romask
			r.Flags = rt.flags
			if rt.rcb != "" {
				if r.ReadCb, err = method[func(uint8) uint8](pv, sf.Name, rt.rcb); err != nil {
					return err
				}
			}
			if rt.pcb != "" {
				if r.PeekCb, err = method[func(uint8) uint8](pv, sf.Name, rt.pcb); err != nil {
					return err
				}
			}
			if rt.wcb != "" {
				if r.WriteCb, err = method[func(uint8, uint8)](pv, sf.Name, rt.wcb); err != nil {
					return err
				}
			}

		case *Device:
			r.Name = sf.Name
			r.Size = max(rt.size, 1)
			r.Flags = rt.flags
			if rt.rcb != "" {
				if r.ReadCb, err = method[func(uint16) uint8](pv, sf.Name, rt.rcb); err != nil {
					return err
				}
			}
			if rt.pcb != "" {
				if r.PeekCb, err = method[func(uint16) uint8](pv, sf.Name, rt.pcb); err != nil {
					return err
				}
			}
			if rt.wcb != "" {
				if r.WriteCb, err = method[func(uint16, uint8)](pv, sf.Name, rt.wcb); err != nil {
					return err
				}
			}

		case *Mem:
			r.Name = sf.Name
			if r.Data == nil {
				if rt.size == 0 {
					return fmt.Errorf("hwio: field %s: mem without data needs a size", sf.Name)
				}
				r.Data = make([]byte, rt.size)
			}
			r.VSize = rt.vsize
			if r.VSize == 0 {
				r.VSize = len(r.Data)
			}
			if rt.flags&ReadOnlyFlag != 0 {
				r.Flags |= MemFlagReadOnly
			}
			if rt.wcb != "" {
				if r.WriteCb, err = method[func(uint16, uint8)](pv, sf.Name, rt.wcb); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("hwio: field %s: unsupported type %s", sf.Name, sf.Type)
		}
	}
	return nil
}

func bankGetRegs(bank any, bankNum int) ([]bankReg, error) {
	pv, err := bankStruct(bank)
	if err != nil {
		return nil, err
	}
	sv := pv.Elem()
	st := sv.Type()

	var regs []bankReg
	for i := range st.NumField() {
		sf := st.Field(i)
		tag, ok := sf.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		rt, err := parseTag(sf.Name, tag)
		if err != nil {
			return nil, err
		}
		if !rt.hasOffset || rt.bank != bankNum {
			continue
		}
		regs = append(regs, bankReg{
			offset: rt.offset,
			regPtr: sv.Field(i).Addr().Interface(),
		})
	}
	return regs, nil
}
