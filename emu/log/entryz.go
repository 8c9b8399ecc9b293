package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field, then emitted with End. All
// methods accept a nil receiver, which is what disabled modules return, so
// that a disabled log line costs a nil check per call.
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [maxZFields]ZField
	zfidx int
}

var entryPool = sync.Pool{New: func() any { return new(EntryZ) }}

func newEntryZ(mod Module, lvl Level, msg string) *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.mod, e.lvl, e.msg, e.zfidx = mod, lvl, msg, 0
	return e
}

func (e *EntryZ) field() *ZField {
	if e.zfidx == maxZFields {
		return &ZField{}
	}
	f := &e.zfbuf[e.zfidx]
	e.zfidx++
	*f = ZField{}
	return f
}

func (e *EntryZ) Bool(key string, v bool) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Boolean = FieldTypeBool, key, v
	}
	return e
}

func (e *EntryZ) String(key string, v string) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.String = FieldTypeString, key, v
	}
	return e
}

func (e *EntryZ) Hex8(key string, v uint8) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Integer = FieldTypeHex8, key, uint64(v)
	}
	return e
}

func (e *EntryZ) Hex16(key string, v uint16) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Integer = FieldTypeHex16, key, uint64(v)
	}
	return e
}

func (e *EntryZ) Int(key string, v int) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Integer = FieldTypeInt, key, uint64(v)
	}
	return e
}

func (e *EntryZ) Int64(key string, v int64) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Integer = FieldTypeInt, key, uint64(v)
	}
	return e
}

func (e *EntryZ) Uint(key string, v uint64) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Integer = FieldTypeUint, key, v
	}
	return e
}

func (e *EntryZ) Float(key string, v float64) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Float = FieldTypeFloat, key, v
	}
	return e
}

func (e *EntryZ) Error(key string, err error) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Error = FieldTypeError, key, err
	}
	return e
}

func (e *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Duration = FieldTypeDuration, key, d
	}
	return e
}

func (e *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Interface = FieldTypeStringer, key, s
	}
	return e
}

func (e *EntryZ) Blob(key string, b []byte) *EntryZ {
	if e != nil {
		f := e.field()
		f.Type, f.Key, f.Blob = FieldTypeBlob, key, b
	}
	return e
}

// End emits the entry. The entry must not be used afterwards.
func (e *EntryZ) End() {
	if e == nil {
		return
	}

	fields := make(logrus.Fields, e.zfidx+1)
	fields["_mod"] = e.mod.String()
	for i := range e.zfbuf[:e.zfidx] {
		fields[e.zfbuf[i].Key] = e.zfbuf[i].Value()
	}
	entry := logrus.StandardLogger().WithFields(fields)
	lvl, msg := e.lvl, e.msg
	entryPool.Put(e)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case PanicLevel:
		entry.Panic(msg)
	}
}
