// Package rom loads Space Invaders program images, either as a flat binary
// or as the 4 chips of the MAME split set.
package rom

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/jx"
)

const (
	// MinSize is the size of the board ROM, a valid image fills it at least.
	MinSize = 0x2000
	// MaxSize is the 8080 address space size.
	MaxSize = 0x10000
)

var ErrShortImage = errors.New("image shorter than the board ROM")

// SplitSet lists the chips of the MAME split set, in address order. Each
// chip holds 2KiB.
var SplitSet = []string{"invaders.h", "invaders.g", "invaders.f", "invaders.e"}

// Chip describes one of the files an image has been loaded from.
type Chip struct {
	Name   string
	Offset int
	Size   int
	CRC32  uint32
}

type Rom struct {
	Name  string // file or directory name
	Data  []byte // program image, loaded at $0000
	Chips []Chip
}

// Open loads a rom from path, which is either a binary file or a directory
// containing the split set.
func Open(path string) (*Rom, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return openSplit(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := &Rom{Name: filepath.Base(path)}
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

func openSplit(dir string) (*Rom, error) {
	rom := &Rom{Name: filepath.Base(dir)}
	for _, name := range SplitSet {
		buf, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("split set: %w", err)
		}
		rom.Chips = append(rom.Chips, Chip{
			Name:   name,
			Offset: len(rom.Data),
			Size:   len(buf),
			CRC32:  crc32.ChecksumIEEE(buf),
		})
		rom.Data = append(rom.Data, buf...)
	}
	if err := validate(rom.Data); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return int64(len(buf)), err
	}
	if err := validate(buf); err != nil {
		return int64(len(buf)), err
	}

	rom.Data = buf
	rom.Chips = []Chip{{
		Name:  rom.Name,
		Size:  len(buf),
		CRC32: crc32.ChecksumIEEE(buf),
	}}
	return int64(len(buf)), nil
}

func validate(buf []byte) error {
	switch {
	case len(buf) == 0:
		return errors.New("empty image")
	case len(buf) < MinSize:
		return fmt.Errorf("%w (%d bytes)", ErrShortImage, len(buf))
	case len(buf) > MaxSize:
		return errors.New("image larger than the address space")
	}
	return nil
}

// CRC32 returns the IEEE checksum of the whole image.
func (rom *Rom) CRC32() uint32 {
	return crc32.ChecksumIEEE(rom.Data)
}

// SHA1 returns the hex SHA1 digest of the whole image.
func (rom *Rom) SHA1() string {
	return fmt.Sprintf("%x", sha1.Sum(rom.Data))
}

func (rom *Rom) PrintInfos(w io.Writer) {
	fmt.Fprintf(w, "Name:  %s\n", rom.Name)
	fmt.Fprintf(w, "Size:  %d bytes (%s)\n", len(rom.Data), kib(len(rom.Data)))
	fmt.Fprintf(w, "CRC32: %08x\n", rom.CRC32())
	fmt.Fprintf(w, "SHA1:  %s\n", rom.SHA1())
	if len(rom.Chips) > 1 {
		fmt.Fprintln(w, "Chips:")
		for _, c := range rom.Chips {
			fmt.Fprintf(w, "  $%04X  %-12s %5d bytes  crc32:%08x\n", c.Offset, c.Name, c.Size, c.CRC32)
		}
	}
}

func kib(n int) string {
	s := fmt.Sprintf("%.2f", float64(n)/1024)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "KiB"
}

// WriteJSON writes the rom infos as a JSON object.
func (rom *Rom) WriteJSON(w io.Writer) error {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(rom.Name)
	e.FieldStart("size")
	e.Int(len(rom.Data))
	e.FieldStart("crc32")
	e.Str(fmt.Sprintf("%08x", rom.CRC32()))
	e.FieldStart("sha1")
	e.Str(rom.SHA1())
	e.FieldStart("chips")
	e.ArrStart()
	for _, c := range rom.Chips {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(c.Name)
		e.FieldStart("offset")
		e.Int(c.Offset)
		e.FieldStart("size")
		e.Int(c.Size)
		e.FieldStart("crc32")
		e.Str(fmt.Sprintf("%08x", c.CRC32))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	_, err := w.Write(append(e.Bytes(), '\n'))
	return err
}
