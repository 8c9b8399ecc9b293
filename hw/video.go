package hw

import "image"

// Dimensions of the monitor, which is mounted rotated 90° counter-clockwise
// in the cabinet.
const (
	ScreenWidth  = 224
	ScreenHeight = 256
)

type rgba [4]uint8

var (
	black = rgba{0x00, 0x00, 0x00, 0xff}
	white = rgba{0xff, 0xff, 0xff, 0xff}
	red   = rgba{0xff, 0x00, 0x00, 0xff}
	green = rgba{0x00, 0xff, 0x00, 0xff}
)

// NewFrame allocates an image suitable for Rasterize.
func NewFrame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
}

// Rasterize converts the 1bpp video memory into the RGBA pixels of dst, as
// seen on the rotated monitor. With overlay, the pixels are tinted the way
// the cellophane strips on the cabinet glass did: red for the band near the
// top of the screen, green for the bottom area.
//
// vram is laid out as 224 columns of 32 bytes, scanned from the bottom of
// the screen, the least significant bit of each byte coming first.
func Rasterize(dst *image.RGBA, vram []byte, overlay bool) {
	for i, b := range vram[:min(len(vram), VRAMSize)] {
		x := i / 32
		iy := (i % 32) * 8

		col := white
		if overlay {
			switch {
			case iy > 200 && iy < 220:
				col = red
			case iy < 80:
				col = green
			}
		}

		for bit := range 8 {
			c := black
			if b&(1<<bit) != 0 {
				c = col
			}
			y := ScreenHeight - 1 - (iy + bit)
			off := dst.PixOffset(x, y)
			copy(dst.Pix[off:off+4], c[:])
		}
	}
}
