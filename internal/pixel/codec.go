package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"github.com/mrjoshuak/go-bxlim/internal/bio"
)

// ErrCompressed is returned when a packed-word operation is requested for
// a block-compressed format.
var ErrCompressed = errors.New("pixel: format is block-compressed")

// Expand scales an n-bit channel value to 8 bits with rounding.
func Expand(v uint32, bits int) uint8 {
	if bits == 8 {
		return uint8(v)
	}
	max := uint32(1)<<bits - 1
	return uint8((v*255 + max/2) / max)
}

// Quantize scales an 8-bit channel value to n bits with rounding.
func Quantize(c uint8, bits int) uint32 {
	if bits == 8 {
		return uint32(c)
	}
	max := uint32(1)<<bits - 1
	return (uint32(c)*max + 127) / 255
}

// Luma returns the BT.601 luminance of an RGB triple.
func Luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}

// Unpack converts one packed pixel word into a colour. Missing alpha is
// opaque; formats with only alpha decode as white.
func (d Descriptor) Unpack(word uint32) color.NRGBA {
	c := color.NRGBA{A: 0xFF}
	colour := false
	shift := d.BitsPerPixel()
	for _, ch := range d.channels() {
		shift -= ch.Bits
		v := Expand((word>>shift)&(uint32(1)<<ch.Bits-1), ch.Bits)
		switch ch.Name {
		case Red:
			c.R, colour = v, true
		case Green:
			c.G, colour = v, true
		case Blue:
			c.B, colour = v, true
		case Luminance:
			c.R, c.G, c.B, colour = v, v, v, true
		case Alpha:
			c.A = v
		}
	}
	if !colour {
		c.R, c.G, c.B = 0xFF, 0xFF, 0xFF
	}
	return c
}

// Pack converts a colour into one packed pixel word.
func (d Descriptor) Pack(c color.NRGBA) uint32 {
	var word uint32
	for _, ch := range d.channels() {
		var v uint8
		switch ch.Name {
		case Red:
			v = c.R
		case Green:
			v = c.G
		case Blue:
			v = c.B
		case Luminance:
			v = Luma(c.R, c.G, c.B)
		case Alpha:
			v = c.A
		}
		word = word<<ch.Bits | Quantize(v, ch.Bits)
	}
	return word
}

// DecodePixels reads n pixels in storage order from data.
func (d Descriptor) DecodePixels(data []byte, n int) ([]color.NRGBA, error) {
	if d.Compressed() {
		return nil, ErrCompressed
	}
	bpp := uint(d.BitsPerPixel())
	r := bio.NewReader(bytes.NewReader(data), d.Order.BitOrder())
	px := make([]color.NRGBA, n)
	for i := range px {
		word, err := r.ReadBits(bpp)
		if err != nil {
			return nil, fmt.Errorf("pixel %d: %w", i, err)
		}
		px[i] = d.Unpack(word)
	}
	return px, nil
}

// EncodePixels packs px in storage order.
func (d Descriptor) EncodePixels(px []color.NRGBA) ([]byte, error) {
	if d.Compressed() {
		return nil, ErrCompressed
	}
	bpp := uint(d.BitsPerPixel())
	var buf bytes.Buffer
	buf.Grow(d.DataSize(len(px), 1))
	w := bio.NewWriter(&buf, d.Order.BitOrder())
	for _, c := range px {
		if err := w.WriteBits(d.Pack(c), bpp); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
