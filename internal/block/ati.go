package block

import (
	"encoding/binary"
	"image/color"

	"github.com/mrjoshuak/go-bxlim/internal/pixel"
)

// A channel block is a 64-bit word: endpoint a0 in bits 0-7, a1 in bits
// 8-15, then sixteen 3-bit indices in row-major order.

func channelPalette(a0, a1 uint8) [8]uint8 {
	p := [8]uint8{a0, a1}
	x, y := int(a0), int(a1)
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			p[i] = uint8(((8-i)*x + (i-1)*y) / 7)
		}
		return p
	}
	for i := 2; i < 6; i++ {
		p[i] = uint8(((6-i)*x + (i-1)*y) / 5)
	}
	p[6], p[7] = 0, 0xFF
	return p
}

func decodeChannelBlock(src []byte, order binary.ByteOrder) [16]uint8 {
	w := order.Uint64(src)
	palette := channelPalette(uint8(w), uint8(w>>8))
	var out [16]uint8
	for i := range out {
		out[i] = palette[w>>(16+3*uint(i))&7]
	}
	return out
}

// appendChannelBlock uses the minimum and maximum of v as endpoints, so
// values between them are approximated.
func appendChannelBlock(dst []byte, v *[16]uint8, order binary.ByteOrder) []byte {
	lo, hi := v[0], v[0]
	for _, x := range v {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	// hi == lo falls into the six-value mode, whose entry 0 is exact.
	palette := channelPalette(hi, lo)
	w := uint64(hi) | uint64(lo)<<8
	for i, x := range v {
		best, bestErr := 0, -1
		for k, p := range palette {
			if e := sq(int(x) - int(p)); bestErr < 0 || e < bestErr {
				best, bestErr = k, e
			}
		}
		w |= uint64(best) << (16 + 3*uint(i))
	}
	return appendUint64(dst, w, order)
}

// DecodeATI1L decodes one 8-byte single-channel block as luminance.
func DecodeATI1L(src []byte, order binary.ByteOrder) Block {
	var b Block
	for i, l := range decodeChannelBlock(src, order) {
		b[i] = color.NRGBA{l, l, l, 0xFF}
	}
	return b
}

// AppendATI1L encodes the luminance of b.
func AppendATI1L(dst []byte, b *Block, order binary.ByteOrder) []byte {
	var v [16]uint8
	for i, p := range b {
		v[i] = pixel.Luma(p.R, p.G, p.B)
	}
	return appendChannelBlock(dst, &v, order)
}

// DecodeATI1A decodes one 8-byte single-channel block as alpha over white.
func DecodeATI1A(src []byte, order binary.ByteOrder) Block {
	var b Block
	for i, a := range decodeChannelBlock(src, order) {
		b[i] = color.NRGBA{0xFF, 0xFF, 0xFF, a}
	}
	return b
}

// AppendATI1A encodes the alpha of b.
func AppendATI1A(dst []byte, b *Block, order binary.ByteOrder) []byte {
	var v [16]uint8
	for i, p := range b {
		v[i] = p.A
	}
	return appendChannelBlock(dst, &v, order)
}

// DecodeATI2 decodes one 16-byte two-channel block into red and green.
func DecodeATI2(src []byte, order binary.ByteOrder) Block {
	r := decodeChannelBlock(src, order)
	g := decodeChannelBlock(src[8:], order)
	var b Block
	for i := range b {
		b[i] = color.NRGBA{R: r[i], G: g[i], A: 0xFF}
	}
	return b
}

// AppendATI2 encodes the red and green channels of b.
func AppendATI2(dst []byte, b *Block, order binary.ByteOrder) []byte {
	var r, g [16]uint8
	for i, p := range b {
		r[i], g[i] = p.R, p.G
	}
	dst = appendChannelBlock(dst, &r, order)
	return appendChannelBlock(dst, &g, order)
}
