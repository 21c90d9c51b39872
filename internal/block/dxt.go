package block

import (
	"encoding/binary"
	"image/color"

	"github.com/mrjoshuak/go-bxlim/internal/pixel"
)

func unpack565(c uint16) color.NRGBA {
	return color.NRGBA{
		R: pixel.Expand(uint32(c>>11), 5),
		G: pixel.Expand(uint32(c>>5&0x3F), 6),
		B: pixel.Expand(uint32(c&0x1F), 5),
		A: 0xFF,
	}
}

func pack565(c color.NRGBA) uint16 {
	return uint16(pixel.Quantize(c.R, 5)<<11 | pixel.Quantize(c.G, 6)<<5 | pixel.Quantize(c.B, 5))
}

// colorPalette expands the two endpoints of a colour block. With four
// false and c0 <= c1 the block is in three-colour mode and entry 3 is
// transparent black.
func colorPalette(c0, c1 uint16, four bool) [4]color.NRGBA {
	p := [4]color.NRGBA{unpack565(c0), unpack565(c1)}
	a, b := p[0], p[1]
	if four || c0 > c1 {
		p[2] = color.NRGBA{
			R: uint8((2*int(a.R) + int(b.R)) / 3),
			G: uint8((2*int(a.G) + int(b.G)) / 3),
			B: uint8((2*int(a.B) + int(b.B)) / 3),
			A: 0xFF,
		}
		p[3] = color.NRGBA{
			R: uint8((int(a.R) + 2*int(b.R)) / 3),
			G: uint8((int(a.G) + 2*int(b.G)) / 3),
			B: uint8((int(a.B) + 2*int(b.B)) / 3),
			A: 0xFF,
		}
		return p
	}
	p[2] = color.NRGBA{
		R: uint8((int(a.R) + int(b.R)) / 2),
		G: uint8((int(a.G) + int(b.G)) / 2),
		B: uint8((int(a.B) + int(b.B)) / 2),
		A: 0xFF,
	}
	return p
}

func decodeColorBlock(src []byte, order binary.ByteOrder, four bool) Block {
	c0 := order.Uint16(src[0:])
	c1 := order.Uint16(src[2:])
	indices := order.Uint32(src[4:])
	palette := colorPalette(c0, c1, four)

	var b Block
	for i := range b {
		b[i] = palette[indices>>(2*uint(i))&3]
	}
	return b
}

// appendColorBlock picks the two most distant opaque pixels as endpoints
// and maps every pixel to its nearest palette entry. When four is false,
// pixels with alpha below 128 select the transparent entry.
func appendColorBlock(dst []byte, b *Block, order binary.ByteOrder, four bool) []byte {
	var opaque []color.NRGBA
	transparent := false
	for _, p := range b {
		if !four && p.A < 0x80 {
			transparent = true
			continue
		}
		opaque = append(opaque, p)
	}

	var c0, c1 uint16
	if len(opaque) > 0 {
		lo, hi, far := opaque[0], opaque[0], -1
		for i := range opaque {
			for j := i; j < len(opaque); j++ {
				if d := rgbDistance(opaque[i], opaque[j]); d > far {
					lo, hi, far = opaque[i], opaque[j], d
				}
			}
		}
		c0, c1 = pack565(hi), pack565(lo)
	}

	threeColour := transparent || (!four && c0 == c1)
	if threeColour && c0 > c1 || !threeColour && c0 < c1 {
		c0, c1 = c1, c0
	}
	palette := colorPalette(c0, c1, four)

	entries := 4
	if threeColour {
		entries = 3
	}
	var indices uint32
	for i, p := range b {
		var best uint32
		if threeColour && p.A < 0x80 {
			best = 3
		} else {
			bestErr := -1
			for k := 0; k < entries; k++ {
				if e := rgbDistance(p, palette[k]); bestErr < 0 || e < bestErr {
					best, bestErr = uint32(k), e
				}
			}
		}
		indices |= best << (2 * uint(i))
	}

	var out [8]byte
	order.PutUint16(out[0:], c0)
	order.PutUint16(out[2:], c1)
	order.PutUint32(out[4:], indices)
	return append(dst, out[:]...)
}

// DecodeDXT1 decodes one 8-byte DXT1 block.
func DecodeDXT1(src []byte, order binary.ByteOrder) Block {
	return decodeColorBlock(src, order, false)
}

// AppendDXT1 encodes b as a DXT1 block with 1-bit alpha. Colours other
// than the two endpoints are approximated.
func AppendDXT1(dst []byte, b *Block, order binary.ByteOrder) []byte {
	return appendColorBlock(dst, b, order, false)
}

// DecodeDXT3 decodes one 16-byte DXT3 block: explicit 4-bit alpha then a
// four-colour block.
func DecodeDXT3(src []byte, order binary.ByteOrder) Block {
	alpha := order.Uint64(src)
	b := decodeColorBlock(src[8:], order, true)
	for i := range b {
		b[i].A = expand4(alpha >> (4 * uint(i)))
	}
	return b
}

// AppendDXT3 encodes b as a DXT3 block.
func AppendDXT3(dst []byte, b *Block, order binary.ByteOrder) []byte {
	var alpha uint64
	for i, p := range b {
		alpha |= alpha4(p.A) << (4 * uint(i))
	}
	dst = appendUint64(dst, alpha, order)
	return appendColorBlock(dst, b, order, true)
}

// DecodeDXT5 decodes one 16-byte DXT5 block: interpolated alpha then a
// four-colour block.
func DecodeDXT5(src []byte, order binary.ByteOrder) Block {
	alpha := decodeChannelBlock(src, order)
	b := decodeColorBlock(src[8:], order, true)
	for i := range b {
		b[i].A = alpha[i]
	}
	return b
}

// AppendDXT5 encodes b as a DXT5 block.
func AppendDXT5(dst []byte, b *Block, order binary.ByteOrder) []byte {
	var alpha [16]uint8
	for i, p := range b {
		alpha[i] = p.A
	}
	dst = appendChannelBlock(dst, &alpha, order)
	return appendColorBlock(dst, b, order, true)
}
