// Package block implements the 4x4 block-compressed texture codecs:
// ETC1, ETC1 with 4-bit alpha, DXT1/3/5 and the ATI1/ATI2 channel codecs.
//
// Block words are read in the container's byte order, so a little-endian
// ETC1 block is the byte reversal of the reference big-endian layout.
//
// The ETC1 encoders reproduce any block their decoder produced. The DXT and
// ATI encoders are approximations: they pick endpoints from the block's
// extremes, which is exact for blocks made of endpoint colours but not for
// arbitrary decoded blocks. Those schemes only appear in the big-endian
// format table, whose containers are decoded but never saved.
package block

import (
	"encoding/binary"
	"errors"
	"image/color"

	"github.com/mrjoshuak/go-bxlim/internal/pixel"
)

// Dim is the width and height of one block in pixels.
const Dim = 4

// ErrScheme is returned for schemes without a block codec.
var ErrScheme = errors.New("block: no codec for scheme")

// Block holds the 16 pixels of one block in row-major order.
type Block [Dim * Dim]color.NRGBA

// Codec decodes and encodes single blocks of one scheme.
type Codec struct {
	Scheme pixel.Scheme
	// Size is the encoded size of one block in bytes.
	Size   int
	Decode func(src []byte, order binary.ByteOrder) Block
	Append func(dst []byte, b *Block, order binary.ByteOrder) []byte
}

// For returns the codec for scheme s.
func For(s pixel.Scheme) (Codec, error) {
	c := Codec{Scheme: s, Size: s.BlockBytes()}
	switch s {
	case pixel.SchemeETC1:
		c.Decode, c.Append = DecodeETC1, AppendETC1
	case pixel.SchemeETC1A4:
		c.Decode, c.Append = DecodeETC1A4, AppendETC1A4
	case pixel.SchemeDXT1:
		c.Decode, c.Append = DecodeDXT1, AppendDXT1
	case pixel.SchemeDXT3:
		c.Decode, c.Append = DecodeDXT3, AppendDXT3
	case pixel.SchemeDXT5:
		c.Decode, c.Append = DecodeDXT5, AppendDXT5
	case pixel.SchemeATI1L:
		c.Decode, c.Append = DecodeATI1L, AppendATI1L
	case pixel.SchemeATI1A:
		c.Decode, c.Append = DecodeATI1A, AppendATI1A
	case pixel.SchemeATI2:
		c.Decode, c.Append = DecodeATI2, AppendATI2
	default:
		return Codec{}, ErrScheme
	}
	return c, nil
}

func appendUint64(dst []byte, v uint64, order binary.ByteOrder) []byte {
	var b [8]byte
	order.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func sq(v int) int { return v * v }

func rgbDistance(a, b color.NRGBA) int {
	return sq(int(a.R)-int(b.R)) + sq(int(a.G)-int(b.G)) + sq(int(a.B)-int(b.B))
}

// expand4 and alpha4 convert between 4-bit and 8-bit alpha.
func expand4(v uint64) uint8 { return uint8(v&0xF) * 17 }

func alpha4(a uint8) uint64 { return uint64((int(a) + 8) / 17) }
