// Package pixel implements the texture pixel format tables and the codecs
// for bit-packed (uncompressed) pixel words.
//
// A format code only has meaning relative to a Table. Resolve turns a
// (table, code) pair into an immutable Descriptor or fails with
// ErrUnsupported; reserved gaps in a table fail the same way.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-bxlim/internal/bio"
)

// ErrUnsupported is returned for codes absent from a table.
var ErrUnsupported = errors.New("pixel: unsupported format code")

// Table identifies one platform family's format code table.
type Table int

const (
	// Table3DS holds the little-endian handheld formats.
	Table3DS Table = iota
	// TableWiiU holds the big-endian console formats.
	TableWiiU
)

// String returns the table name.
func (t Table) String() string {
	switch t {
	case Table3DS:
		return "3DS"
	case TableWiiU:
		return "WiiU"
	default:
		return "Unknown"
	}
}

// Endian is the byte order of stored pixel words.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// String returns the byte order name.
func (e Endian) String() string {
	if e == BigEndian {
		return "BigEndian"
	}
	return "LittleEndian"
}

// ByteOrder returns the encoding/binary order for e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// BitOrder returns the bit stream order that reads words in e.
func (e Endian) BitOrder() bio.Order {
	if e == BigEndian {
		return bio.MSBFirst
	}
	return bio.LSBFirst
}

// ChannelName names the colour component a channel carries.
type ChannelName byte

const (
	Red       ChannelName = 'R'
	Green     ChannelName = 'G'
	Blue      ChannelName = 'B'
	Alpha     ChannelName = 'A'
	Luminance ChannelName = 'L'
)

// Channel is one field of a packed pixel word.
type Channel struct {
	Name ChannelName
	Bits int
}

// Scheme is the compression scheme of a format.
type Scheme int

const (
	SchemeNone Scheme = iota
	SchemeETC1
	SchemeETC1A4
	SchemeDXT1
	SchemeDXT3
	SchemeDXT5
	SchemeATI1L
	SchemeATI1A
	SchemeATI2
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeNone:
		return "None"
	case SchemeETC1:
		return "ETC1"
	case SchemeETC1A4:
		return "ETC1A4"
	case SchemeDXT1:
		return "DXT1"
	case SchemeDXT3:
		return "DXT3"
	case SchemeDXT5:
		return "DXT5"
	case SchemeATI1L:
		return "ATI1L"
	case SchemeATI1A:
		return "ATI1A"
	case SchemeATI2:
		return "ATI2"
	default:
		return "Unknown"
	}
}

// BlockBytes returns the encoded size of one 4x4 block, or 0 for
// uncompressed schemes.
func (s Scheme) BlockBytes() int {
	switch s {
	case SchemeETC1, SchemeDXT1, SchemeATI1L, SchemeATI1A:
		return 8
	case SchemeETC1A4, SchemeDXT3, SchemeDXT5, SchemeATI2:
		return 16
	}
	return 0
}

// MaxChannels is the largest channel count of any packed format.
const MaxChannels = 4

// Descriptor describes one pixel format. Channels are ordered from the most
// significant bits of the pixel word down.
type Descriptor struct {
	Name        string
	Channels    [MaxChannels]Channel
	NumChannels int
	Scheme      Scheme
	Order       Endian
}

// Compressed reports whether the format stores 4x4 blocks.
func (d Descriptor) Compressed() bool {
	return d.Scheme != SchemeNone
}

// BlockSize returns the width and height of the minimal decodable unit.
func (d Descriptor) BlockSize() int {
	if d.Compressed() {
		return 4
	}
	return 1
}

// BitsPerPixel returns the storage cost of one pixel.
func (d Descriptor) BitsPerPixel() int {
	if d.Compressed() {
		return d.Scheme.BlockBytes() * 8 / 16
	}
	bits := 0
	for _, c := range d.channels() {
		bits += c.Bits
	}
	return bits
}

// DataSize returns the number of bytes that encode a width x height canvas.
// Both dimensions must be multiples of BlockSize.
func (d Descriptor) DataSize(width, height int) int {
	if d.Compressed() {
		return (width / 4) * (height / 4) * d.Scheme.BlockBytes()
	}
	return (width*height*d.BitsPerPixel() + 7) / 8
}

func (d Descriptor) channels() []Channel {
	return d.Channels[:d.NumChannels]
}

// packed builds an uncompressed descriptor from (name, bits) pairs,
// skipping zero-width channels.
func packed(name string, order Endian, chans ...Channel) Descriptor {
	d := Descriptor{Name: name, Order: order}
	for _, c := range chans {
		if c.Bits == 0 {
			continue
		}
		d.Channels[d.NumChannels] = c
		d.NumChannels++
	}
	return d
}

func la(l, a int, order Endian) Descriptor {
	name := ""
	if l > 0 {
		name += fmt.Sprintf("L%d", l)
	}
	if a > 0 {
		name += fmt.Sprintf("A%d", a)
	}
	return packed(name, order, Channel{Luminance, l}, Channel{Alpha, a})
}

func rgba(r, g, b, a int, order Endian) Descriptor {
	name := "RGB"
	if a > 0 {
		name = "RGBA"
	}
	name += fmt.Sprintf("%d%d%d", r, g, b)
	if a > 0 {
		name += fmt.Sprintf("%d", a)
	}
	return packed(name, order, Channel{Red, r}, Channel{Green, g}, Channel{Blue, b}, Channel{Alpha, a})
}

func hilo(order Endian) Descriptor {
	return packed("HL88", order, Channel{Red, 8}, Channel{Green, 8})
}

func compressed(s Scheme, order Endian) Descriptor {
	return Descriptor{Name: s.String(), Scheme: s, Order: order}
}

// formatTable is one platform's code table. A nil entry is a reserved gap.
type formatTable map[uint8]*Descriptor

func ref(d Descriptor) *Descriptor { return &d }

func commonFormats(order Endian) formatTable {
	return formatTable{
		0:  ref(la(8, 0, order)),
		1:  ref(la(0, 8, order)),
		2:  ref(la(4, 4, order)),
		3:  ref(la(8, 8, order)),
		4:  ref(hilo(order)),
		5:  ref(rgba(5, 6, 5, 0, order)),
		6:  ref(rgba(8, 8, 8, 0, order)),
		7:  ref(rgba(5, 5, 5, 1, order)),
		8:  ref(rgba(4, 4, 4, 4, order)),
		9:  ref(rgba(8, 8, 8, 8, order)),
		10: ref(compressed(SchemeETC1, order)),
		11: ref(compressed(SchemeETC1A4, order)),
		18: ref(la(4, 0, order)),
		19: ref(la(0, 4, order)),
	}
}

var tables = map[Table]formatTable{
	Table3DS:  commonFormats(LittleEndian),
	TableWiiU: wiiUFormats(),
}

func wiiUFormats() formatTable {
	t := commonFormats(BigEndian)
	t[12] = ref(compressed(SchemeDXT1, BigEndian))
	t[13] = ref(compressed(SchemeDXT3, BigEndian))
	t[14] = ref(compressed(SchemeDXT5, BigEndian))
	t[15] = ref(compressed(SchemeATI1L, BigEndian))
	t[16] = ref(compressed(SchemeATI1A, BigEndian))
	t[17] = ref(compressed(SchemeATI2, BigEndian))
	for code := uint8(20); code <= 23; code++ {
		t[code] = nil
	}
	t[24] = ref(rgba(10, 10, 10, 2, BigEndian))
	return t
}

// Resolve returns the descriptor for code in table t.
func Resolve(t Table, code uint8) (Descriptor, error) {
	ft, ok := tables[t]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: unknown table %d", ErrUnsupported, t)
	}
	d, ok := ft[code]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %d in %v table", ErrUnsupported, code, t)
	}
	if d == nil {
		return Descriptor{}, fmt.Errorf("%w: %d is reserved in %v table", ErrUnsupported, code, t)
	}
	return *d, nil
}

// Codes returns the supported codes of table t in ascending order.
func Codes(t Table) []uint8 {
	var codes []uint8
	for code := 0; code < 256; code++ {
		if d, ok := tables[t][uint8(code)]; ok && d != nil {
			codes = append(codes, uint8(code))
		}
	}
	return codes
}
