// Package nw4c implements parsing and generation of the trailing layout
// footer carried by CLIM and FLIM texture containers.
//
// The footer occupies the last 40 bytes of a container:
//   - 20-byte file header: magic, byte order mark, header size, version,
//     file size, section count
//   - 8-byte "imag" section header: magic, section size
//   - 12-byte image header: dimensions, format, orientation and data size,
//     in one of three field layouts
package nw4c

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sizes of the footer parts.
const (
	FileHeaderSize    = 20
	SectionHeaderSize = 8
	ImageHeaderSize   = 12
	FooterSize        = FileHeaderSize + SectionHeaderSize + ImageHeaderSize
)

// Magic values.
const (
	MagicCLIM  = "CLIM"
	MagicFLIM  = "FLIM"
	MagicImage = "imag"
)

var (
	// ErrMagic is returned when the footer carries no known container magic.
	ErrMagic = errors.New("nw4c: unknown container magic")
	// ErrByteOrder is returned for a byte order mark other than FEFF.
	ErrByteOrder = errors.New("nw4c: invalid byte order mark")
	// ErrShort is returned when fewer than FooterSize bytes are supplied.
	ErrShort = errors.New("nw4c: footer too short")
)

// Layout identifies the physical shape of the image header.
type Layout int

const (
	// LayoutCLIM is width, height, format, orientation, alignment, size.
	LayoutCLIM Layout = iota
	// LayoutFLIMLittle is width, height, alignment, format, orientation, size.
	LayoutFLIMLittle
	// LayoutFLIMBig is width, height, alignment, format, packed
	// orientation/tile mode, size.
	LayoutFLIMBig
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutCLIM:
		return "CLIM"
	case LayoutFLIMLittle:
		return "FLIM-LE"
	case LayoutFLIMBig:
		return "FLIM-BE"
	default:
		return "Unknown"
	}
}

// FileHeader is the container file header.
type FileHeader struct {
	Magic        string
	Order        binary.ByteOrder
	HeaderSize   uint16
	Version      uint32
	FileSize     uint32
	SectionCount uint16
	Padding      uint16
}

// SectionHeader is the image section header.
type SectionHeader struct {
	Magic string
	Size  uint32
}

// ImageHeader is the normalized image header, independent of Layout.
type ImageHeader struct {
	Width       uint16
	Height      uint16
	Format      uint8
	Orientation uint8
	// TileMode is only stored by LayoutFLIMBig.
	TileMode  uint8
	Alignment uint16
	DataSize  uint32
}

// Footer is a parsed container footer.
type Footer struct {
	Layout  Layout
	File    FileHeader
	Section SectionHeader
	Image   ImageHeader
}

// New returns a footer with the default field values for layout.
func New(layout Layout) *Footer {
	f := &Footer{
		Layout: layout,
		File: FileHeader{
			Magic:        MagicFLIM,
			Order:        binary.LittleEndian,
			HeaderSize:   FileHeaderSize,
			Version:      0x07020100,
			SectionCount: 1,
		},
		Section: SectionHeader{Magic: MagicImage, Size: 0x10},
		Image:   ImageHeader{Alignment: 0x80},
	}
	switch layout {
	case LayoutCLIM:
		f.File.Magic = MagicCLIM
		f.File.Version = 0x02020000
	case LayoutFLIMBig:
		f.File.Order = binary.BigEndian
		f.File.Version = 0x02020000
		f.Image.Alignment = 0x200
	}
	return f
}

// BigEndian reports whether the footer is stored big-endian.
func (f *Footer) BigEndian() bool {
	return f.File.Order == binary.BigEndian
}

// Parse parses a footer. b must hold at least FooterSize bytes; only the
// last FooterSize bytes are examined.
func Parse(b []byte) (*Footer, error) {
	if len(b) < FooterSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShort, len(b))
	}
	b = b[len(b)-FooterSize:]

	f := &Footer{}
	f.File.Magic = string(b[0:4])
	if f.File.Magic != MagicCLIM && f.File.Magic != MagicFLIM {
		return nil, fmt.Errorf("%w: %q", ErrMagic, f.File.Magic)
	}

	switch {
	case b[4] == 0xFF && b[5] == 0xFE:
		f.File.Order = binary.LittleEndian
	case b[4] == 0xFE && b[5] == 0xFF:
		f.File.Order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: %02X%02X", ErrByteOrder, b[4], b[5])
	}
	order := f.File.Order

	f.File.HeaderSize = order.Uint16(b[6:8])
	f.File.Version = order.Uint32(b[8:12])
	f.File.FileSize = order.Uint32(b[12:16])
	f.File.SectionCount = order.Uint16(b[16:18])
	f.File.Padding = order.Uint16(b[18:20])

	s := b[FileHeaderSize:]
	f.Section.Magic = string(s[0:4])
	f.Section.Size = order.Uint32(s[4:8])

	f.Layout = layoutFor(f.File.Magic, order)
	f.Image = parseImageHeader(b[FileHeaderSize+SectionHeaderSize:], f.Layout, order)
	return f, nil
}

func layoutFor(magic string, order binary.ByteOrder) Layout {
	if magic == MagicCLIM {
		return LayoutCLIM
	}
	if order == binary.BigEndian {
		return LayoutFLIMBig
	}
	return LayoutFLIMLittle
}

func parseImageHeader(b []byte, layout Layout, order binary.ByteOrder) ImageHeader {
	h := ImageHeader{
		Width:    order.Uint16(b[0:2]),
		Height:   order.Uint16(b[2:4]),
		DataSize: order.Uint32(b[8:12]),
	}
	switch layout {
	case LayoutCLIM:
		h.Format = b[4]
		h.Orientation = b[5]
		h.Alignment = order.Uint16(b[6:8])
	case LayoutFLIMLittle:
		h.Alignment = order.Uint16(b[4:6])
		h.Format = b[6]
		h.Orientation = b[7]
	case LayoutFLIMBig:
		h.Alignment = order.Uint16(b[4:6])
		h.Format = b[6]
		h.Orientation = b[7] >> 5
		h.TileMode = b[7] & 0x1F
	}
	return h
}

// Bytes serializes the footer in its own layout and byte order.
func (f *Footer) Bytes() []byte {
	b := make([]byte, FooterSize)
	order := f.File.Order

	copy(b[0:4], f.File.Magic)
	order.PutUint16(b[4:6], 0xFEFF)
	order.PutUint16(b[6:8], f.File.HeaderSize)
	order.PutUint32(b[8:12], f.File.Version)
	order.PutUint32(b[12:16], f.File.FileSize)
	order.PutUint16(b[16:18], f.File.SectionCount)
	order.PutUint16(b[18:20], f.File.Padding)

	s := b[FileHeaderSize:]
	copy(s[0:4], f.Section.Magic)
	order.PutUint32(s[4:8], f.Section.Size)

	h := b[FileHeaderSize+SectionHeaderSize:]
	order.PutUint16(h[0:2], f.Image.Width)
	order.PutUint16(h[2:4], f.Image.Height)
	order.PutUint32(h[8:12], f.Image.DataSize)
	switch f.Layout {
	case LayoutCLIM:
		h[4] = f.Image.Format
		h[5] = f.Image.Orientation
		order.PutUint16(h[6:8], f.Image.Alignment)
	case LayoutFLIMLittle:
		order.PutUint16(h[4:6], f.Image.Alignment)
		h[6] = f.Image.Format
		h[7] = f.Image.Orientation
	case LayoutFLIMBig:
		order.PutUint16(h[4:6], f.Image.Alignment)
		h[6] = f.Image.Format
		h[7] = f.Image.Orientation<<5 | f.Image.TileMode&0x1F
	}
	return b
}
