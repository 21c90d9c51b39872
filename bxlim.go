// Package bxlim decodes and encodes CLIM and FLIM layout textures, the
// image containers used by 3DS and Wii U games.
//
// A container is the pixel payload followed by a 40-byte footer that
// names the variant, the pixel format, the orientation and, for the
// big-endian FLIM variant, a large-tile mode. Decoding undoes the
// platform's pixel reordering and returns an ordinary *image.NRGBA.
//
// Basic usage for decoding:
//
//	file, _ := os.Open("texture.bclim")
//	img, err := bxlim.Decode(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Editing a texture in place keeps its format and orientation:
//
//	tex, err := bxlim.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tex.SetImage(edited)
//	err = tex.Save(out)
//
// Basic usage for encoding a new texture:
//
//	file, _ := os.Create("output.bflim")
//	err := bxlim.Encode(file, img, &bxlim.Options{Variant: bxlim.VariantFLIM, Format: 9})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The magic is stored at the end of the file, so the package does not
// register itself with image.RegisterFormat.
package bxlim

import (
	"image"
	"io"

	"github.com/mrjoshuak/go-bxlim/internal/nw4c"
)

// Variant constants for the container layouts.
const (
	// VariantCLIM is the little-endian 3DS layout.
	VariantCLIM Variant = iota
	// VariantFLIM is the little-endian 3DS FLIM layout.
	VariantFLIM
	// VariantFLIMBig is the big-endian Wii U FLIM layout. It can be decoded
	// but not saved.
	VariantFLIMBig
)

// Variant identifies a container layout.
type Variant int

// String returns the string representation of the variant.
func (v Variant) String() string {
	switch v {
	case VariantCLIM:
		return "CLIM"
	case VariantFLIM:
		return "FLIM"
	case VariantFLIMBig:
		return "FLIM-BE"
	default:
		return "Unknown"
	}
}

func (v Variant) layout() (nw4c.Layout, bool) {
	switch v {
	case VariantCLIM:
		return nw4c.LayoutCLIM, true
	case VariantFLIM:
		return nw4c.LayoutFLIMLittle, true
	case VariantFLIMBig:
		return nw4c.LayoutFLIMBig, true
	}
	return 0, false
}

func variantOf(l nw4c.Layout) Variant {
	switch l {
	case nw4c.LayoutFLIMLittle:
		return VariantFLIM
	case nw4c.LayoutFLIMBig:
		return VariantFLIMBig
	}
	return VariantCLIM
}

// Orientation flags stored in the image header.
const (
	// OrientationRotate marks textures stored rotated by 90 degrees.
	OrientationRotate = 0x4
	// OrientationTranspose marks textures stored transposed.
	OrientationTranspose = 0x8
)

// Options holds the encoding options for a new container.
type Options struct {
	// Variant selects the container layout.
	Variant Variant

	// Format is the pixel format code in the variant's format table.
	// 9 is RGBA8888 in both tables.
	Format uint8

	// Orientation is the raw orientation byte. Only OrientationRotate and
	// OrientationTranspose change the stored layout.
	Orientation uint8

	// Alignment overrides the header alignment field. 0 keeps the variant
	// default.
	Alignment uint16
}

// DefaultOptions returns the default encoding options: an RGBA8888 CLIM
// with no orientation flags.
func DefaultOptions() *Options {
	return &Options{
		Variant: VariantCLIM,
		Format:  9,
	}
}

// Metadata describes a container without its pixels.
type Metadata struct {
	// Variant is the detected container layout.
	Variant Variant

	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int

	// Format is the raw format code.
	Format uint8

	// FormatName names the pixel format, e.g. "RGBA8888" or "ETC1A4".
	FormatName string

	// Orientation is the raw orientation byte.
	Orientation uint8

	// TileMode is the large-tile mode; always 0 outside VariantFLIMBig.
	TileMode uint8

	// Alignment is the header alignment field.
	Alignment int

	// Version is the file header version.
	Version uint32

	// DataSize is the declared size of the pixel payload.
	DataSize int

	// FileSize is the declared size of the whole container.
	FileSize int

	// Swizzle lists the transforms applied on decode, e.g.
	// "ZOrder > Rotate(270)".
	Swizzle string
}

// Decode reads a container from r and returns its image.
func Decode(r io.Reader) (image.Image, error) {
	t, err := ReadTexture(r)
	if err != nil {
		return nil, err
	}
	return t.Image, nil
}

// DecodeMetadata reads only the footer information without decoding the
// pixels. The whole input is still consumed since the footer is trailing.
func DecodeMetadata(r io.Reader) (*Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := newDecoder(data)
	if err := d.readFooter(); err != nil {
		return nil, err
	}
	return d.metadata(), nil
}

// DecodeConfig returns the dimensions and colour model of a container.
func DecodeConfig(r io.Reader) (image.Config, error) {
	m, err := DecodeMetadata(r)
	if err != nil {
		return image.Config{}, err
	}
	return m.Config(), nil
}

// Config returns the image.Config the container decodes to.
func (m *Metadata) Config() image.Config {
	return image.Config{
		ColorModel: colorModel,
		Width:      m.Width,
		Height:     m.Height,
	}
}

// Parse decodes a complete container held in memory.
func Parse(data []byte) (*Texture, error) {
	return newDecoder(data).decode()
}

// ReadTexture reads a complete container from r.
func ReadTexture(r io.Reader) (*Texture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// DecodeAt decodes a container of the given size from r, reading only the
// footer and the declared payload.
func DecodeAt(r io.ReaderAt, size int64) (*Texture, error) {
	d, err := newDecoderAt(r, size)
	if err != nil {
		return nil, err
	}
	return d.decode()
}

// Encode writes m to w as a new container built with the given options.
// A nil o means DefaultOptions.
func Encode(w io.Writer, m image.Image, o *Options) error {
	if o == nil {
		o = DefaultOptions()
	}
	e := newEncoder(w, m, o)
	return e.encode()
}
