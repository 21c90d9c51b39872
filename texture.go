package bxlim

import (
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"

	"github.com/mrjoshuak/go-bxlim/internal/nw4c"
	"github.com/mrjoshuak/go-bxlim/internal/raster"
)

// Texture is one decoded container. Image may be edited or replaced and
// written back with Save; the footer fields other than the dimensions and
// sizes are kept as read.
type Texture struct {
	// Image is the logical pixel grid.
	Image *image.NRGBA

	footer *nw4c.Footer
}

// Metadata returns the footer information as of the last parse or save.
func (t *Texture) Metadata() *Metadata {
	return metadataFor(t.footer)
}

// Variant returns the container layout.
func (t *Texture) Variant() Variant {
	return variantOf(t.footer.Layout)
}

// SetImage replaces the pixel grid with a copy of m converted to NRGBA.
// Later changes to m do not affect the texture. The texture takes the
// dimensions of m on the next save.
func (t *Texture) SetImage(m image.Image) {
	t.Image = toNRGBA(m)
}

// Save encodes the texture and writes it to w. Nothing is written when
// encoding fails.
func (t *Texture) Save(w io.Writer) error {
	data, err := t.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Bytes encodes the texture and returns the container. Width, height,
// data size and file size are recomputed from Image.
func (t *Texture) Bytes() ([]byte, error) {
	if t.footer.Layout == nw4c.LayoutFLIMBig {
		return nil, fmt.Errorf("%w: saving big-endian FLIM", ErrUnsupportedOperation)
	}
	if t.Image == nil {
		return nil, fmt.Errorf("%w: texture has no image", ErrUnsupportedOperation)
	}
	b := t.Image.Bounds()
	if b.Dx() > 0xFFFF || b.Dy() > 0xFFFF {
		return nil, fmt.Errorf("%w: %dx%d exceeds the header limits",
			ErrUnsupportedOperation, b.Dx(), b.Dy())
	}

	f := *t.footer
	f.Image.Width = uint16(b.Dx())
	f.Image.Height = uint16(b.Dy())
	s, err := settingsFor(&f)
	if err != nil {
		return nil, fmt.Errorf("resolving format: %w", err)
	}

	payload, err := raster.Encode(t.Image, s)
	if err != nil {
		return nil, fmt.Errorf("encoding pixels: %w", mapError(err))
	}
	f.Image.DataSize = uint32(len(payload))
	f.File.FileSize = uint32(len(payload) + nw4c.FooterSize)
	*t.footer = f

	return append(payload, f.Bytes()...), nil
}

// toNRGBA returns a copy of m as an *image.NRGBA whose bounds start at the
// origin.
func toNRGBA(m image.Image) *image.NRGBA {
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := m.(*image.NRGBA); ok {
		// Straight row copies keep the colour of translucent pixels.
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return dst
}
