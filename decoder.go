package bxlim

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/mrjoshuak/go-bxlim/internal/nw4c"
	"github.com/mrjoshuak/go-bxlim/internal/pixel"
	"github.com/mrjoshuak/go-bxlim/internal/raster"
	"github.com/mrjoshuak/go-bxlim/internal/swizzle"
	"github.com/mrjoshuak/go-bxlim/internal/tile"
)

var colorModel = color.NRGBAModel

// decoder handles container decoding.
type decoder struct {
	data   []byte
	footer *nw4c.Footer
}

// newDecoder creates a decoder over a complete container.
func newDecoder(data []byte) *decoder {
	return &decoder{data: data}
}

// newDecoderAt reads the footer and then exactly the declared payload
// from r.
func newDecoderAt(r io.ReaderAt, size int64) (*decoder, error) {
	if size < nw4c.FooterSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedInput, size)
	}
	footer := make([]byte, nw4c.FooterSize)
	if err := readFullAt(r, footer, size-nw4c.FooterSize); err != nil {
		return nil, fmt.Errorf("reading footer: %w", err)
	}
	f, err := nw4c.Parse(footer)
	if err != nil {
		return nil, fmt.Errorf("reading footer: %w", mapError(err))
	}
	n := int64(f.Image.DataSize)
	if n > size-nw4c.FooterSize {
		return nil, fmt.Errorf("%w: data size %d exceeds %d available bytes",
			ErrTruncatedInput, n, size-nw4c.FooterSize)
	}
	data := make([]byte, n+nw4c.FooterSize)
	if err := readFullAt(r, data[:n], 0); err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	copy(data[n:], footer)
	return &decoder{data: data}, nil
}

func readFullAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// decode decodes the footer and the pixels.
func (d *decoder) decode() (*Texture, error) {
	if err := d.readFooter(); err != nil {
		return nil, err
	}

	available := len(d.data) - nw4c.FooterSize
	if int64(d.footer.Image.DataSize) > int64(available) {
		return nil, fmt.Errorf("%w: data size %d exceeds %d available bytes",
			ErrTruncatedInput, d.footer.Image.DataSize, available)
	}

	s, err := settingsFor(d.footer)
	if err != nil {
		return nil, fmt.Errorf("resolving format: %w", err)
	}

	img, err := raster.Decode(d.data[:d.footer.Image.DataSize], s)
	if err != nil {
		return nil, fmt.Errorf("decoding pixels: %w", mapError(err))
	}

	return &Texture{Image: img, footer: d.footer}, nil
}

// readFooter parses the trailing footer.
func (d *decoder) readFooter() error {
	f, err := nw4c.Parse(d.data)
	if err != nil {
		return fmt.Errorf("reading footer: %w", mapError(err))
	}
	d.footer = f
	return nil
}

func (d *decoder) metadata() *Metadata {
	return metadataFor(d.footer)
}

func metadataFor(f *nw4c.Footer) *Metadata {
	m := &Metadata{
		Variant:     variantOf(f.Layout),
		Width:       int(f.Image.Width),
		Height:      int(f.Image.Height),
		Format:      f.Image.Format,
		FormatName:  "Unknown",
		Orientation: f.Image.Orientation,
		TileMode:    f.Image.TileMode,
		Alignment:   int(f.Image.Alignment),
		Version:     f.File.Version,
		DataSize:    int(f.Image.DataSize),
		FileSize:    int(f.File.FileSize),
		Swizzle:     swizzle.Build(f.Image.Orientation, f.BigEndian()).String(),
	}
	if desc, err := pixel.Resolve(tableFor(f.Layout), f.Image.Format); err == nil {
		m.FormatName = desc.Name
	}
	return m
}

// tableFor returns the format table of a layout. CLIM always uses the 3DS
// table, whatever its byte order mark says.
func tableFor(l nw4c.Layout) pixel.Table {
	if l == nw4c.LayoutFLIMBig {
		return pixel.TableWiiU
	}
	return pixel.Table3DS
}

// settingsFor derives the raster settings described by a footer.
func settingsFor(f *nw4c.Footer) (raster.Settings, error) {
	desc, err := pixel.Resolve(tableFor(f.Layout), f.Image.Format)
	if err != nil {
		return raster.Settings{}, mapError(err)
	}
	s := raster.Settings{
		Width:    int(f.Image.Width),
		Height:   int(f.Image.Height),
		Format:   desc,
		Pipeline: swizzle.Build(f.Image.Orientation, f.BigEndian()),
	}
	if f.Layout == nw4c.LayoutFLIMBig {
		s.TileMode = tile.Mode(f.Image.TileMode)
	}
	return s, nil
}
