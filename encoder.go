package bxlim

import (
	"fmt"
	"image"
	"io"

	"github.com/mrjoshuak/go-bxlim/internal/nw4c"
)

// encoder handles encoding new containers.
type encoder struct {
	w       io.Writer
	img     image.Image
	options *Options
}

// newEncoder creates a new encoder.
func newEncoder(w io.Writer, img image.Image, options *Options) *encoder {
	return &encoder{
		w:       w,
		img:     img,
		options: options,
	}
}

// encode builds the texture and writes it in one piece.
func (e *encoder) encode() error {
	t, err := NewTexture(e.img, e.options)
	if err != nil {
		return fmt.Errorf("building texture: %w", err)
	}

	data, err := t.Bytes()
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

// NewTexture creates a texture holding a copy of m with a fresh footer
// built from o. A nil o means DefaultOptions.
func NewTexture(m image.Image, o *Options) (*Texture, error) {
	if o == nil {
		o = DefaultOptions()
	}
	layout, ok := o.Variant.layout()
	if !ok {
		return nil, fmt.Errorf("%w: variant %d", ErrUnrecognizedContainer, o.Variant)
	}

	f := nw4c.New(layout)
	f.Image.Format = o.Format
	f.Image.Orientation = o.Orientation
	if o.Alignment != 0 {
		f.Image.Alignment = o.Alignment
	}
	if _, err := settingsFor(f); err != nil {
		return nil, err
	}

	return &Texture{Image: toNRGBA(m), footer: f}, nil
}
