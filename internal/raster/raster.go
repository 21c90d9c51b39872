// Package raster converts between texture payloads and images.
//
// Decoding reads the payload in storage order into the stored canvas,
// reorders large tiles, then maps every stored pixel through the swizzle
// pipeline onto the padded logical canvas and crops it to the image size.
// Encoding runs the same steps backwards.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/mrjoshuak/go-bxlim/internal/block"
	"github.com/mrjoshuak/go-bxlim/internal/pixel"
	"github.com/mrjoshuak/go-bxlim/internal/swizzle"
	"github.com/mrjoshuak/go-bxlim/internal/tile"
)

// ErrTruncated is returned when a payload is shorter than its canvas.
var ErrTruncated = errors.New("raster: payload shorter than canvas")

const bytesPerPixel = 4

// Settings describes how one texture is stored.
type Settings struct {
	Width, Height int
	Format        pixel.Descriptor
	Pipeline      swizzle.Pipeline
	TileMode      tile.Mode
}

// Alignment returns the granularity both logical dimensions are padded
// to: a Z-order tile, else the format's block size.
func (s Settings) Alignment() int {
	if s.Pipeline.HasZOrder() {
		return swizzle.TileSize
	}
	return s.Format.BlockSize()
}

// LogicalSize returns the padded size of the logical canvas.
func (s Settings) LogicalSize() image.Point {
	a := s.Alignment()
	return image.Pt(alignUp(s.Width, a), alignUp(s.Height, a))
}

// PipelineSize returns the size of the canvas the pipeline maps from.
func (s Settings) PipelineSize() image.Point {
	return s.Pipeline.StoredSize(s.LogicalSize())
}

// StoredSize returns the size of the canvas held in the payload.
func (s Settings) StoredSize() image.Point {
	return s.TileMode.Align(s.PipelineSize())
}

// DataSize returns the payload size in bytes.
func (s Settings) DataSize() int {
	st := s.StoredSize()
	return s.Format.DataSize(st.X, st.Y)
}

func alignUp(v, n int) int {
	return (v + n - 1) / n * n
}

// Decode converts a payload into an image of s.Width x s.Height.
func Decode(data []byte, s Settings) (*image.NRGBA, error) {
	if err := s.TileMode.Check(); err != nil {
		return nil, err
	}
	if need := s.DataSize(); len(data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncated, len(data), need)
	}

	stored := s.StoredSize()
	canvas := image.NewNRGBA(image.Rectangle{Max: stored})
	if err := readCanvas(canvas, data, s); err != nil {
		return nil, err
	}
	if s.TileMode == tile.ModeQuadrant {
		flat := make([]byte, len(canvas.Pix))
		if err := tile.Untile(flat, canvas.Pix, stored.X, stored.Y, bytesPerPixel, s.TileMode); err != nil {
			return nil, err
		}
		canvas.Pix = flat
	}

	ls := s.LogicalSize()
	logical := image.NewNRGBA(image.Rectangle{Max: ls})
	ps := s.PipelineSize()
	for y := 0; y < ps.Y; y++ {
		for x := 0; x < ps.X; x++ {
			p := image.Pt(x, y)
			copyPixel(logical, s.Pipeline.Forward(p, ps), canvas, p)
		}
	}

	r := image.Rect(0, 0, s.Width, s.Height)
	return &image.NRGBA{
		Pix:    tile.Crop(logical.Pix, ls.X, bytesPerPixel, r),
		Stride: s.Width * bytesPerPixel,
		Rect:   r,
	}, nil
}

// Encode converts the top-left s.Width x s.Height pixels of img into a
// payload. Padding on the logical canvas repeats the nearest edge pixel,
// so a block cut by the image edge holds only colours of the image.
func Encode(img *image.NRGBA, s Settings) ([]byte, error) {
	if err := s.TileMode.Check(); err != nil {
		return nil, err
	}

	stored := s.StoredSize()
	canvas := image.NewNRGBA(image.Rectangle{Max: stored})
	ls := s.LogicalSize()
	origin := img.Bounds().Min
	if s.Width > 0 && s.Height > 0 {
		for y := 0; y < ls.Y; y++ {
			sy := min(y, s.Height-1)
			for x := 0; x < ls.X; x++ {
				p := s.Pipeline.Inverse(image.Pt(x, y), ls)
				copyPixel(canvas, p, img, origin.Add(image.Pt(min(x, s.Width-1), sy)))
			}
		}
	}
	if s.TileMode == tile.ModeQuadrant {
		flat := make([]byte, len(canvas.Pix))
		if err := tile.Retile(flat, canvas.Pix, stored.X, stored.Y, bytesPerPixel, s.TileMode); err != nil {
			return nil, err
		}
		canvas.Pix = flat
	}
	return writeCanvas(canvas, s)
}

func copyPixel(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sp image.Point) {
	if !sp.In(src.Rect) || !dp.In(dst.Rect) {
		return
	}
	d := dst.PixOffset(dp.X, dp.Y)
	s := src.PixOffset(sp.X, sp.Y)
	copy(dst.Pix[d:d+bytesPerPixel], src.Pix[s:s+bytesPerPixel])
}

// blockPixel returns where pixel k of block n lands on the stored canvas
// and its index inside the block. Under Z-order, blocks follow each other
// in storage order and their pixels are emitted along the Morton curve;
// otherwise blocks are laid out row-major.
func blockPixel(n, k, width int, zorder bool) (image.Point, int) {
	if zorder {
		m := swizzle.Morton(k)
		seq := n*block.Dim*block.Dim + k
		return image.Pt(seq%width, seq/width), m.Y*block.Dim + m.X
	}
	perRow := width / block.Dim
	return image.Pt(n%perRow*block.Dim+k%block.Dim, n/perRow*block.Dim+k/block.Dim), k
}

func readCanvas(canvas *image.NRGBA, data []byte, s Settings) error {
	size := canvas.Rect.Size()
	if !s.Format.Compressed() {
		px, err := s.Format.DecodePixels(data, size.X*size.Y)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		for i, c := range px {
			canvas.SetNRGBA(i%size.X, i/size.X, c)
		}
		return nil
	}

	codec, err := block.For(s.Format.Scheme)
	if err != nil {
		return err
	}
	order := s.Format.Order.ByteOrder()
	zorder := s.Pipeline.HasZOrder()
	blocks := (size.X / block.Dim) * (size.Y / block.Dim)
	for n := 0; n < blocks; n++ {
		b := codec.Decode(data[n*codec.Size:], order)
		for k := range b {
			p, i := blockPixel(n, k, size.X, zorder)
			canvas.SetNRGBA(p.X, p.Y, b[i])
		}
	}
	return nil
}

func writeCanvas(canvas *image.NRGBA, s Settings) ([]byte, error) {
	size := canvas.Rect.Size()
	if !s.Format.Compressed() {
		px := make([]color.NRGBA, 0, size.X*size.Y)
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				px = append(px, canvas.NRGBAAt(x, y))
			}
		}
		return s.Format.EncodePixels(px)
	}

	codec, err := block.For(s.Format.Scheme)
	if err != nil {
		return nil, err
	}
	order := s.Format.Order.ByteOrder()
	zorder := s.Pipeline.HasZOrder()
	blocks := (size.X / block.Dim) * (size.Y / block.Dim)
	out := make([]byte, 0, blocks*codec.Size)
	for n := 0; n < blocks; n++ {
		var b block.Block
		for k := range b {
			p, i := blockPixel(n, k, size.X, zorder)
			b[i] = canvas.NRGBAAt(p.X, p.Y)
		}
		out = codec.Append(out, &b, order)
	}
	return out, nil
}
