// Package tile implements the large-tile reordering used by big-endian
// FLIM textures. Tile mode 4 stores 8x8 tiles in a quadrant-swizzled
// order; Untile turns such a canvas into row-major order and Retile
// reverses it.
//
// Canvases are flat pixel buffers with bpp bytes per pixel and no row
// padding.
package tile

import (
	"errors"
	"fmt"
	"image"
)

// Size is the width and height of one tile in pixels.
const Size = 8

var (
	// ErrMode is returned for tile modes without a reordering.
	ErrMode = errors.New("tile: unsupported tile mode")
	// ErrGeometry is returned when a canvas is not padded for its mode.
	ErrGeometry = errors.New("tile: canvas not aligned to tile groups")
)

// Mode is the tile mode field of a big-endian image header.
type Mode uint8

const (
	ModeLinear        Mode = 0
	ModeLinearAligned Mode = 1
	ModeQuadrant      Mode = 4
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "Linear"
	case ModeLinearAligned:
		return "LinearAligned"
	case ModeQuadrant:
		return "Quadrant"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Check returns ErrMode for modes that cannot be reordered.
func (m Mode) Check() error {
	switch m {
	case ModeLinear, ModeLinearAligned, ModeQuadrant:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrMode, uint8(m))
}

// Align pads size to the multiple the mode needs: four tiles across and
// two tiles down for ModeQuadrant, unchanged otherwise.
func (m Mode) Align(size image.Point) image.Point {
	if m != ModeQuadrant {
		return size
	}
	return image.Pt(alignUp(size.X, 4*Size), alignUp(size.Y, 2*Size))
}

func alignUp(v, n int) int {
	return (v + n - 1) / n * n
}

// Untile reorders the stored canvas src into row-major order in dst.
func Untile(dst, src []byte, width, height, bpp int, m Mode) error {
	if err := check(dst, src, width, height, bpp, m); err != nil {
		return err
	}
	if m != ModeQuadrant {
		copy(dst, src)
		return nil
	}
	stride := width * bpp
	quadrantOrder(width, height, Size, func(from, to image.Point) {
		copyTile(dst, src, to, from, stride, bpp)
	})
	return nil
}

// Retile is the inverse of Untile.
func Retile(dst, src []byte, width, height, bpp int, m Mode) error {
	if err := check(dst, src, width, height, bpp, m); err != nil {
		return err
	}
	if m != ModeQuadrant {
		copy(dst, src)
		return nil
	}
	stride := width * bpp
	quadrantOrder(width, height, Size, func(from, to image.Point) {
		copyTile(dst, src, from, to, stride, bpp)
	})
	return nil
}

func check(dst, src []byte, width, height, bpp int, m Mode) error {
	if err := m.Check(); err != nil {
		return err
	}
	if m.Align(image.Pt(width, height)) != image.Pt(width, height) {
		return fmt.Errorf("%w: %dx%d", ErrGeometry, width, height)
	}
	if n := width * height * bpp; len(src) < n || len(dst) < n {
		return fmt.Errorf("%w: buffers shorter than %d bytes", ErrGeometry, n)
	}
	return nil
}

// quadrantOrder calls fn for every tile of a width x height canvas with
// the tile's stored origin and its row-major origin. Stored tiles are
// visited in bands two tiles high. Each 2x2 group is taken together with
// its horizontal mirror; the scan direction flips every two bands and the
// vertical quadrant offsets flip every band.
func quadrantOrder(width, height, t int, fn func(from, to image.Point)) {
	sx := [4]int{0, 0, t, t}
	sy := [4]int{t, 0, t, 0}

	var next image.Point
	emit := func(from image.Point) {
		fn(from, next)
		next.X += t
		if next.X >= width {
			next.X = 0
			next.Y += t
		}
	}

	for band, y := 0, 0; y < height; band, y = band+1, y+2*t {
		if band%4 < 2 {
			for x := 0; x < width/2; x += 2 * t {
				for i := range sx {
					emit(image.Pt(x+sx[i], y+sy[i]))
					emit(image.Pt(width-x-2*t+sx[i], y+sy[i]))
				}
			}
		} else {
			for x := width/2 - 2*t; x >= 0; x -= 2 * t {
				for i := range sx {
					emit(image.Pt(width-x-2*t+sx[i], y+sy[i]))
					emit(image.Pt(x+sx[i], y+sy[i]))
				}
			}
		}
		sy[0], sy[1], sy[2], sy[3] = sy[3], sy[2], sy[1], sy[0]
	}
}

// copyTile copies the tile at src origin from into dst origin to.
func copyTile(dst, src []byte, to, from image.Point, stride, bpp int) {
	n := Size * bpp
	for r := 0; r < Size; r++ {
		d := (to.Y+r)*stride + to.X*bpp
		s := (from.Y+r)*stride + from.X*bpp
		copy(dst[d:d+n], src[s:s+n])
	}
}

// Crop returns the sub-rectangle r of a width-pixel-wide canvas as a new
// tightly packed buffer.
func Crop(src []byte, width, bpp int, r image.Rectangle) []byte {
	out := make([]byte, r.Dx()*r.Dy()*bpp)
	n := r.Dx() * bpp
	for y := 0; y < r.Dy(); y++ {
		s := ((r.Min.Y+y)*width + r.Min.X) * bpp
		copy(out[y*n:(y+1)*n], src[s:s+n])
	}
	return out
}
