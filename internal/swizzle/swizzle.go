// Package swizzle maps pixel coordinates between the order a texture is
// stored in and the logical image.
//
// A Pipeline is built from a container's orientation byte and byte order.
// Its Inner steps run on decode, from a stored point towards the logical
// image; its Outer steps are their inverses and run in reverse order on
// encode.
//
//	p := swizzle.Build(0x0C, false)
//	stored := p.StoredSize(image.Pt(32, 32))
//	logical := p.Forward(image.Pt(5, 0), stored)
package swizzle

import (
	"fmt"
	"image"
	"strings"
)

// TileSize is the width and height of one Z-order tile.
const TileSize = 8

// Orientation flags. Other bits are reserved and ignored.
const (
	FlagRotate    = 0x4
	FlagTranspose = 0x8
)

// Kind identifies a transform.
type Kind int

const (
	Identity Kind = iota
	ZOrder
	Rotate
	Transpose
)

// String returns the transform name.
func (k Kind) String() string {
	switch k {
	case Identity:
		return "Identity"
	case ZOrder:
		return "ZOrder"
	case Rotate:
		return "Rotate"
	case Transpose:
		return "Transpose"
	default:
		return "Unknown"
	}
}

// Step is one reversible coordinate transform.
type Step struct {
	Kind Kind
	// Angle is the clockwise rotation in degrees (90, 180 or 270).
	Angle   int
	Inverse bool
}

// String formats the step as Kind(args).
func (s Step) String() string {
	var args []string
	if s.Kind == Rotate {
		args = append(args, fmt.Sprint(s.Angle))
	}
	if s.Inverse {
		args = append(args, "inverse")
	}
	if len(args) == 0 {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + strings.Join(args, ", ") + ")"
}

// SwapsAxes reports whether the step exchanges width and height.
func (s Step) SwapsAxes() bool {
	switch s.Kind {
	case Transpose:
		return true
	case Rotate:
		return s.Angle%180 != 0
	}
	return false
}

// Apply maps p, a point of a canvas of the given size, and returns the
// mapped point together with the size of the canvas it lands in.
func (s Step) Apply(p, size image.Point) (image.Point, image.Point) {
	switch s.Kind {
	case ZOrder:
		if s.Inverse {
			return fromTiled(p, size.X), size
		}
		return toTiled(p, size.X), size
	case Transpose:
		return image.Pt(p.Y, p.X), image.Pt(size.Y, size.X)
	case Rotate:
		angle := s.Angle
		if s.Inverse {
			angle = 360 - angle
		}
		return rotate(p, size, angle)
	}
	return p, size
}

func rotate(p, size image.Point, angle int) (image.Point, image.Point) {
	w, h := size.X, size.Y
	switch (angle%360 + 360) % 360 {
	case 90:
		return image.Pt(h-1-p.Y, p.X), image.Pt(h, w)
	case 180:
		return image.Pt(w-1-p.X, h-1-p.Y), size
	case 270:
		return image.Pt(p.Y, w-1-p.X), image.Pt(h, w)
	}
	return p, size
}

// Morton returns the point whose interleaved bits form index i: even
// bits give x, odd bits give y.
func Morton(i int) image.Point {
	var p image.Point
	for b := 0; i>>(2*b) != 0; b++ {
		p.X |= (i >> (2 * b) & 1) << b
		p.Y |= (i >> (2*b + 1) & 1) << b
	}
	return p
}

// MortonIndex is the inverse of Morton.
func MortonIndex(p image.Point) int {
	i := 0
	for b := 0; p.X>>b != 0 || p.Y>>b != 0; b++ {
		i |= (p.X >> b & 1) << (2 * b)
		i |= (p.Y >> b & 1) << (2*b + 1)
	}
	return i
}

// toTiled treats p as the row-major position of a linear storage index
// and returns where that index lands in a canvas of Z-order tiles laid out
// row-major.
func toTiled(p image.Point, width int) image.Point {
	i := p.Y*width + p.X
	tile, local := i/(TileSize*TileSize), i%(TileSize*TileSize)
	perRow := width / TileSize
	m := Morton(local)
	return image.Pt(tile%perRow*TileSize+m.X, tile/perRow*TileSize+m.Y)
}

func fromTiled(p image.Point, width int) image.Point {
	perRow := width / TileSize
	tile := p.Y/TileSize*perRow + p.X/TileSize
	i := tile*TileSize*TileSize + MortonIndex(image.Pt(p.X%TileSize, p.Y%TileSize))
	return image.Pt(i%width, i/width)
}

// Pipeline is an ordered list of transforms and their inverses.
type Pipeline struct {
	Inner []Step
	Outer []Step
}

// Build derives the pipeline for an orientation byte. Little-endian
// containers always start with a Z-order step. Flags are scanned from the
// most significant bit down.
func Build(orient byte, bigEndian bool) Pipeline {
	var p Pipeline
	if !bigEndian {
		p.Inner = append(p.Inner, Step{Kind: ZOrder})
	}
	for bit := 7; bit >= 0; bit-- {
		switch orient & (1 << bit) {
		case FlagTranspose:
			p.Inner = append(p.Inner, Step{Kind: Transpose})
			p.Outer = append(p.Outer, Step{Kind: Transpose, Inverse: true})
		case FlagRotate:
			p.Inner = append(p.Inner, Step{Kind: Rotate, Angle: 270})
			p.Outer = append(p.Outer, Step{Kind: Rotate, Angle: 270, Inverse: true})
		}
	}
	return p
}

// Empty reports whether the pipeline is plain row-major addressing.
func (p Pipeline) Empty() bool {
	return len(p.Inner) == 0 && len(p.Outer) == 0
}

// HasZOrder reports whether stored pixels follow the Z-order curve.
func (p Pipeline) HasZOrder() bool {
	return len(p.Inner) > 0 && p.Inner[0].Kind == ZOrder
}

// SwapsAxes reports whether the stored canvas is the logical canvas with
// width and height exchanged.
func (p Pipeline) SwapsAxes() bool {
	swaps := false
	for _, s := range p.Inner {
		if s.SwapsAxes() {
			swaps = !swaps
		}
	}
	return swaps
}

// StoredSize returns the stored canvas size for a logical canvas size.
func (p Pipeline) StoredSize(logical image.Point) image.Point {
	if p.SwapsAxes() {
		return image.Pt(logical.Y, logical.X)
	}
	return logical
}

// Forward maps a point of the stored canvas to the logical canvas.
func (p Pipeline) Forward(pt, stored image.Point) image.Point {
	size := stored
	for _, s := range p.Inner {
		pt, size = s.Apply(pt, size)
	}
	return pt
}

// Inverse maps a point of the logical canvas to the stored canvas.
func (p Pipeline) Inverse(pt, logical image.Point) image.Point {
	size := logical
	for i := len(p.Outer) - 1; i >= 0; i-- {
		pt, size = p.Outer[i].Apply(pt, size)
	}
	if p.HasZOrder() {
		pt, _ = Step{Kind: ZOrder, Inverse: true}.Apply(pt, size)
	}
	return pt
}

// String lists the inner steps, e.g. "ZOrder > Transpose".
func (p Pipeline) String() string {
	if len(p.Inner) == 0 {
		return "Identity"
	}
	names := make([]string, len(p.Inner))
	for i, s := range p.Inner {
		names[i] = s.String()
	}
	return strings.Join(names, " > ")
}
