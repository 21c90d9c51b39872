package swizzle

import (
	"image"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		orient    byte
		bigEndian bool
		inner     []Step
		outer     []Step
	}{
		{
			"little endian default",
			0, false,
			[]Step{{Kind: ZOrder}},
			nil,
		},
		{
			"big endian default",
			0, true,
			nil,
			nil,
		},
		{
			"rotate",
			0x04, false,
			[]Step{{Kind: ZOrder}, {Kind: Rotate, Angle: 270}},
			[]Step{{Kind: Rotate, Angle: 270, Inverse: true}},
		},
		{
			"transpose and rotate in bit order",
			0x0C, false,
			[]Step{{Kind: ZOrder}, {Kind: Transpose}, {Kind: Rotate, Angle: 270}},
			[]Step{{Kind: Transpose, Inverse: true}, {Kind: Rotate, Angle: 270, Inverse: true}},
		},
		{
			"reserved bits ignored",
			0xF3, true,
			nil,
			nil,
		},
		{
			"big endian transpose",
			0x08 | 0x80, true,
			[]Step{{Kind: Transpose}},
			[]Step{{Kind: Transpose, Inverse: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Build(tt.orient, tt.bigEndian)
			if !reflect.DeepEqual(p.Inner, tt.inner) {
				t.Errorf("Inner = %v, want %v", p.Inner, tt.inner)
			}
			if !reflect.DeepEqual(p.Outer, tt.outer) {
				t.Errorf("Outer = %v, want %v", p.Outer, tt.outer)
			}
		})
	}
}

func TestBuild_EmptyBigEndian(t *testing.T) {
	p := Build(0, true)
	if !p.Empty() {
		t.Errorf("Build(0, true) = %v, want empty", p)
	}
	pt := image.Pt(3, 5)
	if got := p.Forward(pt, image.Pt(8, 8)); got != pt {
		t.Errorf("Forward(%v) = %v on empty pipeline", pt, got)
	}
}

func TestStepString(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{Step{Kind: ZOrder}, "ZOrder"},
		{Step{Kind: Transpose, Inverse: true}, "Transpose(inverse)"},
		{Step{Kind: Rotate, Angle: 270}, "Rotate(270)"},
		{Step{Kind: Rotate, Angle: 270, Inverse: true}, "Rotate(270, inverse)"},
	}

	for _, tt := range tests {
		if got := tt.step.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if got := Build(0x0C, false).String(); got != "ZOrder > Transpose > Rotate(270)" {
		t.Errorf("Pipeline.String() = %q", got)
	}
}

func TestMorton(t *testing.T) {
	tests := []struct {
		i    int
		want image.Point
	}{
		{0, image.Pt(0, 0)},
		{1, image.Pt(1, 0)},
		{2, image.Pt(0, 1)},
		{3, image.Pt(1, 1)},
		{4, image.Pt(2, 0)},
		{16, image.Pt(4, 0)},
		{63, image.Pt(7, 7)},
	}

	for _, tt := range tests {
		if got := Morton(tt.i); got != tt.want {
			t.Errorf("Morton(%d) = %v, want %v", tt.i, got, tt.want)
		}
		if got := MortonIndex(tt.want); got != tt.i {
			t.Errorf("MortonIndex(%v) = %d, want %d", tt.want, got, tt.i)
		}
	}
}

// Z-order forward then inverse is the identity and the forward mapping
// is a permutation of the canvas.
func TestZOrder_Invertible(t *testing.T) {
	for _, size := range []image.Point{{8, 8}, {16, 8}, {8, 24}, {64, 32}} {
		seen := make(map[image.Point]bool)
		fwd := Step{Kind: ZOrder}
		inv := Step{Kind: ZOrder, Inverse: true}
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				p := image.Pt(x, y)
				q, _ := fwd.Apply(p, size)
				if !q.In(image.Rectangle{Max: size}) {
					t.Fatalf("%v: %v maps outside to %v", size, p, q)
				}
				if seen[q] {
					t.Fatalf("%v: %v maps to duplicate %v", size, p, q)
				}
				seen[q] = true
				if back, _ := inv.Apply(q, size); back != p {
					t.Fatalf("%v: %v -> %v -> %v", size, p, q, back)
				}
			}
		}
	}
}

func TestZOrder_TileLayout(t *testing.T) {
	size := image.Pt(16, 8)
	fwd := Step{Kind: ZOrder}
	// Index 64 starts the second tile.
	if got, _ := fwd.Apply(image.Pt(0, 4), size); got != image.Pt(8, 0) {
		t.Errorf("index 64 maps to %v, want (8,0)", got)
	}
	if got, _ := fwd.Apply(image.Pt(3, 0), size); got != image.Pt(1, 1) {
		t.Errorf("index 3 maps to %v, want (1,1)", got)
	}
}

func TestRotate(t *testing.T) {
	size := image.Pt(4, 2)
	tests := []struct {
		angle    int
		p, want  image.Point
		wantSize image.Point
	}{
		{90, image.Pt(0, 0), image.Pt(1, 0), image.Pt(2, 4)},
		{180, image.Pt(0, 0), image.Pt(3, 1), image.Pt(4, 2)},
		{270, image.Pt(0, 0), image.Pt(0, 3), image.Pt(2, 4)},
		{270, image.Pt(3, 1), image.Pt(1, 0), image.Pt(2, 4)},
	}

	for _, tt := range tests {
		got, gotSize := Step{Kind: Rotate, Angle: tt.angle}.Apply(tt.p, size)
		if got != tt.want || gotSize != tt.wantSize {
			t.Errorf("Rotate(%d) %v = %v in %v, want %v in %v", tt.angle, tt.p, got, gotSize, tt.want, tt.wantSize)
		}
	}
}

// Each inner step followed by its outer partner returns every point.
func TestStepPairs(t *testing.T) {
	pairs := []struct {
		inner, outer Step
	}{
		{Step{Kind: Transpose}, Step{Kind: Transpose, Inverse: true}},
		{Step{Kind: Rotate, Angle: 270}, Step{Kind: Rotate, Angle: 270, Inverse: true}},
		{Step{Kind: Rotate, Angle: 90}, Step{Kind: Rotate, Angle: 90, Inverse: true}},
		{Step{Kind: Rotate, Angle: 180}, Step{Kind: Rotate, Angle: 180, Inverse: true}},
		{Step{Kind: Identity}, Step{Kind: Identity, Inverse: true}},
	}
	size := image.Pt(6, 3)

	for _, pair := range pairs {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				p := image.Pt(x, y)
				q, qs := pair.inner.Apply(p, size)
				back, bs := pair.outer.Apply(q, qs)
				if back != p || bs != size {
					t.Fatalf("%v then %v: %v -> %v -> %v", pair.inner, pair.outer, p, q, back)
				}
			}
		}
	}
}

func TestPipeline_StoredSize(t *testing.T) {
	tests := []struct {
		orient byte
		want   image.Point
	}{
		{0x00, image.Pt(16, 8)},
		{0x04, image.Pt(8, 16)},
		{0x08, image.Pt(8, 16)},
		{0x0C, image.Pt(16, 8)},
	}

	for _, tt := range tests {
		if got := Build(tt.orient, false).StoredSize(image.Pt(16, 8)); got != tt.want {
			t.Errorf("orient %#x StoredSize = %v, want %v", tt.orient, got, tt.want)
		}
	}
}

// Inverse undoes Forward for every orientation over the whole canvas.
func TestPipeline_RoundTrip(t *testing.T) {
	for _, bigEndian := range []bool{false, true} {
		for _, orient := range []byte{0x00, 0x04, 0x08, 0x0C, 0x83} {
			p := Build(orient, bigEndian)
			logical := image.Pt(32, 16)
			stored := p.StoredSize(logical)
			seen := make(map[image.Point]bool)
			for y := 0; y < stored.Y; y++ {
				for x := 0; x < stored.X; x++ {
					s := image.Pt(x, y)
					l := p.Forward(s, stored)
					if !l.In(image.Rectangle{Max: logical}) {
						t.Fatalf("%v: %v maps outside to %v", p, s, l)
					}
					if seen[l] {
						t.Fatalf("%v: duplicate logical point %v", p, l)
					}
					seen[l] = true
					if back := p.Inverse(l, logical); back != s {
						t.Fatalf("%v: %v -> %v -> %v", p, s, l, back)
					}
				}
			}
		}
	}
}
