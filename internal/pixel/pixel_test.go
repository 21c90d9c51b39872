package pixel

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func TestResolve_Names(t *testing.T) {
	tests := []struct {
		table Table
		code  uint8
		want  string
		bpp   int
	}{
		{Table3DS, 0, "L8", 8},
		{Table3DS, 1, "A8", 8},
		{Table3DS, 2, "L4A4", 8},
		{Table3DS, 3, "L8A8", 16},
		{Table3DS, 4, "HL88", 16},
		{Table3DS, 5, "RGB565", 16},
		{Table3DS, 6, "RGB888", 24},
		{Table3DS, 7, "RGBA5551", 16},
		{Table3DS, 8, "RGBA4444", 16},
		{Table3DS, 9, "RGBA8888", 32},
		{Table3DS, 10, "ETC1", 4},
		{Table3DS, 11, "ETC1A4", 8},
		{Table3DS, 18, "L4", 4},
		{Table3DS, 19, "A4", 4},
		{TableWiiU, 12, "DXT1", 4},
		{TableWiiU, 13, "DXT3", 8},
		{TableWiiU, 14, "DXT5", 8},
		{TableWiiU, 15, "ATI1L", 4},
		{TableWiiU, 16, "ATI1A", 4},
		{TableWiiU, 17, "ATI2", 8},
		{TableWiiU, 24, "RGBA1010102", 32},
	}

	for _, tt := range tests {
		d, err := Resolve(tt.table, tt.code)
		if err != nil {
			t.Errorf("Resolve(%v, %d) returned error: %v", tt.table, tt.code, err)
			continue
		}
		if d.Name != tt.want {
			t.Errorf("Resolve(%v, %d).Name = %q, want %q", tt.table, tt.code, d.Name, tt.want)
		}
		if got := d.BitsPerPixel(); got != tt.bpp {
			t.Errorf("%s BitsPerPixel() = %d, want %d", d.Name, got, tt.bpp)
		}
	}
}

func TestResolve_ByteOrder(t *testing.T) {
	for _, code := range Codes(Table3DS) {
		d, _ := Resolve(Table3DS, code)
		if d.Order != LittleEndian {
			t.Errorf("3DS %s Order = %v, want LittleEndian", d.Name, d.Order)
		}
	}
	for _, code := range Codes(TableWiiU) {
		d, _ := Resolve(TableWiiU, code)
		if d.Order != BigEndian {
			t.Errorf("WiiU %s Order = %v, want BigEndian", d.Name, d.Order)
		}
	}
}

func TestResolve_Unsupported(t *testing.T) {
	tests := []struct {
		table Table
		code  uint8
	}{
		{Table3DS, 12},
		{Table3DS, 17},
		{Table3DS, 20},
		{Table3DS, 24},
		{TableWiiU, 20},
		{TableWiiU, 21},
		{TableWiiU, 22},
		{TableWiiU, 23},
		{TableWiiU, 25},
		{TableWiiU, 255},
		{Table(5), 0},
	}

	for _, tt := range tests {
		if _, err := Resolve(tt.table, tt.code); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Resolve(%v, %d) error = %v, want ErrUnsupported", tt.table, tt.code, err)
		}
	}
}

// Every code in 0..255 either resolves or fails deterministically.
func TestResolve_Completeness(t *testing.T) {
	for _, table := range []Table{Table3DS, TableWiiU} {
		supported := map[uint8]bool{}
		for _, c := range Codes(table) {
			supported[c] = true
		}
		for code := 0; code < 256; code++ {
			d, err := Resolve(table, uint8(code))
			if supported[uint8(code)] {
				if err != nil {
					t.Errorf("%v code %d: unexpected error %v", table, code, err)
				}
				if d.BitsPerPixel() == 0 {
					t.Errorf("%v code %d: zero bits per pixel", table, code)
				}
				continue
			}
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("%v code %d: error = %v, want ErrUnsupported", table, code, err)
			}
		}
	}
}

func TestExpandQuantize(t *testing.T) {
	for _, bits := range []int{1, 4, 5, 6, 8} {
		for v := uint32(0); v < 1<<bits; v++ {
			if got := Quantize(Expand(v, bits), bits); got != v {
				t.Errorf("Quantize(Expand(%d, %d)) = %d", v, bits, got)
			}
		}
	}
	for c := 0; c < 256; c++ {
		if got := Expand(Quantize(uint8(c), 10), 10); got != uint8(c) {
			t.Errorf("Expand(Quantize(%d, 10), 10) = %d", c, got)
		}
	}
	if Expand(31, 5) != 255 || Expand(15, 4) != 255 || Expand(1, 1) != 255 {
		t.Error("maximum channel value does not expand to 255")
	}
}

func TestDecodePixels_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		code  uint8
		data  []byte
		want  []color.NRGBA
	}{
		{
			"rgba8888 le stores abgr",
			Table3DS, 9,
			[]byte{0x40, 0x30, 0x20, 0x10},
			[]color.NRGBA{{0x10, 0x20, 0x30, 0x40}},
		},
		{
			"rgba8888 be stores rgba",
			TableWiiU, 9,
			[]byte{0x10, 0x20, 0x30, 0x40},
			[]color.NRGBA{{0x10, 0x20, 0x30, 0x40}},
		},
		{
			"rgb888 le stores bgr",
			Table3DS, 6,
			[]byte{0x03, 0x02, 0x01},
			[]color.NRGBA{{0x01, 0x02, 0x03, 0xFF}},
		},
		{
			"rgb565 le",
			Table3DS, 5,
			[]byte{0x00, 0xF8},
			[]color.NRGBA{{0xFF, 0x00, 0x00, 0xFF}},
		},
		{
			"rgba5551 alpha bit",
			Table3DS, 7,
			[]byte{0x3F, 0x00},
			[]color.NRGBA{{0x00, 0x00, 0xFF, 0xFF}},
		},
		{
			"la88 le stores alpha first",
			Table3DS, 3,
			[]byte{0x80, 0x40},
			[]color.NRGBA{{0x40, 0x40, 0x40, 0x80}},
		},
		{
			"la44 luminance high nibble",
			Table3DS, 2,
			[]byte{0xF0},
			[]color.NRGBA{{0xFF, 0xFF, 0xFF, 0x00}},
		},
		{
			"l4 le low nibble first",
			Table3DS, 18,
			[]byte{0xF0},
			[]color.NRGBA{{0x00, 0x00, 0x00, 0xFF}, {0xFF, 0xFF, 0xFF, 0xFF}},
		},
		{
			"l4 be high nibble first",
			TableWiiU, 18,
			[]byte{0xF0},
			[]color.NRGBA{{0xFF, 0xFF, 0xFF, 0xFF}, {0x00, 0x00, 0x00, 0xFF}},
		},
		{
			"a8 is white",
			Table3DS, 1,
			[]byte{0x7F},
			[]color.NRGBA{{0xFF, 0xFF, 0xFF, 0x7F}},
		},
		{
			"hl88 maps to red and green",
			Table3DS, 4,
			[]byte{0x22, 0x11},
			[]color.NRGBA{{0x11, 0x22, 0x00, 0xFF}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Resolve(tt.table, tt.code)
			if err != nil {
				t.Fatalf("Resolve() returned error: %v", err)
			}
			got, err := d.DecodePixels(tt.data, len(tt.want))
			if err != nil {
				t.Fatalf("DecodePixels() returned error: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("pixel %d = %v, want %v", i, got[i], tt.want[i])
				}
			}

			enc, err := d.EncodePixels(got)
			if err != nil {
				t.Fatalf("EncodePixels() returned error: %v", err)
			}
			if !bytes.Equal(enc, tt.data) {
				t.Errorf("EncodePixels() = % X, want % X", enc, tt.data)
			}
		})
	}
}

func TestDecodePixels_Truncated(t *testing.T) {
	d, _ := Resolve(Table3DS, 9)
	if _, err := d.DecodePixels([]byte{1, 2, 3, 4, 5}, 2); err == nil {
		t.Error("DecodePixels() on short data returned nil error")
	}
}

func TestPackedFormats_Compressed(t *testing.T) {
	d, _ := Resolve(Table3DS, 10)
	if _, err := d.DecodePixels(make([]byte, 8), 16); !errors.Is(err, ErrCompressed) {
		t.Errorf("DecodePixels(ETC1) error = %v, want ErrCompressed", err)
	}
	if _, err := d.EncodePixels(make([]color.NRGBA, 16)); !errors.Is(err, ErrCompressed) {
		t.Errorf("EncodePixels(ETC1) error = %v, want ErrCompressed", err)
	}
}

// decode -> encode -> decode is stable for every packed format.
func TestPackedFormats_Stable(t *testing.T) {
	src := make([]color.NRGBA, 64)
	for i := range src {
		src[i] = color.NRGBA{uint8(i * 4), uint8(255 - i*3), uint8(i * 7), uint8(i * 11)}
	}

	for _, table := range []Table{Table3DS, TableWiiU} {
		for _, code := range Codes(table) {
			d, _ := Resolve(table, code)
			if d.Compressed() {
				continue
			}
			enc, err := d.EncodePixels(src)
			if err != nil {
				t.Fatalf("%s EncodePixels() returned error: %v", d.Name, err)
			}
			if len(enc) != d.DataSize(len(src), 1) {
				t.Errorf("%s encoded %d bytes, want %d", d.Name, len(enc), d.DataSize(len(src), 1))
			}
			first, err := d.DecodePixels(enc, len(src))
			if err != nil {
				t.Fatalf("%s DecodePixels() returned error: %v", d.Name, err)
			}
			enc2, _ := d.EncodePixels(first)
			second, err := d.DecodePixels(enc2, len(src))
			if err != nil {
				t.Fatalf("%s DecodePixels() returned error: %v", d.Name, err)
			}
			for i := range first {
				if first[i] != second[i] {
					t.Errorf("%v %s pixel %d: %v then %v", table, d.Name, i, first[i], second[i])
					break
				}
			}
			if maxChannelBits(d) <= 8 && !bytes.Equal(enc, enc2) {
				t.Errorf("%v %s re-encoding changed bytes", table, d.Name)
			}
		}
	}
}

func TestLuma_Gray(t *testing.T) {
	for v := 0; v < 256; v++ {
		if got := Luma(uint8(v), uint8(v), uint8(v)); got != uint8(v) {
			t.Errorf("Luma(%d,%d,%d) = %d", v, v, v, got)
		}
	}
}

func maxChannelBits(d Descriptor) int {
	max := 0
	for _, c := range d.channels() {
		if c.Bits > max {
			max = c.Bits
		}
	}
	return max
}
