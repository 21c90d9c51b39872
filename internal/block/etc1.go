package block

import (
	"encoding/binary"
	"image/color"
)

// ETC1 block word layout (bit 63 first):
//
//	individual:   R1:4 R2:4 G1:4 G2:4 B1:4 B2:4 T1:3 T2:3 diff:1 flip:1
//	differential: R:5 dR:3 G:5 dG:3 B:5 dB:3   T1:3 T2:3 diff:1 flip:1
//
// followed by 16 index MSBs and 16 index LSBs, one bit per pixel in
// column-major order.

var etc1Modifiers = [8][2]int{
	{2, 8},
	{5, 17},
	{9, 29},
	{13, 42},
	{18, 60},
	{24, 80},
	{33, 106},
	{47, 183},
}

// etc1Modifier returns the signed offset for a 2-bit pixel index.
func etc1Modifier(table int, index uint64) int {
	m := etc1Modifiers[table][index&1]
	if index&2 != 0 {
		return -m
	}
	return m
}

// subblock returns which half of the block pixel (x, y) belongs to.
func subblock(x, y int, flip bool) int {
	if flip {
		return y / 2
	}
	return x / 2
}

func expand5(v int) int { return v<<3 | v>>2 }

func signed3(v uint64) int {
	d := int(v & 7)
	if d >= 4 {
		d -= 8
	}
	return d
}

func decodeETC1Word(w uint64) Block {
	var base [2][3]int
	if w>>33&1 == 0 {
		for c := 0; c < 3; c++ {
			shift := 60 - uint(c)*8
			base[0][c] = int(w>>shift&0xF) * 17
			base[1][c] = int(w>>(shift-4)&0xF) * 17
		}
	} else {
		for c := 0; c < 3; c++ {
			shift := 59 - uint(c)*8
			v := int(w >> shift & 0x1F)
			d := signed3(w >> (shift - 3))
			base[0][c] = expand5(v)
			base[1][c] = expand5((v + d) & 0x1F)
		}
	}
	tables := [2]int{int(w >> 37 & 7), int(w >> 34 & 7)}
	flip := w>>32&1 == 1

	var b Block
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			j := uint(x*Dim + y)
			index := (w>>(j+16)&1)<<1 | w>>j&1
			s := subblock(x, y, flip)
			m := etc1Modifier(tables[s], index)
			b[y*Dim+x] = color.NRGBA{
				R: clamp8(base[s][0] + m),
				G: clamp8(base[s][1] + m),
				B: clamp8(base[s][2] + m),
				A: 0xFF,
			}
		}
	}
	return b
}

// DecodeETC1 decodes one 8-byte ETC1 block.
func DecodeETC1(src []byte, order binary.ByteOrder) Block {
	return decodeETC1Word(order.Uint64(src))
}

// DecodeETC1A4 decodes one 16-byte block: a 64-bit word of 4-bit alphas in
// column-major order followed by an ETC1 block.
func DecodeETC1A4(src []byte, order binary.ByteOrder) Block {
	alpha := order.Uint64(src)
	b := decodeETC1Word(order.Uint64(src[8:]))
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			j := uint(x*Dim + y)
			b[y*Dim+x].A = expand4(alpha >> (4 * j))
		}
	}
	return b
}

// AppendETC1 encodes b as an ETC1 block.
func AppendETC1(dst []byte, b *Block, order binary.ByteOrder) []byte {
	return appendUint64(dst, encodeETC1Word(b), order)
}

// AppendETC1A4 encodes b as an ETC1 block with 4-bit alpha.
func AppendETC1A4(dst []byte, b *Block, order binary.ByteOrder) []byte {
	var alpha uint64
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			j := uint(x*Dim + y)
			alpha |= alpha4(b[y*Dim+x].A) << (4 * j)
		}
	}
	dst = appendUint64(dst, alpha, order)
	return appendUint64(dst, encodeETC1Word(b), order)
}

// etc1Candidate is one choice of mode, flip and base colours.
type etc1Candidate struct {
	diff  bool
	flip  bool
	base  [2][3]int // expanded 8-bit base colours
	field [2][3]int // stored field values
}

// encodeETC1Word returns a word that decodes to exactly the colours of b
// when one exists. Otherwise it searches both flips and both base colour
// modes around the sub-block averages and keeps the candidate with the
// lowest squared error.
func encodeETC1Word(b *Block) uint64 {
	if w, ok := exactETC1Word(b); ok {
		return w
	}

	var (
		best    uint64
		bestErr = -1
	)
	for _, flip := range []bool{false, true} {
		avg := etc1Averages(b, flip)
		for _, cand := range etc1Candidates(avg, flip) {
			word, err := etc1Fit(b, cand)
			if bestErr < 0 || err < bestErr {
				best, bestErr = word, err
			}
		}
	}
	return best
}

// exactETC1Word looks for base fields in either mode and flip under which
// every pixel of b is some base plus modifier.
func exactETC1Word(b *Block) (uint64, bool) {
	for _, diff := range []bool{false, true} {
		for _, flip := range []bool{false, true} {
			cand, ok := etc1ExactCandidate(b, flip, diff)
			if !ok {
				continue
			}
			if w, err := etc1Fit(b, cand); err == 0 {
				return w, true
			}
		}
	}
	return 0, false
}

func etc1ExactCandidate(b *Block, flip, diff bool) (etc1Candidate, bool) {
	levels := 16
	if diff {
		levels = 32
	}
	var fields [2][][3]int
	for s := range fields {
		px := halfPixels(b, s, flip)
		if fields[s] = etc1Bases(&px, levels); len(fields[s]) == 0 {
			return etc1Candidate{}, false
		}
	}

	cand := etc1Candidate{diff: diff, flip: flip}
	q0, q1 := fields[0][0], fields[1][0]
	if diff {
		var ok bool
		if q0, q1, ok = pairDifferential(fields[0], fields[1]); !ok {
			return etc1Candidate{}, false
		}
	}
	for c := 0; c < 3; c++ {
		if diff {
			cand.field[0][c] = q0[c]
			cand.field[1][c] = (q1[c] - q0[c]) & 7
			cand.base[0][c] = expand5(q0[c])
			cand.base[1][c] = expand5(q1[c])
		} else {
			cand.field[0][c], cand.field[1][c] = q0[c], q1[c]
			cand.base[0][c], cand.base[1][c] = q0[c]*17, q1[c]*17
		}
	}
	return cand, true
}

// halfPixels returns the eight pixels of sub-block s.
func halfPixels(b *Block, s int, flip bool) [8]color.NRGBA {
	var (
		px [8]color.NRGBA
		n  int
	)
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			if subblock(x, y, flip) == s {
				px[n] = b[y*Dim+x]
				n++
			}
		}
	}
	return px
}

// etc1Bases lists every base field triple with the given number of levels
// per channel that reproduces px exactly under some modifier table.
func etc1Bases(px *[8]color.NRGBA, levels int) [][3]int {
	var (
		out  [][3]int
		seen = make(map[[3]int]bool)
	)
	for t := range etc1Modifiers {
		var (
			fields [3][]int
			masks  [3][][8]uint8
		)
		feasible := true
		for c := 0; c < 3 && feasible; c++ {
			for q := 0; q < levels; q++ {
				if m, ok := channelIndices(px, c, expandLevel(q, levels), t); ok {
					fields[c] = append(fields[c], q)
					masks[c] = append(masks[c], m)
				}
			}
			feasible = len(fields[c]) > 0
		}
		if !feasible {
			continue
		}

		for i, r := range fields[0] {
			for j, g := range fields[1] {
				rg, ok := intersect(masks[0][i], masks[1][j])
				if !ok {
					continue
				}
				for k, bl := range fields[2] {
					if _, ok := intersect(rg, masks[2][k]); !ok {
						continue
					}
					if q := [3]int{r, g, bl}; !seen[q] {
						seen[q] = true
						out = append(out, q)
					}
				}
			}
		}
	}
	return out
}

func expandLevel(q, levels int) int {
	if levels == 16 {
		return q * 17
	}
	return expand5(q)
}

func channel(p color.NRGBA, c int) uint8 {
	switch c {
	case 0:
		return p.R
	case 1:
		return p.G
	}
	return p.B
}

// channelIndices returns, per pixel, the set of modifier indices that map
// base v of table t onto channel c of the pixel.
func channelIndices(px *[8]color.NRGBA, c, v, t int) ([8]uint8, bool) {
	var m [8]uint8
	for i, p := range px {
		want := channel(p, c)
		for k := uint64(0); k < 4; k++ {
			if clamp8(v+etc1Modifier(t, k)) == want {
				m[i] |= 1 << k
			}
		}
		if m[i] == 0 {
			return m, false
		}
	}
	return m, true
}

func intersect(a, b [8]uint8) ([8]uint8, bool) {
	for i := range a {
		if a[i] &= b[i]; a[i] == 0 {
			return a, false
		}
	}
	return a, true
}

// pairDifferential picks one field triple per sub-block such that the
// second is the first plus a 3-bit signed delta, modulo 32 as decoded.
func pairDifferential(first, second [][3]int) ([3]int, [3]int, bool) {
	small, large, swapped := first, second, false
	if len(second) < len(first) {
		small, large, swapped = second, first, true
	}
	set := make(map[[3]int]bool, len(large))
	for _, q := range large {
		set[q] = true
	}

	for _, q := range small {
		for d := 0; d < 512; d++ {
			var o [3]int
			for c := 0; c < 3; c++ {
				delta := (d>>(3*uint(c)))&7 - 4
				if swapped {
					delta = -delta
				}
				o[c] = (q[c] + delta) & 0x1F
			}
			if !set[o] {
				continue
			}
			if swapped {
				return o, q, true
			}
			return q, o, true
		}
	}
	return [3]int{}, [3]int{}, false
}

func etc1Averages(b *Block, flip bool) [2][3]float64 {
	var sum [2][3]float64
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			s := subblock(x, y, flip)
			p := b[y*Dim+x]
			sum[s][0] += float64(p.R)
			sum[s][1] += float64(p.G)
			sum[s][2] += float64(p.B)
		}
	}
	for s := range sum {
		for c := range sum[s] {
			sum[s][c] /= 8
		}
	}
	return sum
}

func roundClamp(v float64, max int) int {
	r := int(v + 0.5)
	if r < 0 {
		return 0
	}
	if r > max {
		return max
	}
	return r
}

func etc1Candidates(avg [2][3]float64, flip bool) []etc1Candidate {
	ind := etc1Candidate{flip: flip}
	for s := 0; s < 2; s++ {
		for c := 0; c < 3; c++ {
			q := roundClamp(avg[s][c]/17, 15)
			ind.field[s][c] = q
			ind.base[s][c] = q * 17
		}
	}
	cands := []etc1Candidate{ind}

	diff := etc1Candidate{diff: true, flip: flip}
	for c := 0; c < 3; c++ {
		q0 := roundClamp(avg[0][c]*31/255, 31)
		q1 := roundClamp(avg[1][c]*31/255, 31)
		d := q1 - q0
		if d < -4 || d > 3 {
			return cands
		}
		diff.field[0][c] = q0
		diff.field[1][c] = d
		diff.base[0][c] = expand5(q0)
		diff.base[1][c] = expand5(q1)
	}
	return append(cands, diff)
}

// etc1Fit picks the best modifier table and per-pixel indices for cand.
func etc1Fit(b *Block, cand etc1Candidate) (uint64, int) {
	var (
		tables  [2]int
		indices [Dim * Dim]uint64
		total   int
	)
	for s := 0; s < 2; s++ {
		bestErr := -1
		for t := 0; t < len(etc1Modifiers); t++ {
			var idx [Dim * Dim]uint64
			err := 0
			for y := 0; y < Dim; y++ {
				for x := 0; x < Dim; x++ {
					if subblock(x, y, cand.flip) != s {
						continue
					}
					p := b[y*Dim+x]
					pixErr := -1
					for i := uint64(0); i < 4; i++ {
						m := etc1Modifier(t, i)
						c := color.NRGBA{
							R: clamp8(cand.base[s][0] + m),
							G: clamp8(cand.base[s][1] + m),
							B: clamp8(cand.base[s][2] + m),
						}
						if e := rgbDistance(p, c); pixErr < 0 || e < pixErr {
							pixErr = e
							idx[x*Dim+y] = i
						}
					}
					err += pixErr
				}
			}
			if bestErr < 0 || err < bestErr {
				bestErr = err
				tables[s] = t
				for j := range idx {
					if subblock(j/Dim, j%Dim, cand.flip) == s {
						indices[j] = idx[j]
					}
				}
			}
		}
		total += bestErr
	}

	var w uint64
	for c := 0; c < 3; c++ {
		if cand.diff {
			w |= uint64(cand.field[0][c]) << (59 - uint(c)*8)
			w |= uint64(cand.field[1][c]&7) << (56 - uint(c)*8)
		} else {
			w |= uint64(cand.field[0][c]) << (60 - uint(c)*8)
			w |= uint64(cand.field[1][c]) << (56 - uint(c)*8)
		}
	}
	w |= uint64(tables[0]) << 37
	w |= uint64(tables[1]) << 34
	if cand.diff {
		w |= 1 << 33
	}
	if cand.flip {
		w |= 1 << 32
	}
	for j, i := range indices {
		w |= (i >> 1 & 1) << (uint(j) + 16)
		w |= (i & 1) << uint(j)
	}
	return w, total
}
