// Package bio provides bit-level I/O for packed pixel words.
//
// Pixel words narrower or wider than a byte are stored as a continuous bit
// stream. Big-endian containers fill each byte from its most significant
// bit, little-endian containers from its least significant bit, so a
// multi-byte word read with the matching Order comes back in that
// container's byte order.
package bio

import (
	"errors"
	"io"
)

// Order selects how bits are taken from and packed into each byte.
type Order int

const (
	// MSBFirst fills bytes from bit 7 down; words read big-endian.
	MSBFirst Order = iota
	// LSBFirst fills bytes from bit 0 up; words read little-endian.
	LSBFirst
)

// String returns the name of the bit order.
func (o Order) String() string {
	switch o {
	case MSBFirst:
		return "MSBFirst"
	case LSBFirst:
		return "LSBFirst"
	default:
		return "Unknown"
	}
}

// ErrWidth is returned for word widths outside 1-32.
var ErrWidth = errors.New("bio: word width out of range")

// Reader provides bit-level reading from a byte stream.
type Reader struct {
	r     io.ByteReader
	order Order
	buf   byte  // Current byte buffer
	cnt   uint8 // Number of unread bits in buf (0-8)
}

// NewReader creates a new bit reader.
func NewReader(r io.ByteReader, order Order) *Reader {
	return &Reader{r: r, order: order}
}

// ReadBit reads a single bit (0 or 1).
func (r *Reader) ReadBit() (uint32, error) {
	if r.cnt == 0 {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, err
		}
		r.buf = b
		r.cnt = 8
	}
	r.cnt--
	if r.order == LSBFirst {
		bit := uint32(r.buf & 1)
		r.buf >>= 1
		return bit, nil
	}
	return uint32((r.buf >> r.cnt) & 1), nil
}

// ReadBits reads an n-bit word (1-32).
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n == 0 || n > 32 {
		return 0, ErrWidth
	}
	var result uint32
	for i := uint(0); i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if r.order == LSBFirst {
			result |= bit << i
		} else {
			result = (result << 1) | bit
		}
	}
	return result, nil
}

// Writer provides bit-level writing to a byte stream.
type Writer struct {
	w     io.ByteWriter
	order Order
	buf   byte  // Current byte buffer
	cnt   uint8 // Number of valid bits in buf (0-7)
}

// NewWriter creates a new bit writer.
func NewWriter(w io.ByteWriter, order Order) *Writer {
	return &Writer{w: w, order: order}
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(bit uint32) error {
	if w.order == LSBFirst {
		w.buf |= byte(bit&1) << w.cnt
	} else {
		w.buf = (w.buf << 1) | byte(bit&1)
	}
	w.cnt++
	if w.cnt == 8 {
		return w.flushByte()
	}
	return nil
}

// WriteBits writes the lowest n bits of val as one word.
func (w *Writer) WriteBits(val uint32, n uint) error {
	if n == 0 || n > 32 {
		return ErrWidth
	}
	for i := uint(0); i < n; i++ {
		var bit uint32
		if w.order == LSBFirst {
			bit = (val >> i) & 1
		} else {
			bit = (val >> (n - 1 - i)) & 1
		}
		if err := w.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// flushByte writes the current byte buffer.
func (w *Writer) flushByte() error {
	err := w.w.WriteByte(w.buf)
	w.buf = 0
	w.cnt = 0
	return err
}

// Flush writes any remaining bits, padding with zeros.
func (w *Writer) Flush() error {
	if w.cnt > 0 {
		if w.order == MSBFirst {
			w.buf <<= (8 - w.cnt)
		}
		return w.flushByte()
	}
	return nil
}
