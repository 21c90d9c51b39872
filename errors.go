package bxlim

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-bxlim/internal/nw4c"
	"github.com/mrjoshuak/go-bxlim/internal/pixel"
	"github.com/mrjoshuak/go-bxlim/internal/raster"
	"github.com/mrjoshuak/go-bxlim/internal/tile"
)

var (
	// ErrUnrecognizedContainer is returned when the footer carries no known
	// container magic or byte order mark.
	ErrUnrecognizedContainer = errors.New("bxlim: unrecognized container")

	// ErrUnsupportedFormat is returned for format codes absent from the
	// container's format table, including reserved codes.
	ErrUnsupportedFormat = errors.New("bxlim: unsupported format code")

	// ErrUnsupportedOperation is returned for operations a known variant
	// cannot perform, such as saving a big-endian FLIM.
	ErrUnsupportedOperation = errors.New("bxlim: unsupported operation")

	// ErrTruncatedInput is returned when the input is shorter than the
	// footer or than the declared pixel data.
	ErrTruncatedInput = errors.New("bxlim: truncated input")

	// ErrUnsupportedTileMode is returned for tile modes without a
	// reordering. It matches ErrUnsupportedOperation.
	ErrUnsupportedTileMode = fmt.Errorf("%w: tile mode", ErrUnsupportedOperation)
)

// mapError translates internal sentinels into the package errors while
// keeping the original error in the chain.
func mapError(err error) error {
	var sentinel error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, nw4c.ErrShort), errors.Is(err, raster.ErrTruncated):
		sentinel = ErrTruncatedInput
	case errors.Is(err, nw4c.ErrMagic), errors.Is(err, nw4c.ErrByteOrder):
		sentinel = ErrUnrecognizedContainer
	case errors.Is(err, pixel.ErrUnsupported):
		sentinel = ErrUnsupportedFormat
	case errors.Is(err, tile.ErrMode):
		sentinel = ErrUnsupportedTileMode
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
