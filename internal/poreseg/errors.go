package poreseg

import (
	"errors"
	"fmt"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// Sentinel errors for extraction. Every error returned by this package
// unwraps to one of them.
var (
	// ErrInvalidInput indicates a non-binary mask, a mask without pore voxels
	// (strict mode only) or an unusable parameter.
	ErrInvalidInput = errors.New("poreseg: invalid input")
	// ErrUnreachableRegion indicates a connected pore region that holds no
	// medial-surface seed, so label growth cannot cover it.
	ErrUnreachableRegion = errors.New("poreseg: unreachable pore region")
	// ErrDegenerateGeometry indicates a zero, negative or NaN radius or
	// distance.
	ErrDegenerateGeometry = errors.New("poreseg: degenerate geometry")
)

// RegionError names the voxel that triggered a failure.
type RegionError struct {
	Kind   error
	Voxel  voxel.Coord
	Detail string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("%v at %s: %s", e.Kind, e.Voxel, e.Detail)
}

func (e *RegionError) Unwrap() error { return e.Kind }

func regionErr(kind error, at voxel.Coord, format string, args ...interface{}) error {
	return &RegionError{Kind: kind, Voxel: at, Detail: fmt.Sprintf(format, args...)}
}
