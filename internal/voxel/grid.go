package voxel

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape indicates a grid whose dimensions or backing slice are inconsistent.
var ErrShape = errors.New("voxel: invalid grid shape")

// Dims is the shape of a grid: D slices of H rows of W columns.
type Dims struct {
	D int `json:"depth"`
	H int `json:"height"`
	W int `json:"width"`
}

// Len returns the number of voxels, D*H*W.
func (d Dims) Len() int { return d.D * d.H * d.W }

// Max returns the largest of the three extents.
func (d Dims) Max() int { return max(d.D, d.H, d.W) }

// Valid reports whether every extent is positive.
func (d Dims) Valid() bool { return d.D > 0 && d.H > 0 && d.W > 0 }

func (d Dims) String() string { return fmt.Sprintf("%dx%dx%d", d.D, d.H, d.W) }

// Coord addresses one voxel.
type Coord struct {
	I int `json:"i"`
	J int `json:"j"`
	K int `json:"k"`
}

// Dist returns the Euclidean distance between two voxel centers.
func (c Coord) Dist(o Coord) float64 {
	di := float64(c.I - o.I)
	dj := float64(c.J - o.J)
	dk := float64(c.K - o.K)
	return math.Sqrt(di*di + dj*dj + dk*dk)
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d,%d)", c.I, c.J, c.K) }

// Grid is a dense row-major 3D array.
type Grid[T any] struct {
	Dims
	Data []T
}

// Mask marks pore voxels with true.
type Mask = Grid[bool]

// Field holds one float64 per voxel.
type Field = Grid[float64]

// Labels holds one pore-body id per voxel.
type Labels = Grid[int32]

// NewGrid allocates a zeroed grid. It panics on non-positive dimensions.
func NewGrid[T any](dims Dims) *Grid[T] {
	if !dims.Valid() {
		panic(fmt.Sprintf("voxel: non-positive grid dimensions %s", dims))
	}
	return &Grid[T]{Dims: dims, Data: make([]T, dims.Len())}
}

// Index returns the row-major offset of c. The coordinate is not bounds-checked.
func (g *Grid[T]) Index(c Coord) int {
	return (c.I*g.H+c.J)*g.W + c.K
}

// Coord is the inverse of Index.
func (g *Grid[T]) Coord(idx int) Coord {
	k := idx % g.W
	idx /= g.W
	return Coord{I: idx / g.H, J: idx % g.H, K: k}
}

// InBounds reports whether c lies inside the grid.
func (g *Grid[T]) InBounds(c Coord) bool {
	return c.I >= 0 && c.I < g.D && c.J >= 0 && c.J < g.H && c.K >= 0 && c.K < g.W
}

// At returns the value at c.
func (g *Grid[T]) At(c Coord) T { return g.Data[g.Index(c)] }

// Set stores v at c.
func (g *Grid[T]) Set(c Coord, v T) { g.Data[g.Index(c)] = v }

// Clone returns a deep copy.
func (g *Grid[T]) Clone() *Grid[T] {
	data := make([]T, len(g.Data))
	copy(data, g.Data)
	return &Grid[T]{Dims: g.Dims, Data: data}
}

// Fill sets every voxel to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Bounds returns the box covering the whole grid.
func (g *Grid[T]) Bounds() Box {
	return Box{Max: Coord{I: g.D - 1, J: g.H - 1, K: g.W - 1}}
}

// SameShape reports whether two grids share dimensions.
func SameShape[A, B any](a *Grid[A], b *Grid[B]) bool {
	return a.Dims == b.Dims
}

// MaskFromValues builds a mask from 0/1 bytes. Any other value is rejected
// with an error naming the first offending voxel.
func MaskFromValues(dims Dims, values []uint8) (*Mask, error) {
	if !dims.Valid() || len(values) != dims.Len() {
		return nil, fmt.Errorf("%w: %d values for %s grid", ErrShape, len(values), dims)
	}
	m := NewGrid[bool](dims)
	for i, v := range values {
		switch v {
		case 0:
		case 1:
			m.Data[i] = true
		default:
			return nil, &ValueError{Voxel: m.Coord(i), Value: v}
		}
	}
	return m, nil
}

// ValueError reports a non-binary mask value.
type ValueError struct {
	Voxel Coord
	Value uint8
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("voxel: non-binary mask value %d at %s", e.Value, e.Voxel)
}

// Count returns the number of pore voxels.
func Count(m *Mask) int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}
