package voxel

import "fmt"

// Box is an inclusive axis-aligned voxel box. A box with any Max component
// below the matching Min component is empty.
type Box struct {
	Min Coord `json:"min"`
	Max Coord `json:"max"`
}

// EmptyBox returns a box that Include can grow from.
func EmptyBox() Box {
	return Box{
		Min: Coord{I: maxInt, J: maxInt, K: maxInt},
		Max: Coord{I: -1, J: -1, K: -1},
	}
}

const maxInt = int(^uint(0) >> 1)

// Empty reports whether the box covers no voxel.
func (b Box) Empty() bool {
	return b.Max.I < b.Min.I || b.Max.J < b.Min.J || b.Max.K < b.Min.K
}

// Include grows the box to cover c.
func (b Box) Include(c Coord) Box {
	b.Min.I, b.Max.I = min(b.Min.I, c.I), max(b.Max.I, c.I)
	b.Min.J, b.Max.J = min(b.Min.J, c.J), max(b.Max.J, c.J)
	b.Min.K, b.Max.K = min(b.Min.K, c.K), max(b.Max.K, c.K)
	return b
}

// Expand grows the box by n voxels on every side.
func (b Box) Expand(n int) Box {
	b.Min = Coord{I: b.Min.I - n, J: b.Min.J - n, K: b.Min.K - n}
	b.Max = Coord{I: b.Max.I + n, J: b.Max.J + n, K: b.Max.K + n}
	return b
}

// Clip intersects the box with a grid of the given dimensions.
func (b Box) Clip(d Dims) Box {
	b.Min = Coord{I: max(b.Min.I, 0), J: max(b.Min.J, 0), K: max(b.Min.K, 0)}
	b.Max = Coord{I: min(b.Max.I, d.D-1), J: min(b.Max.J, d.H-1), K: min(b.Max.K, d.W-1)}
	return b
}

// Cube returns the box of half-width r centered on c, clipped to d.
func Cube(c Coord, r int, d Dims) Box {
	return Box{Min: c, Max: c}.Expand(r).Clip(d)
}

// Dims returns the extent of a non-empty box.
func (b Box) Dims() Dims {
	return Dims{D: b.Max.I - b.Min.I + 1, H: b.Max.J - b.Min.J + 1, W: b.Max.K - b.Min.K + 1}
}

func (b Box) String() string { return fmt.Sprintf("%s-%s", b.Min, b.Max) }

// Crop copies the voxels inside box out of g into a new grid whose origin is
// box.Min.
func Crop[T any](g *Grid[T], box Box) (*Grid[T], error) {
	if box.Empty() {
		return nil, fmt.Errorf("invalid crop box %s: empty", box)
	}
	if !g.InBounds(box.Min) || !g.InBounds(box.Max) {
		return nil, fmt.Errorf("crop box %s outside grid bounds %s", box, g.Bounds())
	}
	out := NewGrid[T](box.Dims())
	n := 0
	for i := box.Min.I; i <= box.Max.I; i++ {
		for j := box.Min.J; j <= box.Max.J; j++ {
			row := g.Index(Coord{I: i, J: j, K: box.Min.K})
			n += copy(out.Data[n:n+out.W], g.Data[row:row+out.W])
		}
	}
	return out, nil
}

// Each calls fn for every voxel coordinate inside the box in row-major order.
func (b Box) Each(fn func(c Coord)) {
	for i := b.Min.I; i <= b.Max.I; i++ {
		for j := b.Min.J; j <= b.Max.J; j++ {
			for k := b.Min.K; k <= b.Max.K; k++ {
				fn(Coord{I: i, J: j, K: k})
			}
		}
	}
}
