package poreseg

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// NoParent marks a root sphere.
const NoParent = -1

// Sphere is one node of the maximal-sphere forest. Parent and Children are
// indices into Hierarchy.Spheres.
type Sphere struct {
	ID       int         `json:"id"`
	Center   voxel.Coord `json:"center"`
	Radius   float64     `json:"radius"`
	Rank     int32       `json:"rank"`  // hops to the root, -1 until assigned
	Label    int32       `json:"label"` // root's label, -1 until assigned
	Parent   int         `json:"parent"`
	Children []int       `json:"children,omitempty"`
}

// Hierarchy is the arena owning every sphere.
type Hierarchy struct {
	Spheres []Sphere
	// Labels is the number of labels minted; labels run 1..Labels.
	Labels int32
	Dims   voxel.Dims

	// lookup maps a voxel to its sphere ID + 1, 0 when empty.
	lookup *voxel.Grid[int32]
}

// At returns the sphere centered on c, if any.
func (h *Hierarchy) At(c voxel.Coord) (*Sphere, bool) {
	if !h.lookup.InBounds(c) {
		return nil, false
	}
	id := h.lookup.At(c) - 1
	if id < 0 {
		return nil, false
	}
	return &h.Spheres[id], true
}

// Roots returns the IDs of parentless spheres in ID order.
func (h *Hierarchy) Roots() []int {
	var roots []int
	for i := range h.Spheres {
		if h.Spheres[i].Parent == NoParent {
			roots = append(roots, i)
		}
	}
	return roots
}

// BuildHierarchy links the medial surface into a forest of maximal spheres.
//
// Spheres are grouped by exact radius and groups are visited from the largest
// radius down. Within a group the member with the smallest rank goes first
// (unassigned, -1, before any assigned rank; ties keep medial-surface order).
// An unassigned member becomes a root with rank 0 and the next label. The
// selected sphere then offers itself as parent to every other sphere centered
// within the cube of half-width round(radius), visited largest radius first:
//
//   - an unassigned smaller sphere with rel < 1 is attached;
//   - a smaller sphere that already has a parent is moved when rel < 1 and
//     rel is strictly below its relative distance to the current parent.
//
// rel is |Δcenter| / (r_parent + r_child). A sphere stays eligible as a parent
// after its own group is exhausted.
//
// Returns ErrDegenerateGeometry if a relative distance divides by a zero
// radius sum or comes out NaN.
func BuildHierarchy(ms *MedialSurface) (*Hierarchy, error) {
	h := &Hierarchy{
		Spheres: make([]Sphere, ms.Len()),
		Dims:    ms.Dims,
		lookup:  voxel.NewGrid[int32](ms.Dims),
	}
	for i, c := range ms.Centers {
		if !h.lookup.InBounds(c) {
			return nil, fmt.Errorf("%w: sphere center %s outside %s grid", ErrInvalidInput, c, ms.Dims)
		}
		if r := ms.Radii[i]; r <= 0 || math.IsNaN(r) {
			return nil, regionErr(ErrDegenerateGeometry, c, "sphere radius %v", r)
		}
		if prev := h.lookup.At(c); prev != 0 {
			return nil, fmt.Errorf("%w: duplicate sphere center %s", ErrInvalidInput, c)
		}
		h.Spheres[i] = Sphere{ID: i, Center: c, Radius: ms.Radii[i], Rank: -1, Label: -1, Parent: NoParent}
		h.lookup.Set(c, int32(i+1))
	}

	order := make([]int, len(h.Spheres))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return h.Spheres[order[a]].Radius > h.Spheres[order[b]].Radius
	})

	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && h.Spheres[order[end]].Radius == h.Spheres[order[start]].Radius {
			end++
		}
		if err := h.processGroup(order[start:end]); err != nil {
			return nil, err
		}
		start = end
	}
	diagf("hierarchy: %d spheres, %d roots", len(h.Spheres), h.Labels)
	return h, nil
}

// processGroup handles all spheres sharing one radius. A scan only touches
// strictly smaller spheres, so member ranks cannot change while the group is
// processed and one stable sort fixes the selection order.
func (h *Hierarchy) processGroup(group []int) error {
	sort.SliceStable(group, func(a, b int) bool {
		return h.Spheres[group[a]].Rank < h.Spheres[group[b]].Rank
	})
	for _, id := range group {
		s := &h.Spheres[id]
		if s.Rank == -1 {
			h.Labels++
			s.Rank = 0
			s.Label = h.Labels
		}
		for _, child := range h.neighbors(id) {
			if err := h.offerParent(id, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// neighbors returns the spheres centered in the cube of half-width
// round(radius) around id, excluding id, largest radius first.
func (h *Hierarchy) neighbors(id int) []int {
	s := &h.Spheres[id]
	half := int(math.Round(s.Radius))
	var out []int
	voxel.Cube(s.Center, half, h.Dims).Each(func(c voxel.Coord) {
		if n := int(h.lookup.At(c)) - 1; n >= 0 && n != id {
			out = append(out, n)
		}
	})
	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := h.Spheres[out[a]].Radius, h.Spheres[out[b]].Radius
		if ra != rb {
			return ra > rb
		}
		return out[a] < out[b]
	})
	return out
}

// offerParent applies the parent-assignment rule to (parent, child).
func (h *Hierarchy) offerParent(parent, child int) error {
	p, c := &h.Spheres[parent], &h.Spheres[child]
	if p.Radius <= c.Radius {
		return nil
	}
	rel, err := relDistance(p, c)
	if err != nil {
		return err
	}
	if rel >= 1 {
		return nil
	}
	switch {
	case c.Rank == -1:
		h.attach(parent, child)
	case c.Parent != NoParent && child != parent:
		old := &h.Spheres[c.Parent]
		oldRel, err := relDistance(old, c)
		if err != nil {
			return err
		}
		if rel < oldRel {
			old.Children = slices.DeleteFunc(old.Children, func(id int) bool { return id == child })
			tracef("hierarchy: sphere %d moves from %d to %d (%.3f < %.3f)", child, c.Parent, parent, rel, oldRel)
			h.attach(parent, child)
		}
	}
	return nil
}

func (h *Hierarchy) attach(parent, child int) {
	p, c := &h.Spheres[parent], &h.Spheres[child]
	c.Parent = parent
	c.Rank = p.Rank + 1
	c.Label = p.Label
	p.Children = append(p.Children, child)
}

// relDistance is the center distance in units of the summed radii.
func relDistance(a, b *Sphere) (float64, error) {
	sum := a.Radius + b.Radius
	if sum <= 0 || math.IsNaN(sum) {
		return 0, regionErr(ErrDegenerateGeometry, b.Center, "radius sum %v with sphere at %s", sum, a.Center)
	}
	rel := a.Center.Dist(b.Center) / sum
	if math.IsNaN(rel) {
		return 0, regionErr(ErrDegenerateGeometry, b.Center, "relative distance is NaN")
	}
	return rel, nil
}

// Validate checks the forest invariants: parents are strictly larger, ranks
// count hops to the root, labels match the root, and every parent chain ends.
func (h *Hierarchy) Validate() error {
	for i := range h.Spheres {
		s := &h.Spheres[i]
		hops := int32(0)
		cur := s
		for cur.Parent != NoParent {
			p := &h.Spheres[cur.Parent]
			if p.Radius <= cur.Radius {
				return fmt.Errorf("sphere %d: parent %d radius %v not above %v", cur.ID, p.ID, p.Radius, cur.Radius)
			}
			if !slices.Contains(p.Children, cur.ID) {
				return fmt.Errorf("sphere %d: missing from children of parent %d", cur.ID, p.ID)
			}
			cur = p
			hops++
			if int(hops) > len(h.Spheres) {
				return fmt.Errorf("sphere %d: parent chain does not terminate", s.ID)
			}
		}
		if s.Rank != hops {
			return fmt.Errorf("sphere %d: rank %d, depth %d", s.ID, s.Rank, hops)
		}
		if s.Label != cur.Label || s.Label < 1 {
			return fmt.Errorf("sphere %d: label %d, root %d label %d", s.ID, s.Label, cur.ID, cur.Label)
		}
	}
	return nil
}
