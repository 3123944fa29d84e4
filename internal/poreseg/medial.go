package poreseg

import (
	"math"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

const (
	// containmentSlack widens the containment test d + r_p < R by half a
	// voxel.
	containmentSlack = 0.5

	// proximityFactor scales the mean radius below which two centers are
	// too close to be independent spheres.
	proximityFactor = 0.3
)

// MedialSurface is the ordered set of surviving maximal-sphere candidates,
// largest radius first.
type MedialSurface struct {
	Centers []voxel.Coord
	Radii   []float64
	Dims    voxel.Dims
}

// Len returns the number of surviving spheres.
func (ms *MedialSurface) Len() int { return len(ms.Centers) }

// BuildMedialSurface prunes peaks whose spheres are swallowed by, or sit too
// close to, a larger sphere.
//
// Parameters:
//   - work: thresholded working field from ExtractPeaks. It is modified.
//   - peaks: candidates sorted by value descending. Order decides survival.
//
// For each peak (C, R) whose working value has not been zeroed, every voxel P
// within the cube of half-width ceil(R+1) around C (clipped to the grid) is
// tested with r_p = work[P] and d = |P - C|:
//   - d + r_p < R + 0.5: P's sphere lies inside C's sphere; zero it.
//   - otherwise d < 0.3·(r_p + R)/2: P is too close to C; zero it.
//
// C itself always satisfies the first test, and (C, R) is recorded.
//
// Returns ErrDegenerateGeometry for a peak with a non-positive or NaN radius.
func BuildMedialSurface(work *voxel.Field, peaks []Peak) (*MedialSurface, error) {
	ms := &MedialSurface{Dims: work.Dims}
	for _, pk := range peaks {
		c, r := pk.Center, pk.Value
		if math.IsNaN(r) || r <= 0 {
			return nil, regionErr(ErrDegenerateGeometry, c, "peak radius %v", r)
		}
		if work.At(c) == 0 {
			continue
		}
		border := int(math.Ceil(r + 1))
		voxel.Cube(c, border, work.Dims).Each(func(p voxel.Coord) {
			idx := work.Index(p)
			rp := work.Data[idx]
			d := p.Dist(c)
			switch {
			case d+rp < r+containmentSlack:
				work.Data[idx] = 0
			case d < proximityFactor*(rp+r)/2:
				work.Data[idx] = 0
			}
		})
		ms.Centers = append(ms.Centers, c)
		ms.Radii = append(ms.Radii, r)
	}
	return ms, nil
}
