package poreseg

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// growthDivisor sets the growth step to ceil(max dimension / growthDivisor).
const growthDivisor = 20

// GrowthStep returns the per-iteration growth distance for a grid.
func GrowthStep(d voxel.Dims) int {
	return (d.Max() + growthDivisor - 1) / growthDivisor
}

// ExpandLabels grows sparse seed labels until every pore voxel is labeled.
//
// Each iteration gives every unlabeled voxel within GrowthStep (Euclidean) of
// a labeled voxel the label of its nearest labeled voxel. Growth ignores the
// mask while it runs; once every pore voxel is covered, all voxels outside the
// mask are reset to 0, so the result never labels matrix.
//
// Returns:
//   - *voxel.Labels: a new grid; seeds is not modified.
//   - error: ErrUnreachableRegion when a 6-connected pore component holds no
//     seed, naming the component's first voxel. ErrInvalidInput when the
//     grids differ in shape.
func ExpandLabels(seeds *voxel.Labels, mask *voxel.Mask) (*voxel.Labels, error) {
	if !voxel.SameShape(seeds, mask) {
		return nil, fmt.Errorf("%w: labels %s, mask %s", ErrInvalidInput, seeds.Dims, mask.Dims)
	}
	if err := checkSeeded(seeds, mask); err != nil {
		return nil, err
	}

	labels := seeds.Clone()
	step := GrowthStep(labels.Dims)
	limit := float64(step * step)

	unlabeled := 0
	for i, pore := range mask.Data {
		if pore && labels.Data[i] == 0 {
			unlabeled++
		}
	}

	for iter := 1; unlabeled > 0; iter++ {
		sq, feat := squaredEDT(labels.Dims, func(i int) bool { return labels.Data[i] != 0 }, true)
		if sq == nil {
			return nil, regionErr(ErrUnreachableRegion, firstUnlabeled(labels, mask), "no seed labels")
		}
		grown := 0
		for i, d := range sq {
			if labels.Data[i] != 0 || d > limit {
				continue
			}
			// feat[i] was labeled before this pass, so in-place writes are safe.
			labels.Data[i] = labels.Data[feat[i]]
			grown++
			if mask.Data[i] {
				unlabeled--
			}
		}
		tracef("expand: iteration %d grew %s voxels, %s pore voxels left", iter,
			humanize.Comma(int64(grown)), humanize.Comma(int64(unlabeled)))
		if grown == 0 && unlabeled > 0 {
			return nil, regionErr(ErrUnreachableRegion, firstUnlabeled(labels, mask), "growth stalled")
		}
	}

	for i, pore := range mask.Data {
		if !pore {
			labels.Data[i] = 0
		}
	}
	return labels, nil
}

// checkSeeded fails on the first pore component without a nonzero seed.
func checkSeeded(seeds *voxel.Labels, mask *voxel.Mask) error {
	for _, comp := range voxel.Components(mask) {
		seeded := false
		for _, idx := range comp {
			if seeds.Data[idx] != 0 {
				seeded = true
				break
			}
		}
		if !seeded {
			opsf("expand: pore component at %s (%d voxels) has no seed", mask.Coord(comp[0]), len(comp))
			return regionErr(ErrUnreachableRegion, mask.Coord(comp[0]),
				"pore component of %d voxels has no medial-surface seed", len(comp))
		}
	}
	return nil
}

func firstUnlabeled(labels *voxel.Labels, mask *voxel.Mask) voxel.Coord {
	for i, pore := range mask.Data {
		if pore && labels.Data[i] == 0 {
			return mask.Coord(i)
		}
	}
	return voxel.Coord{}
}
