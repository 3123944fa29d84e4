package poreseg

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// smoothLevel is the smoothed-mask value above which a voxel joins a label.
const smoothLevel = 0.1

// SmoothLabels rounds off pore-body boundaries with a per-label Gaussian.
//
// Parameters:
//   - labels: expanded label map. It is only read.
//   - sigma: Gaussian standard deviation in voxels. sigma <= 0 returns an
//     exact copy of labels. NaN and infinite values are ErrInvalidInput.
//   - workers: number of goroutines; must be at least 1.
//
// For each distinct nonzero label, its bounding box grown by ceil(2·sigma) is
// cropped (padding beyond the grid extent is clipped away anyway), the label's binary mask is smoothed, and every voxel where the
// smoothed value exceeds 0.1 and labels is nonzero receives the label.
//
// Labels are split into contiguous groups, one per worker. A worker writes only
// its own full-size grid and handles its labels in ascending order; the result
// is the element-wise maximum over all worker grids. The larger label therefore
// wins every overlap, and the output does not depend on the worker count.
// Memory peaks at one full grid per worker.
func SmoothLabels(labels *voxel.Labels, sigma float64, workers int) (*voxel.Labels, error) {
	if err := checkSigma(sigma); err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d workers", ErrInvalidInput, workers)
	}
	if sigma <= 0 {
		return labels.Clone(), nil
	}

	boxes := labelBoxes(labels)
	ids := make([]int32, 0, len(boxes))
	for id := range boxes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	extent := labels.Dims.Max()
	kernel := gaussianKernel(sigma, 2*extent)
	pad := int(math.Min(math.Ceil(2*sigma), float64(extent)))
	groups := partition(ids, workers)
	outs := make([]*voxel.Labels, len(groups))

	var g errgroup.Group
	for gi, group := range groups {
		gi, group := gi, group
		g.Go(func() error {
			out := voxel.NewGrid[int32](labels.Dims)
			for _, id := range group {
				if err := smoothLabel(labels, out, id, boxes[id], kernel, pad); err != nil {
					return err
				}
			}
			outs[gi] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := voxel.NewGrid[int32](labels.Dims)
	for _, out := range outs {
		for i, v := range out.Data {
			if v > result.Data[i] {
				result.Data[i] = v
			}
		}
	}
	return result, nil
}

// checkSigma rejects smoothing widths that are not finite numbers.
func checkSigma(sigma float64) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return fmt.Errorf("%w: sigma %v is not a finite number", ErrInvalidInput, sigma)
	}
	return nil
}

// smoothLabel writes label id into out wherever its smoothed mask exceeds
// smoothLevel over an already-labeled voxel.
func smoothLabel(labels, out *voxel.Labels, id int32, box voxel.Box, kernel []float64, pad int) error {
	box = box.Expand(pad).Clip(labels.Dims)
	if box.Empty() {
		return nil
	}
	crop, err := voxel.Crop(labels, box)
	if err != nil {
		return err
	}
	field := voxel.NewGrid[float64](crop.Dims)
	for i, v := range crop.Data {
		if v == id {
			field.Data[i] = 1
		}
	}
	gaussian3D(field, kernel)

	written := 0
	for i, v := range field.Data {
		if v <= smoothLevel || crop.Data[i] == 0 {
			continue
		}
		c := field.Coord(i)
		at := voxel.Coord{I: box.Min.I + c.I, J: box.Min.J + c.J, K: box.Min.K + c.K}
		out.Set(at, id)
		written++
	}
	tracef("smooth: label %d box %s wrote %d voxels", id, box, written)
	return nil
}

// labelBoxes returns the bounding box of every nonzero label.
func labelBoxes(labels *voxel.Labels) map[int32]voxel.Box {
	boxes := make(map[int32]voxel.Box)
	for i, v := range labels.Data {
		if v == 0 {
			continue
		}
		b, ok := boxes[v]
		if !ok {
			b = voxel.EmptyBox()
		}
		boxes[v] = b.Include(labels.Coord(i))
	}
	return boxes
}

// partition splits ids into at most n contiguous groups whose sizes differ by
// at most one, larger groups first.
func partition(ids []int32, n int) [][]int32 {
	if len(ids) == 0 {
		return nil
	}
	n = min(n, len(ids))
	groups := make([][]int32, 0, n)
	size, extra := len(ids)/n, len(ids)%n
	for g, start := 0, 0; g < n; g++ {
		end := start + size
		if g < extra {
			end++
		}
		groups = append(groups, ids[start:end])
		start = end
	}
	return groups
}
