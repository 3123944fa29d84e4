package poreseg

import (
	"sort"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

const (
	// minCenterDistance is the smallest distance value that can seed a sphere.
	// Anything closer to the matrix is zeroed before peak search.
	minCenterDistance = 2.0

	// peakBlock is the edge length of the disjoint search blocks.
	peakBlock = 3
)

// Peak is a candidate sphere center with its distance-to-matrix value.
type Peak struct {
	Center voxel.Coord `json:"center"`
	Value  float64     `json:"value"`
}

// ExtractPeaks finds block-wise maxima of a distance field.
//
// The field is copied and every value below 2 is zeroed; the copy is returned
// as the working field for BuildMedialSurface. The copy is then cut into
// disjoint 3×3×3 blocks starting at the origin. Blocks at the far edges are
// truncated, never padded. Every block whose maximum is nonzero contributes
// one peak at the first voxel, in row-major order, holding that maximum.
//
// Peaks are sorted by value, largest first. The sort is stable, so equal
// values keep block order (blocks are visited row-major by block index).
//
// Blocks do not overlap, so two adjacent blocks may each report a voxel even
// when one dominates the other.
func ExtractPeaks(field *voxel.Field) (*voxel.Field, []Peak) {
	work := field.Clone()
	for i, v := range work.Data {
		if v < minCenterDistance {
			work.Data[i] = 0
		}
	}

	var peaks []Peak
	for bi := 0; bi < work.D; bi += peakBlock {
		for bj := 0; bj < work.H; bj += peakBlock {
			for bk := 0; bk < work.W; bk += peakBlock {
				box := voxel.Box{
					Min: voxel.Coord{I: bi, J: bj, K: bk},
					Max: voxel.Coord{I: bi + peakBlock - 1, J: bj + peakBlock - 1, K: bk + peakBlock - 1},
				}.Clip(work.Dims)
				if p, ok := blockMax(work, box); ok {
					peaks = append(peaks, p)
				}
			}
		}
	}

	sort.SliceStable(peaks, func(a, b int) bool {
		return peaks[a].Value > peaks[b].Value
	})
	return work, peaks
}

// blockMax returns the first strict maximum of the box. ok is false when the
// block maximum is zero.
func blockMax(f *voxel.Field, box voxel.Box) (Peak, bool) {
	best := Peak{Value: 0}
	box.Each(func(c voxel.Coord) {
		if v := f.At(c); v > best.Value {
			best = Peak{Center: c, Value: v}
		}
	})
	return best, best.Value > 0
}
