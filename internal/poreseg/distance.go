package poreseg

import (
	"math"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// DistanceField computes the exact Euclidean distance from every voxel to the
// nearest matrix voxel. Matrix voxels hold 0. Voxels outside the grid are not
// matrix, so pores touching the border measure to the nearest interior wall.
//
// Returns:
//   - *voxel.Field: same shape as mask.
//   - error: ErrDegenerateGeometry if the mask has no matrix voxel (every
//     distance would be infinite) or a distance comes out NaN or negative.
//
// # Algorithm
//
// Squared distances are computed separably, one axis at a time, with the
// lower envelope of parabolas (Felzenszwalb & Huttenlocher). An axis of length
// 1 contributes nothing, so quasi-2D grids need no special case.
func DistanceField(mask *voxel.Mask) (*voxel.Field, error) {
	sq, _ := squaredEDT(mask.Dims, func(i int) bool { return !mask.Data[i] }, false)
	if sq == nil {
		return nil, regionErr(ErrDegenerateGeometry, voxel.Coord{}, "mask has no matrix voxel")
	}
	field := &voxel.Field{Dims: mask.Dims, Data: sq}
	for i, v := range field.Data {
		field.Data[i] = math.Sqrt(v)
	}
	if err := checkField(field); err != nil {
		return nil, err
	}
	return field, nil
}

// checkField rejects NaN and negative distances.
func checkField(f *voxel.Field) error {
	for i, v := range f.Data {
		if math.IsNaN(v) || v < 0 || math.IsInf(v, 0) {
			return regionErr(ErrDegenerateGeometry, f.Coord(i), "distance %v", v)
		}
	}
	return nil
}

// squaredEDT returns, for every voxel, the squared distance to the nearest
// voxel for which site reports true. With features set it also returns the
// index of that nearest site. Both results are nil when no site exists.
func squaredEDT(dims voxel.Dims, site func(idx int) bool, features bool) ([]float64, []int32) {
	n := dims.Len()
	f := make([]float64, n)
	var feat []int32
	if features {
		feat = make([]int32, n)
	}
	sites := 0
	for i := range f {
		if site(i) {
			sites++
			if features {
				feat[i] = int32(i)
			}
			continue
		}
		f[i] = math.Inf(1)
		if features {
			feat[i] = -1
		}
	}
	if sites == 0 {
		return nil, nil
	}

	env := newEnvelope(dims.Max())
	// K lines: stride 1.
	for start := 0; start < n; start += dims.W {
		env.transform(f, feat, start, 1, dims.W)
	}
	// J lines: stride W.
	plane := dims.H * dims.W
	for i := 0; i < dims.D; i++ {
		for k := 0; k < dims.W; k++ {
			env.transform(f, feat, i*plane+k, dims.W, dims.H)
		}
	}
	// I lines: stride H*W.
	for start := 0; start < plane; start++ {
		env.transform(f, feat, start, plane, dims.D)
	}
	return f, feat
}

// envelope holds scratch space for one 1D lower-envelope pass.
type envelope struct {
	line  []float64
	lfeat []int32
	v     []int
	z     []float64
}

func newEnvelope(n int) *envelope {
	return &envelope{
		line:  make([]float64, n),
		lfeat: make([]int32, n),
		v:     make([]int, n),
		z:     make([]float64, n+1),
	}
}

// transform replaces the n values of f starting at start with stride step by
// their 1D distance transform. Infinite entries are not parabola sites.
func (e *envelope) transform(f []float64, feat []int32, start, step, n int) {
	if n == 1 {
		return
	}
	line := e.line[:n]
	for p := 0; p < n; p++ {
		line[p] = f[start+p*step]
		if feat != nil {
			e.lfeat[p] = feat[start+p*step]
		}
	}

	k := -1
	for q := 0; q < n; q++ {
		if math.IsInf(line[q], 1) {
			continue
		}
		if k < 0 {
			k = 0
			e.v[0] = q
			e.z[0] = math.Inf(-1)
			e.z[1] = math.Inf(1)
			continue
		}
		s := e.intersect(q, e.v[k])
		for s <= e.z[k] {
			k--
			s = e.intersect(q, e.v[k])
		}
		k++
		e.v[k] = q
		e.z[k] = s
		e.z[k+1] = math.Inf(1)
	}
	if k < 0 {
		return
	}

	k = 0
	for p := 0; p < n; p++ {
		for e.z[k+1] < float64(p) {
			k++
		}
		q := e.v[k]
		d := float64(p - q)
		f[start+p*step] = d*d + line[q]
		if feat != nil {
			feat[start+p*step] = e.lfeat[q]
		}
	}
}

// intersect returns the abscissa where the parabolas rooted at q and r meet.
func (e *envelope) intersect(q, r int) float64 {
	fq, fr := e.line[q], e.line[r]
	return ((fq + float64(q*q)) - (fr + float64(r*r))) / float64(2*q-2*r)
}
