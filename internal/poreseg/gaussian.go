package poreseg

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// gaussianKernel returns normalized 1D weights for offsets -r..r, where r is
// int(4·sigma + 0.5) capped at maxRadius. Under mirror reflection a line of n
// samples repeats every 2n, so a cap of twice the longest axis still spans
// every sample of every line.
func gaussianKernel(sigma float64, maxRadius int) []float64 {
	r := int(math.Min(gaussianTruncate*sigma+0.5, float64(maxRadius)))
	k := make([]float64, 2*r+1)
	for x := -r; x <= r; x++ {
		k[x+r] = math.Exp(-0.5 * float64(x*x) / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// reflectIndex maps i into [0, n) by mirroring about the edges, repeating the
// edge sample (d c b a | a b c d | d c b a).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// gaussian3D smooths f in place with a separable Gaussian kernel along each
// axis.
func gaussian3D(f *voxel.Field, kernel []float64) {
	r := len(kernel) / 2
	buf := make([]float64, f.Dims.Max())
	pass := func(start, step, n int) {
		line := buf[:n]
		for p := 0; p < n; p++ {
			line[p] = f.Data[start+p*step]
		}
		for p := 0; p < n; p++ {
			var sum float64
			for o := -r; o <= r; o++ {
				sum += kernel[o+r] * line[reflectIndex(p+o, n)]
			}
			f.Data[start+p*step] = sum
		}
	}

	plane := f.H * f.W
	for start := 0; start < len(f.Data); start += f.W {
		pass(start, 1, f.W)
	}
	for i := 0; i < f.D; i++ {
		for k := 0; k < f.W; k++ {
			pass(i*plane+k, f.W, f.H)
		}
	}
	for start := 0; start < plane; start++ {
		pass(start, plane, f.D)
	}
}
