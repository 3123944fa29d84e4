package poreseg

import (
	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// ballMask marks every voxel within radius of any center as pore.
func ballMask(dims voxel.Dims, radius float64, centers ...voxel.Coord) *voxel.Mask {
	m := voxel.NewGrid[bool](dims)
	m.Bounds().Each(func(c voxel.Coord) {
		for _, ctr := range centers {
			if c.Dist(ctr) <= radius {
				m.Set(c, true)
				return
			}
		}
	})
	return m
}

// lineField builds a 1×1×n field from values.
func lineField(values ...float64) *voxel.Field {
	f := voxel.NewGrid[float64](voxel.Dims{D: 1, H: 1, W: len(values)})
	copy(f.Data, values)
	return f
}

// lineSurface builds a medial surface on a 1×1×n grid from (k, radius) pairs.
func lineSurface(n int, spheres ...[2]float64) *MedialSurface {
	ms := &MedialSurface{Dims: voxel.Dims{D: 1, H: 1, W: n}}
	for _, s := range spheres {
		ms.Centers = append(ms.Centers, voxel.Coord{K: int(s[0])})
		ms.Radii = append(ms.Radii, s[1])
	}
	return ms
}

func distinctLabels(l *voxel.Labels) map[int32]int {
	out := make(map[int32]int)
	for _, v := range l.Data {
		if v != 0 {
			out[v]++
		}
	}
	return out
}
