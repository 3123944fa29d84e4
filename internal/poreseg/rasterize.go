package poreseg

import "github.com/ironsheep/porenet-mcp/internal/voxel"

// Rasterize paints each sphere's label at its center on an otherwise zero
// grid.
func Rasterize(h *Hierarchy) *voxel.Labels {
	labels := voxel.NewGrid[int32](h.Dims)
	for i := range h.Spheres {
		labels.Set(h.Spheres[i].Center, h.Spheres[i].Label)
	}
	return labels
}
