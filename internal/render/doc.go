// Package render draws label-map previews for hosts that can display images.
//
// A preview is one D-slice of a label map. Every pore-body label gets a
// stable color from a golden-angle hue walk so neighboring labels stay
// distinguishable; matrix voxels (label 0) are black. Previews may be
// enlarged with nearest-neighbor resampling so voxel edges stay sharp.
package render
