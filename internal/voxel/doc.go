// Package voxel provides the dense 3D grids the pore-network extractor works on.
//
// A grid has three axes named after the array shape D×H×W. Voxel coordinates
// are 0-based triples (I, J, K) where I indexes D (slices), J indexes H (rows)
// and K indexes W (columns). Storage is row-major, so K varies fastest:
//
//	idx = (I*H + J)*W + K
//
// # Grid Types
//
// Grid is generic over its element type. Three instantiations carry names:
//   - Mask   (Grid[bool]):    pore space, true = pore, false = matrix
//   - Field  (Grid[float64]): distance to matrix
//   - Labels (Grid[int32]):   0 = matrix/unlabeled, >0 = pore-body id
//
// # Boxes
//
// Box is an inclusive axis-aligned bounding box. Crop copies a box out of a
// grid into a new grid.
//
// # Loading Masks
//
// LoadMaskStack builds a Mask from a list of 2D slice images (PNG, JPEG, GIF),
// one slice per D index. Slices are converted to grayscale and thresholded;
// pixels at or above the level are pore. MaskCache keeps decoded masks keyed by
// their source paths until they are evicted.
//
// # Thread Safety
//
// Grids are plain values with no internal locking. Concurrent readers are safe;
// writers must be synchronized by the caller. MaskCache is safe for concurrent
// use.
package voxel
