// Package poreseg extracts a pore-body segmentation from a binary pore-space
// voxel grid.
//
// The method finds maximal inscribed spheres on the medial surface of the pore
// space and links them into a forest in which every sphere hangs off a larger,
// overlapping one. Each tree becomes one pore body.
//
// # Pipeline
//
// Data flows strictly forward; no stage mutates an earlier stage's output:
//
//  1. DistanceField:      exact Euclidean distance to the matrix.
//  2. ExtractPeaks:       block-wise maxima of the distance field.
//  3. BuildMedialSurface: greedy pruning of contained or crowded spheres.
//  4. BuildHierarchy:     parent/child/rank/label forest of spheres.
//  5. Rasterize:          sphere labels painted at their centers.
//  6. ExpandLabels:       nearest-label growth over the whole pore mask.
//  7. SmoothLabels:       per-label Gaussian smoothing, parallel by label.
//
// Extract runs all seven stages.
//
// # Concurrency
//
// Only SmoothLabels runs in parallel: a fixed set of goroutines, each owning a
// disjoint group of labels and its own output grid, joined before a
// single-threaded max-combine. Every other stage is synchronous and runs to
// completion once started. Cancellation is checked between stages only.
//
// # Errors
//
//   - ErrInvalidInput: bad parameters, or no pore voxels under Options.Strict.
//   - ErrUnreachableRegion: a connected pore region holds no sphere seed.
//   - ErrDegenerateGeometry: zero, negative or NaN radii and distances.
//
// Failures carrying a location are *RegionError values that unwrap to the
// sentinel. No stage retries or returns partial output.
//
// # Logging
//
// The package is silent until SetLogWriters installs writers for the ops,
// diag and trace streams.
package poreseg
