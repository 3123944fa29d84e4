package voxel

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// sliceExtensions lists the image formats accepted as mask slices.
var sliceExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// MaskCache provides thread-safe caching of loaded masks to avoid redundant
// decoding of slice stacks.
//
// Entries are keyed by the resolved slice list and the threshold level, so the
// same stack thresholded at two levels yields two entries.
//
// # Memory Management
//
// Cached masks remain in memory until explicitly removed via Evict().
// A 512³ mask costs 128 MiB; long-running hosts should evict what they no
// longer need.
type MaskCache struct {
	mu    sync.RWMutex
	masks map[string]*Mask
}

// NewMaskCache creates and initializes a new empty mask cache.
func NewMaskCache() *MaskCache {
	return &MaskCache{
		masks: make(map[string]*Mask),
	}
}

func cacheKey(paths []string, level uint8) string {
	return fmt.Sprintf("%d\x00%s", level, strings.Join(paths, "\x00"))
}

// Load retrieves a mask from the cache or builds it from disk if not cached.
//
// Parameters:
//   - paths: slice image files in D order, or a single directory whose image
//     files are used in lexical order.
//   - level: grayscale threshold; pixels at or above it are pore.
//
// Returns:
//   - *Mask: the stacked mask. Callers must not modify it.
//   - error: non-nil if a slice cannot be read or slices differ in size.
func (c *MaskCache) Load(paths []string, level uint8) (*Mask, error) {
	resolved, err := ResolveSlicePaths(paths)
	if err != nil {
		return nil, err
	}
	key := cacheKey(resolved, level)

	c.mu.RLock()
	if m, ok := c.masks[key]; ok {
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	m, err := LoadMaskStack(resolved, level)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.masks[key] = m
	c.mu.Unlock()

	return m, nil
}

// Evict removes the mask built from paths at level, if cached.
func (c *MaskCache) Evict(paths []string, level uint8) {
	resolved, err := ResolveSlicePaths(paths)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.masks, cacheKey(resolved, level))
	c.mu.Unlock()
}

// ResolveSlicePaths expands a single directory argument into its image files
// sorted by name. Any other input is returned unchanged.
func ResolveSlicePaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no slice paths given")
	}
	if len(paths) > 1 {
		return paths, nil
	}
	info, err := os.Stat(paths[0])
	if err != nil {
		return nil, fmt.Errorf("failed to stat slice path: %w", err)
	}
	if !info.IsDir() {
		return paths, nil
	}
	entries, err := os.ReadDir(paths[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read slice directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !sliceExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, filepath.Join(paths[0], e.Name()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no slice images in %s", paths[0])
	}
	sort.Strings(out)
	return out, nil
}

// LoadMaskStack decodes each slice, thresholds it and stacks the slices along
// D. A single slice yields a quasi-2D mask with D = 1.
func LoadMaskStack(paths []string, level uint8) (*Mask, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no slice paths given")
	}
	var m *Mask
	for i, p := range paths {
		img, err := imaging.Open(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open slice %d: %w", i, err)
		}
		if m == nil {
			b := img.Bounds()
			m = NewGrid[bool](Dims{D: len(paths), H: b.Dy(), W: b.Dx()})
		}
		if err := stackSlice(m, i, img, level); err != nil {
			return nil, fmt.Errorf("slice %d (%s): %w", i, p, err)
		}
	}
	return m, nil
}

// stackSlice thresholds img into slice i of m.
func stackSlice(m *Mask, i int, img image.Image, level uint8) error {
	b := img.Bounds()
	if b.Dx() != m.W || b.Dy() != m.H {
		return fmt.Errorf("size %dx%d differs from first slice %dx%d", b.Dx(), b.Dy(), m.W, m.H)
	}
	bin := segment.Threshold(imaging.Grayscale(img), level)
	off := i * m.H * m.W
	for y := 0; y < m.H; y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+m.W]
		for x, v := range row {
			m.Data[off+y*m.W+x] = v != 0
		}
	}
	return nil
}

// MaskInfo summarizes a loaded mask.
type MaskInfo struct {
	Dims       Dims    `json:"dims"`
	Slices     int     `json:"slices"`
	PoreVoxels int     `json:"pore_voxels"`
	Porosity   float64 `json:"porosity"`
	Components int     `json:"components"`
}

// Describe computes MaskInfo for m.
func Describe(m *Mask) *MaskInfo {
	pores := Count(m)
	return &MaskInfo{
		Dims:       m.Dims,
		Slices:     m.D,
		PoreVoxels: pores,
		Porosity:   float64(pores) / float64(m.Len()),
		Components: len(Components(m)),
	}
}
