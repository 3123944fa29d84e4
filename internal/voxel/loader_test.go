package voxel

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeSlice writes a grayscale PNG where pore pixels are white. The caller
// owns dir.
func writeSlice(t *testing.T, dir, name string, width, height int, pore func(x, y int) bool) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if pore(x, y) {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create slice: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode slice: %v", err)
	}
	return path
}

// writeStack writes depth slices with a centered square pore of half-width i+1
// on slice i.
func writeStack(t *testing.T, depth int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < depth; i++ {
		half := i + 1
		writeSlice(t, dir, fmt.Sprintf("slice_%03d.png", i), 10, 8, func(x, y int) bool {
			return x >= 5-half && x < 5+half && y >= 4-half && y < 4+half
		})
	}
	return dir
}

func TestLoadMaskStack(t *testing.T) {
	dir := writeStack(t, 3)
	paths, err := ResolveSlicePaths([]string{dir})
	if err != nil {
		t.Fatalf("ResolveSlicePaths failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("resolved %d paths, want 3", len(paths))
	}

	m, err := LoadMaskStack(paths, 128)
	if err != nil {
		t.Fatalf("LoadMaskStack failed: %v", err)
	}
	if m.Dims != (Dims{D: 3, H: 8, W: 10}) {
		t.Fatalf("dims: got %s, want 3x8x10", m.Dims)
	}

	// Slice i holds a (2i+2)² square.
	for i := 0; i < 3; i++ {
		n := 0
		for j := 0; j < m.H; j++ {
			for k := 0; k < m.W; k++ {
				if m.At(Coord{I: i, J: j, K: k}) {
					n++
				}
			}
		}
		want := (2*i + 2) * (2*i + 2)
		if n != want {
			t.Errorf("slice %d: got %d pore voxels, want %d", i, n, want)
		}
	}
	if !m.At(Coord{I: 0, J: 4, K: 5}) || m.At(Coord{I: 0, J: 0, K: 0}) {
		t.Error("slice 0 pore/matrix pattern not preserved")
	}
}

func TestLoadMaskStack_SingleSliceIsQuasi2D(t *testing.T) {
	dir := t.TempDir()
	path := writeSlice(t, dir, "only.png", 6, 4, func(x, y int) bool { return x > 2 })

	m, err := LoadMaskStack([]string{path}, 128)
	if err != nil {
		t.Fatalf("LoadMaskStack failed: %v", err)
	}
	if m.D != 1 {
		t.Errorf("D: got %d, want 1", m.D)
	}
	if got := Count(m); got != 12 {
		t.Errorf("pore voxels: got %d, want 12", got)
	}
}

func TestLoadMaskStack_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeSlice(t, dir, "a.png", 6, 4, func(x, y int) bool { return true })
	b := writeSlice(t, dir, "b.png", 5, 4, func(x, y int) bool { return true })

	if _, err := LoadMaskStack([]string{a, b}, 128); err == nil {
		t.Error("LoadMaskStack should fail for slices of different size")
	}
}

func TestLoadMaskStack_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := LoadMaskStack([]string{path}, 128); err == nil {
		t.Error("LoadMaskStack should fail for invalid image data")
	}
}

func TestResolveSlicePaths_Errors(t *testing.T) {
	if _, err := ResolveSlicePaths(nil); err == nil {
		t.Error("ResolveSlicePaths should fail for no paths")
	}
	if _, err := ResolveSlicePaths([]string{"/nonexistent/slices"}); err == nil {
		t.Error("ResolveSlicePaths should fail for a missing path")
	}
	if _, err := ResolveSlicePaths([]string{t.TempDir()}); err == nil {
		t.Error("ResolveSlicePaths should fail for a directory without images")
	}
}

func TestMaskCache_Load(t *testing.T) {
	cache := NewMaskCache()
	dir := writeStack(t, 2)

	m1, err := cache.Load([]string{dir}, 128)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	m2, err := cache.Load([]string{dir}, 128)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if m1 != m2 {
		t.Error("second Load did not return cached mask")
	}

	m3, err := cache.Load([]string{dir}, 10)
	if err != nil {
		t.Fatalf("Load at another level failed: %v", err)
	}
	if m3 == m1 {
		t.Error("different threshold levels must not share a cache entry")
	}
}

func TestMaskCache_Evict(t *testing.T) {
	cache := NewMaskCache()
	dir := writeStack(t, 1)

	if _, err := cache.Load([]string{dir}, 128); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Evict([]string{dir}, 128)

	cache.mu.RLock()
	count := len(cache.masks)
	cache.mu.RUnlock()
	if count != 0 {
		t.Errorf("Evict did not remove mask: %d remain", count)
	}

	// Should not panic
	cache.Evict([]string{"/nonexistent/path"}, 128)
}

func TestMaskCache_ConcurrentAccess(t *testing.T) {
	cache := NewMaskCache()
	dir := writeStack(t, 2)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load([]string{dir}, 128); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	m := NewGrid[bool](Dims{D: 1, H: 1, W: 6})
	copy(m.Data, []bool{true, true, false, true, false, false})

	info := Describe(m)
	if info.PoreVoxels != 3 {
		t.Errorf("PoreVoxels: got %d, want 3", info.PoreVoxels)
	}
	if info.Porosity != 0.5 {
		t.Errorf("Porosity: got %v, want 0.5", info.Porosity)
	}
	if info.Components != 2 {
		t.Errorf("Components: got %d, want 2", info.Components)
	}
}
