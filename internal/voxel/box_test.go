package voxel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBox_IncludeFromEmpty(t *testing.T) {
	b := EmptyBox()
	if !b.Empty() {
		t.Fatal("EmptyBox is not empty")
	}
	b = b.Include(Coord{I: 2, J: 5, K: 1}).Include(Coord{I: 0, J: 6, K: 3})

	want := Box{Min: Coord{I: 0, J: 5, K: 1}, Max: Coord{I: 2, J: 6, K: 3}}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Include mismatch (-want +got):\n%s", diff)
	}
	if got := b.Dims(); got != (Dims{D: 3, H: 2, W: 3}) {
		t.Errorf("Dims = %s, want 3x2x3", got)
	}
}

func TestCube_ClipsToGrid(t *testing.T) {
	d := Dims{D: 10, H: 10, W: 4}
	got := Cube(Coord{I: 1, J: 5, K: 3}, 2, d)
	want := Box{Min: Coord{I: 0, J: 3, K: 1}, Max: Coord{I: 3, J: 7, K: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cube mismatch (-want +got):\n%s", diff)
	}
}

func TestBox_EachRowMajor(t *testing.T) {
	b := Box{Max: Coord{I: 1, J: 0, K: 1}}
	var got []Coord
	b.Each(func(c Coord) { got = append(got, c) })

	want := []Coord{{}, {K: 1}, {I: 1}, {I: 1, K: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Each order mismatch (-want +got):\n%s", diff)
	}
}

func TestCrop(t *testing.T) {
	g := NewGrid[int](Dims{D: 3, H: 3, W: 3})
	for i := range g.Data {
		g.Data[i] = i
	}
	box := Box{Min: Coord{I: 1, J: 1, K: 0}, Max: Coord{I: 2, J: 2, K: 1}}

	sub, err := Crop(g, box)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	want := []int{12, 13, 15, 16, 21, 22, 24, 25}
	if diff := cmp.Diff(want, sub.Data); diff != "" {
		t.Errorf("Crop data mismatch (-want +got):\n%s", diff)
	}
}

func TestCrop_Errors(t *testing.T) {
	g := NewGrid[bool](Dims{D: 2, H: 2, W: 2})
	if _, err := Crop(g, EmptyBox()); err == nil {
		t.Error("Crop should fail for an empty box")
	}
	if _, err := Crop(g, Box{Max: Coord{I: 2, J: 1, K: 1}}); err == nil {
		t.Error("Crop should fail for a box outside the grid")
	}
}
