package poreseg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

func lineMask(values ...bool) *voxel.Mask {
	m := voxel.NewGrid[bool](voxel.Dims{D: 1, H: 1, W: len(values)})
	copy(m.Data, values)
	return m
}

func allPore(n int) *voxel.Mask {
	m := voxel.NewGrid[bool](voxel.Dims{D: 1, H: 1, W: n})
	m.Fill(true)
	return m
}

func TestGrowthStep(t *testing.T) {
	tests := []struct {
		dims voxel.Dims
		want int
	}{
		{voxel.Dims{D: 1, H: 1, W: 10}, 1},
		{voxel.Dims{D: 20, H: 20, W: 20}, 1},
		{voxel.Dims{D: 21, H: 5, W: 5}, 2},
		{voxel.Dims{D: 40, H: 40, W: 56}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.dims.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, GrowthStep(tt.dims))
		})
	}
}

func TestExpandLabels_NearestSeedWins(t *testing.T) {
	seeds := voxel.NewGrid[int32](voxel.Dims{D: 1, H: 1, W: 10})
	seeds.Data[0] = 1
	seeds.Data[9] = 2
	before := seeds.Clone()

	out, err := ExpandLabels(seeds, allPore(10))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}, out.Data)
	assert.Equal(t, before.Data, seeds.Data, "seeds must not be modified")
}

func TestExpandLabels_MatrixStaysZero(t *testing.T) {
	mask := lineMask(true, true, true, false, true, true)
	seeds := voxel.NewGrid[int32](mask.Dims)
	// One seed per side of the wall; growth crosses k=3 but it is reset.
	seeds.Data[1] = 4
	seeds.Data[5] = 4

	out, err := ExpandLabels(seeds, mask)
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 4, 4, 0, 4, 4}, out.Data)
}

func TestExpandLabels_UnseededComponent(t *testing.T) {
	mask := lineMask(true, true, false, false, true, true)
	seeds := voxel.NewGrid[int32](mask.Dims)
	seeds.Data[0] = 1

	_, err := ExpandLabels(seeds, mask)
	require.ErrorIs(t, err, ErrUnreachableRegion)

	var re *RegionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, voxel.Coord{K: 4}, re.Voxel)
}

func TestExpandLabels_ShapeMismatch(t *testing.T) {
	seeds := voxel.NewGrid[int32](voxel.Dims{D: 1, H: 1, W: 4})
	_, err := ExpandLabels(seeds, allPore(5))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExpandLabels_CoversBallFromCenter(t *testing.T) {
	dims := voxel.Dims{D: 15, H: 15, W: 15}
	mask := ballMask(dims, 6, voxel.Coord{I: 7, J: 7, K: 7})
	seeds := voxel.NewGrid[int32](dims)
	seeds.Set(voxel.Coord{I: 7, J: 7, K: 7}, 3)

	out, err := ExpandLabels(seeds, mask)
	require.NoError(t, err)
	for i, pore := range mask.Data {
		if pore {
			assert.Equal(t, int32(3), out.Data[i])
		} else {
			assert.Zero(t, out.Data[i])
		}
	}
}
