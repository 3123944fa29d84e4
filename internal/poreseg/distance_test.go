package poreseg

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

func TestDistanceField_Line(t *testing.T) {
	m := voxel.NewGrid[bool](voxel.Dims{D: 1, H: 1, W: 6})
	m.Fill(true)
	m.Data[0] = false

	f, err := DistanceField(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, f.Data)
}

func TestDistanceField_QuasiTwoD(t *testing.T) {
	m := voxel.NewGrid[bool](voxel.Dims{D: 1, H: 5, W: 5})
	m.Fill(true)
	m.Set(voxel.Coord{J: 2, K: 2}, false)

	f, err := DistanceField(m)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(8), f.At(voxel.Coord{}), 1e-12)
	assert.InDelta(t, 1.0, f.At(voxel.Coord{J: 2, K: 3}), 1e-12)
	assert.Equal(t, 0.0, f.At(voxel.Coord{J: 2, K: 2}))
}

func TestDistanceField_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := voxel.NewGrid[bool](voxel.Dims{D: 5, H: 6, W: 7})
	var matrix []voxel.Coord
	for i := range m.Data {
		m.Data[i] = rng.Float64() > 0.15
		if !m.Data[i] {
			matrix = append(matrix, m.Coord(i))
		}
	}
	require.NotEmpty(t, matrix)

	f, err := DistanceField(m)
	require.NoError(t, err)

	for i := range m.Data {
		c := m.Coord(i)
		want := math.Inf(1)
		for _, z := range matrix {
			want = math.Min(want, c.Dist(z))
		}
		assert.InDelta(t, want, f.Data[i], 1e-9, "voxel %s", c)
	}
}

func TestDistanceField_NoMatrix(t *testing.T) {
	m := voxel.NewGrid[bool](voxel.Dims{D: 2, H: 2, W: 2})
	m.Fill(true)

	_, err := DistanceField(m)
	require.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestSquaredEDT_Features(t *testing.T) {
	dims := voxel.Dims{D: 1, H: 1, W: 7}
	sq, feat := squaredEDT(dims, func(i int) bool { return i == 1 || i == 6 }, true)

	assert.Equal(t, []float64{1, 0, 1, 4, 4, 1, 0}, sq)
	assert.Equal(t, []int32{1, 1, 1, 1, 6, 6, 6}, feat)
}
