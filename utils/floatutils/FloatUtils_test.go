package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestMaxSliceTies(t *testing.T) {
	max, indices := MaxSlice([]float64{1, 3, -2, 3, 0, 3})

	assert.Equal(t, 3.0, max)
	assert.Equal(t, []int{1, 3, 5}, indices)
}

func TestMaxSliceResetsOnNewMax(t *testing.T) {
	max, indices := MaxSlice([]float64{2, 2, 5})

	assert.Equal(t, 5.0, max)
	assert.Equal(t, []int{2}, indices)
}

func TestMaxSliceNegative(t *testing.T) {
	max, indices := MaxSlice([]float64{-3, -1, -2})

	assert.Equal(t, -1.0, max)
	assert.Equal(t, []int{1}, indices)
}

func TestArgMaxFirst(t *testing.T) {
	assert.Equal(t, 1, ArgMax([]float64{0, 4, 4, 1}))
}

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(3, 0, 1))
	assert.Equal(t, 0.0, Clip(-3, 0, 1))
	assert.Equal(t, 0.5, ClipInterval(0.5, r1.Interval{Min: 0, Max: 1}))
}

func TestContains(t *testing.T) {
	unit := r1.Interval{Min: 0, Max: 1}

	assert.True(t, Contains(unit, 0))
	assert.True(t, Contains(unit, 1))
	assert.False(t, Contains(unit, 1.0001))
	assert.False(t, Contains(unit, math.NaN()))
}
