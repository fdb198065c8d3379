package tilecoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func unitSquare() []r1.Interval {
	return []r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}
}

func TestVecLength(t *testing.T) {
	tc := New(unitSquare(), [][]int{{2, 2}, {4, 3}}, 1, false)
	assert.Equal(t, 16, tc.VecLength())
	assert.Equal(t, 2, tc.NumTilings())

	tc = New(unitSquare(), [][]int{{2, 2}, {4, 3}}, 1, true)
	assert.Equal(t, 17, tc.VecLength())
}

func TestEncodeOneTilePerTiling(t *testing.T) {
	bins := [][]int{{2, 2}, {4, 3}, {5, 5}}
	tc := New(unitSquare(), bins, 3, true)

	for _, v := range [][]float64{{0, 0}, {0.5, 0.5}, {1, 1}, {0.2, 0.9}} {
		encoded := tc.Encode(mat.NewVecDense(2, v))
		assert.Equal(t, float64(len(bins)+1), floats.Sum(encoded.RawVector().Data))
		assert.Equal(t, 1.0, encoded.AtVec(0))

		indices := tc.EncodeIndices(mat.NewVecDense(2, v))
		start := 1
		for j, b := range bins {
			end := start + b[0]*b[1]
			assert.GreaterOrEqual(t, indices[j+1], start)
			assert.Less(t, indices[j+1], end)
			start = end
		}
	}
}

func TestOutOfBoundsClipped(t *testing.T) {
	tc := New(unitSquare(), [][]int{{3, 3}}, 5, false)

	low := tc.EncodeIndices(mat.NewVecDense(2, []float64{-10, -10}))
	high := tc.EncodeIndices(mat.NewVecDense(2, []float64{10, 10}))
	assert.Equal(t, []int{0}, low)
	assert.Equal(t, []int{8}, high)
}

func TestDeterministicGivenSeed(t *testing.T) {
	v := mat.NewVecDense(2, []float64{0.31, 0.77})
	a := New(unitSquare(), [][]int{{4, 4}, {4, 4}}, 9, false)
	b := New(unitSquare(), [][]int{{4, 4}, {4, 4}}, 9, false)
	assert.Equal(t, a.EncodeIndices(v), b.EncodeIndices(v))
}

func TestNewPanics(t *testing.T) {
	assert.Panics(t, func() { New(unitSquare(), [][]int{{2}}, 1, false) })
	assert.Panics(t, func() { New(unitSquare(), nil, 1, false) })
	assert.Panics(t, func() { New(nil, [][]int{{2}}, 1, false) })
	assert.Panics(t, func() { New(unitSquare(), [][]int{{0, 2}}, 1, false) })
}

func BenchmarkTileCoder(b *testing.B) {
	bounds := make([]r1.Interval, 8)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: 0, Max: 1}
	}
	tc := New(bounds, [][]int{{8, 8, 8, 8, 8, 8, 8, 8}}, 12, true)

	y := mat.NewVecDense(8, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	for i := 0; i < b.N; i++ {
		tc.Encode(y)
	}
}
