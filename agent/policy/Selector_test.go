package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var fourActions = []string{"north", "west", "south", "east"}

func legal(state int) []string {
	if state < 0 {
		return nil
	}
	return fourActions
}

// pValue returns the p-value of a chi-square goodness of fit test of
// counts against a uniform distribution
func pValue(counts map[string]int, n int) float64 {
	obs := make([]float64, len(fourActions))
	exp := make([]float64, len(fourActions))
	for i, a := range fourActions {
		obs[i] = float64(counts[a])
		exp[i] = float64(n) / float64(len(fourActions))
	}
	x := stat.ChiSquare(obs, exp)
	return 1 - distuv.ChiSquared{K: float64(len(fourActions) - 1)}.CDF(x)
}

func TestNoLegalActions(t *testing.T) {
	s := New(legal, func(int, string) float64 { return 1 }, 0.5, 1)

	_, ok := s.Greedy(-1)
	assert.False(t, ok)

	_, ok = s.SelectAction(-1)
	assert.False(t, ok)

	assert.Equal(t, 0.0, s.Value(-1))
}

func TestValue(t *testing.T) {
	q := map[string]float64{"north": -1, "west": 3, "south": 2, "east": 3}
	s := New(legal, func(_ int, a string) float64 { return q[a] }, 0, 1)

	assert.Equal(t, 3.0, s.Value(0))
}

func TestGreedyUnique(t *testing.T) {
	q := map[string]float64{"south": 5}
	s := New(legal, func(_ int, a string) float64 { return q[a] }, 0, 7)

	for i := 0; i < 100; i++ {
		a, ok := s.Greedy(0)
		require.True(t, ok)
		assert.Equal(t, "south", a)
	}
}

func TestGreedyTieBreak(t *testing.T) {
	q := map[string]float64{"north": 1, "east": 1, "west": -1}
	s := New(legal, func(_ int, a string) float64 { return q[a] }, 0, 42)

	const n = 10000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		a, ok := s.Greedy(0)
		require.True(t, ok)
		counts[a]++
	}

	assert.Zero(t, counts["west"])
	assert.Zero(t, counts["south"])
	assert.InDelta(t, 0.5, float64(counts["north"])/n, 0.03)
	assert.InDelta(t, 0.5, float64(counts["east"])/n, 0.03)
}

func TestSelectActionGreedyWhenEpsilonZero(t *testing.T) {
	q := map[string]float64{"west": 0.5}
	s := New(legal, func(_ int, a string) float64 { return q[a] }, 0, 3)

	for i := 0; i < 1000; i++ {
		a, ok := s.SelectAction(0)
		require.True(t, ok)
		assert.Equal(t, "west", a)
	}
}

func TestSelectActionUniformWhenEpsilonOne(t *testing.T) {
	q := map[string]float64{"north": 100}
	s := New(legal, func(_ int, a string) float64 { return q[a] }, 1, 11)

	const n = 20000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		a, ok := s.SelectAction(0)
		require.True(t, ok)
		counts[a]++
	}

	assert.Greater(t, pValue(counts, n), 0.001)
}

func TestSelectActionEpsilon(t *testing.T) {
	q := map[string]float64{"east": 1}
	s := New(legal, func(_ int, a string) float64 { return q[a] }, 0.2, 5)
	assert.Equal(t, 0.2, s.Epsilon())

	const n = 20000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		a, _ := s.SelectAction(0)
		counts[a]++
	}

	// Greedy with probability 1 - ε + ε/k
	assert.InDelta(t, 0.85, float64(counts["east"])/n, 0.02)
	for _, a := range []string{"north", "west", "south"} {
		assert.InDelta(t, 0.05, float64(counts[a])/n, 0.01)
	}

	s.SetEpsilon(0)
	assert.Equal(t, 0.0, s.Epsilon())
	a, _ := s.SelectAction(0)
	assert.Equal(t, "east", a)
}
