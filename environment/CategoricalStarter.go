package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting states sampled from a categorical
// distribution over a fixed set of states.
type CategoricalStarter[S any] struct {
	states []S
	rand   distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter which samples
// states[i] with probability proportional to weights[i]. If weights is
// nil, states are sampled uniformly.
func NewCategoricalStarter[S any](states []S, weights []float64,
	seed uint64) *CategoricalStarter[S] {
	if len(states) == 0 {
		panic("newCategoricalStarter: no starting states")
	}
	if weights == nil {
		weights = make([]float64, len(states))
		for i := range weights {
			weights[i] = 1.0 / float64(len(weights))
		}
	}
	if len(weights) != len(states) {
		panic("newCategoricalStarter: need one weight per state")
	}

	source := rand.NewSource(seed)
	return &CategoricalStarter[S]{states, distuv.NewCategorical(weights, source)}
}

// Start returns a starting state
func (c *CategoricalStarter[S]) Start() S {
	return c.states[int(c.rand.Rand())]
}

// SingleStart always starts episodes in the same state
type SingleStart[S any] struct {
	state S
}

// NewSingleStart returns a Starter which always returns state
func NewSingleStart[S any](state S) SingleStart[S] {
	return SingleStart[S]{state}
}

// Start returns the starting state
func (s SingleStart[S]) Start() S {
	return s.state
}
