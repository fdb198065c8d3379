package qlearning

import (
	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/mdplearn/features"
	"github.com/samuelfneumann/mdplearn/table"
)

// Representation represents action values and how they are adjusted
// by temporal difference errors
type Representation[S, A comparable] interface {
	// QValue returns the estimated value of action in state. Unseen
	// state-action pairs have value 0.
	QValue(state S, action A) float64

	// Step moves the value of action in state by a step of size alpha
	// along the temporal difference error tdError
	Step(state S, action A, tdError, alpha float64)
}

type stateAction[S, A comparable] struct {
	state  S
	action A
}

// Tabular stores one action value per state-action pair
type Tabular[S, A comparable] struct {
	q *table.Table[stateAction[S, A]]
}

// NewTable returns a new Tabular representation with all action
// values 0
func NewTable[S, A comparable]() *Tabular[S, A] {
	return &Tabular[S, A]{q: table.New[stateAction[S, A]]()}
}

// QValue implements the Representation interface
func (t *Tabular[S, A]) QValue(state S, action A) float64 {
	return t.q.At(stateAction[S, A]{state, action})
}

// Step implements the Representation interface
func (t *Tabular[S, A]) Step(state S, action A, tdError, alpha float64) {
	t.q.Add(stateAction[S, A]{state, action}, alpha*tdError)
}

// Len returns the number of state-action pairs which have been updated
func (t *Tabular[S, A]) Len() int {
	return t.q.Len()
}

// Linear represents action values as a linear function of features
// extracted from state-action pairs. Weights are shared between all
// state-action pairs with the same features.
type Linear[S, A comparable] struct {
	extractor features.Extractor[S, A]
	weights   *table.Table[string]
}

// NewLinear returns a new Linear representation over the features of
// extractor with all weights 0
func NewLinear[S, A comparable](extractor features.Extractor[S, A]) *Linear[S, A] {
	return &Linear[S, A]{
		extractor: extractor,
		weights:   table.New[string](),
	}
}

// QValue implements the Representation interface. Features are summed
// in the order of their names.
func (l *Linear[S, A]) QValue(state S, action A) float64 {
	f := l.extractor.Features(state, action)
	names := f.Names()

	x := make([]float64, len(names))
	w := make([]float64, len(names))
	for i, name := range names {
		x[i] = f[name]
		w[i] = l.weights.At(name)
	}
	return floats.Dot(w, x)
}

// Step implements the Representation interface. Every weight is moved
// in proportion to its feature's value.
func (l *Linear[S, A]) Step(state S, action A, tdError, alpha float64) {
	f := l.extractor.Features(state, action)
	for _, name := range f.Names() {
		l.weights.Add(name, alpha*tdError*f[name])
	}
}

// Weight returns the weight of the named feature
func (l *Linear[S, A]) Weight(name string) float64 {
	return l.weights.At(name)
}

// Weights returns a copy of the weights of all features seen so far
func (l *Linear[S, A]) Weights() map[string]float64 {
	weights := make(map[string]float64, l.weights.Len())
	l.weights.Range(func(name string, w float64) bool {
		weights[name] = w
		return true
	})
	return weights
}
