// Package policy implements action selection from action values
package policy

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/mdplearn/environment"
	"github.com/samuelfneumann/mdplearn/utils/floatutils"
)

// QFunc returns the estimated value of taking an action in a state
type QFunc[S, A comparable] func(state S, action A) float64

// Selector selects actions from the action values of some estimator.
// Greedy actions are chosen uniformly at random among all actions of
// maximal value, and SelectAction implements an ε-greedy policy over
// the greedy action.
//
// A Selector is not safe for concurrent use.
type Selector[S, A comparable] struct {
	actions environment.ActionFunc[S, A]
	q       QFunc[S, A]
	epsilon float64
	seed    rand.Source // Seed for random number generation
	rng     *rand.Rand
}

// New returns a new Selector which selects from the legal actions
// given by actions according to the action values q, choosing a random
// action with probability epsilon
func New[S, A comparable](actions environment.ActionFunc[S, A],
	q QFunc[S, A], epsilon float64, seed uint64) *Selector[S, A] {
	source := rand.NewSource(seed)

	return &Selector[S, A]{
		actions: actions,
		q:       q,
		epsilon: epsilon,
		seed:    source,
		rng:     rand.New(source),
	}
}

// SetEpsilon sets the probability of selecting a random action
func (s *Selector[S, A]) SetEpsilon(epsilon float64) {
	s.epsilon = epsilon
}

// Epsilon returns the probability of selecting a random action
func (s *Selector[S, A]) Epsilon() float64 {
	return s.epsilon
}

// values returns the legal actions in state and their action values
func (s *Selector[S, A]) values(state S) ([]A, []float64) {
	legal := s.actions(state)
	if len(legal) == 0 {
		return nil, nil
	}

	values := make([]float64, len(legal))
	for i, action := range legal {
		values[i] = s.q(state, action)
	}
	return legal, values
}

// Value returns the maximum action value over the legal actions in
// state, or 0 if there are no legal actions
func (s *Selector[S, A]) Value(state S) float64 {
	_, values := s.values(state)
	if len(values) == 0 {
		return 0
	}

	max, _ := floatutils.MaxSlice(values)
	return max
}

// Greedy returns an action of maximal value in state, breaking ties
// uniformly at random. If there are no legal actions in state, Greedy
// returns false.
func (s *Selector[S, A]) Greedy(state S) (A, bool) {
	legal, values := s.values(state)
	if len(legal) == 0 {
		var none A
		return none, false
	}

	_, indices := floatutils.MaxSlice(values)
	if len(indices) == 1 {
		return legal[indices[0]], true
	}
	return legal[indices[s.rng.Intn(len(indices))]], true
}

// SelectAction selects an action from an ε-greedy policy in state. If
// there are no legal actions in state, SelectAction returns false.
func (s *Selector[S, A]) SelectAction(state S) (A, bool) {
	greedy, ok := s.Greedy(state)
	if !ok || s.epsilon == 0 {
		return greedy, ok
	}
	legal := s.actions(state)

	// Calculate the ε probability of choosing any action at random
	prob := s.epsilon / float64(len(legal))
	actionProbabilities := make([]float64, len(legal))
	for i, action := range legal {
		actionProbabilities[i] = prob

		// Adjust the probability of choosing the greedy action
		if action == greedy {
			actionProbabilities[i] += 1.0 - s.epsilon
		}
	}

	dist := distuv.NewCategorical(actionProbabilities, s.seed)
	return legal[int(dist.Rand())], true
}
