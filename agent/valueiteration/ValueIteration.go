// Package valueiteration implements a value iteration planner which
// computes action values from a fully known MDP model
package valueiteration

import (
	"fmt"
	"log/slog"

	"github.com/samuelfneumann/mdplearn/agent"
	"github.com/samuelfneumann/mdplearn/environment"
	"github.com/samuelfneumann/mdplearn/internal/logging"
	"github.com/samuelfneumann/mdplearn/table"
)

// key indexes the memo of action values computed with a bounded
// number of Bellman backups
type key[S, A comparable] struct {
	state  S
	action A
	depth  int
}

// Option configures a ValueIteration planner
type Option func(*options)

type options struct {
	logger   *slog.Logger
	baseline interface{}
}

// WithLogger sets the logger used to report sweeps of the model
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBaseline sets the state values returned for every action at
// depth 0, the values the backups start from. Without a baseline,
// every state starts at 0. The baseline is copied.
func WithBaseline[S comparable](values *table.Table[S]) Option {
	return func(o *options) {
		o.baseline = values.Clone()
	}
}

// ValueIteration computes Q(s, a) as the expected discounted return of
// taking action a in state s and acting optimally for Iterations more
// steps, by repeated Bellman backups over the known model:
//
//	Q(s, a, 0) = V₀(s)
//	Q(s, a, d) = Σ p(s'|s, a) [R(s, a, s') + γ max Q(s', a', d-1)]
//
// where the max over a' is 0 if s' is terminal.
//
// Every Q(s, a, d) is computed once and memoized. Values are filled in
// depth by depth over the states reachable from the model's States, so
// no recursion is needed and cycles in the model never cause repeated
// work. Querying a state outside that set extends the memo with the
// states reachable from it.
//
// ValueIteration never explores: Action always returns the greedy
// action, with ties broken in favour of the first action returned by
// the model.
type ValueIteration[S, A comparable] struct {
	mdp        environment.MDP[S, A]
	discount   float64
	iterations int

	baseline *table.Table[S]
	memo     *table.Table[key[S, A]]
	horizon  int // Deepest level filled for every known state
	known    map[S]bool
	order    []S // Known states in the order they were discovered

	logger *slog.Logger
}

// New creates a new ValueIteration planner for mdp. Only the Gamma and
// Iterations fields of c are used.
func New[S, A comparable](mdp environment.MDP[S, A], c agent.Config,
	opts ...Option) (*ValueIteration[S, A], error) {
	if err := c.ValidateFor(agent.ValueIteration); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	baseline := table.New[S]()
	if o.baseline != nil {
		b, ok := o.baseline.(*table.Table[S])
		if !ok {
			return nil, fmt.Errorf("new: %w: baseline of type %T cannot "+
				"hold values for states of type %T", agent.ErrInvalidConfig,
				o.baseline, *new(S))
		}
		baseline = b
	}

	v := &ValueIteration[S, A]{
		mdp:        mdp,
		discount:   c.Gamma,
		iterations: c.Iterations,
		baseline:   baseline,
		memo:       table.New[key[S, A]](),
		horizon:    c.Iterations,
		known:      make(map[S]bool),
		logger:     o.logger,
	}

	v.extend(mdp.States())
	v.logger.Debug("value iteration sweep complete",
		"states", len(v.order), "iterations", v.iterations,
		"memo", v.memo.Len())

	return v, nil
}

// Iterations returns the number of backups used to compute QValue
func (v *ValueIteration[S, A]) Iterations() int {
	return v.iterations
}

// Discount returns the discount factor used in backups
func (v *ValueIteration[S, A]) Discount() float64 {
	return v.discount
}

// MemoSize returns the number of action values memoized so far. It is
// at most |S| × |A| × Iterations for the states reachable from the
// model's States.
func (v *ValueIteration[S, A]) MemoSize() int {
	return v.memo.Len()
}

// QValue returns the action value of action in state after Iterations
// backups
func (v *ValueIteration[S, A]) QValue(state S, action A) float64 {
	return v.QValueAt(state, action, v.iterations)
}

// QValueAt returns the action value of action in state after depth
// backups. QValueAt panics if depth is negative.
func (v *ValueIteration[S, A]) QValueAt(state S, action A, depth int) float64 {
	if depth < 0 {
		panic(fmt.Sprintf("qValueAt: depth must be non-negative, have %d",
			depth))
	}
	if depth == 0 {
		return v.baseline.At(state)
	}

	if !v.known[state] {
		v.extend([]S{state})
	}
	if depth > v.horizon {
		v.deepen(depth)
	}

	if q, ok := v.memo.Lookup(key[S, A]{state, action, depth}); ok {
		return q
	}

	// Actions the model does not list in state are never swept
	outcomes := v.mdp.TransitionStatesAndProbs(state, action)
	successors := make([]S, len(outcomes))
	for i, outcome := range outcomes {
		successors[i] = outcome.State
	}
	v.extend(successors)

	q := v.backup(state, action, outcomes, depth)
	v.memo.Set(key[S, A]{state, action, depth}, q)
	return q
}

// Value returns the maximum action value in state, or 0 if state is
// terminal
func (v *ValueIteration[S, A]) Value(state S) float64 {
	_, value, ok := v.best(state, v.iterations)
	if !ok {
		return 0
	}
	return value
}

// Policy returns the action of maximal value in state. Ties are broken
// in favour of the action listed first by the model. If state is
// terminal, Policy returns false.
func (v *ValueIteration[S, A]) Policy(state S) (A, bool) {
	action, _, ok := v.best(state, v.iterations)
	return action, ok
}

// Action returns the action to take in state, which is always the
// action given by Policy
func (v *ValueIteration[S, A]) Action(state S) (A, bool) {
	return v.Policy(state)
}

// Update is a no-op: all values are computed from the model
func (v *ValueIteration[S, A]) Update(_ S, _ A, _ S, _ float64) {}

// Final is a no-op: value iteration does not count episodes
func (v *ValueIteration[S, A]) Final(_ S) {}

// best returns the first action of maximal value at depth in state and
// its value, or false if state is terminal
func (v *ValueIteration[S, A]) best(state S, depth int) (A, float64, bool) {
	var bestAction A
	actions := v.mdp.PossibleActions(state)
	if len(actions) == 0 {
		return bestAction, 0, false
	}

	bestAction = actions[0]
	bestQ := v.QValueAt(state, bestAction, depth)
	for _, action := range actions[1:] {
		if q := v.QValueAt(state, action, depth); q > bestQ {
			bestAction, bestQ = action, q
		}
	}
	return bestAction, bestQ, true
}

// maxNext returns the maximum memoized action value at depth in state,
// or 0 if state is terminal. The memo must already hold every action
// value of state at depth.
func (v *ValueIteration[S, A]) maxNext(state S, depth int) float64 {
	actions := v.mdp.PossibleActions(state)
	if len(actions) == 0 {
		return 0
	}
	if depth == 0 {
		return v.baseline.At(state)
	}

	max := v.memo.At(key[S, A]{state, actions[0], depth})
	for _, action := range actions[1:] {
		if q := v.memo.At(key[S, A]{state, action, depth}); q > max {
			max = q
		}
	}
	return max
}

// backup computes the action value of action in state at depth from
// the values at depth - 1, which must already be memoized for every
// successor in outcomes
func (v *ValueIteration[S, A]) backup(state S, action A,
	outcomes []environment.Outcome[S], depth int) float64 {
	var q float64
	for _, outcome := range outcomes {
		reward := v.mdp.Reward(state, action, outcome.State)
		next := v.maxNext(outcome.State, depth-1)
		q += outcome.Prob * (reward + v.discount*next)
	}
	return q
}

// sweep fills in the action values of states at each depth in
// [from, to]. Every state reachable from states must already have
// values up to depth from - 1.
func (v *ValueIteration[S, A]) sweep(states []S, from, to int) {
	type stateAction struct {
		state  S
		action A
	}
	outcomes := make(map[stateAction][]environment.Outcome[S])
	for _, state := range states {
		for _, action := range v.mdp.PossibleActions(state) {
			sa := stateAction{state, action}
			outcomes[sa] = v.mdp.TransitionStatesAndProbs(state, action)
		}
	}

	for depth := from; depth <= to; depth++ {
		for _, state := range states {
			for _, action := range v.mdp.PossibleActions(state) {
				sa := stateAction{state, action}
				q := v.backup(state, action, outcomes[sa], depth)
				v.memo.Set(key[S, A]{state, action, depth}, q)
			}
		}
	}
}

// extend adds the states reachable from roots which are not yet known
// to the memo, filling in their values up to the current horizon
func (v *ValueIteration[S, A]) extend(roots []S) {
	var fresh []S
	queue := make([]S, 0, len(roots))
	for _, root := range roots {
		if !v.known[root] {
			v.known[root] = true
			queue = append(queue, root)
		}
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		fresh = append(fresh, state)

		for _, action := range v.mdp.PossibleActions(state) {
			outcomes := v.mdp.TransitionStatesAndProbs(state, action)
			for _, outcome := range outcomes {
				if !v.known[outcome.State] {
					v.known[outcome.State] = true
					queue = append(queue, outcome.State)
				}
			}
		}
	}

	if len(fresh) == 0 {
		return
	}
	v.order = append(v.order, fresh...)
	v.sweep(fresh, 1, v.horizon)

	v.logger.Debug("extended value iteration memo", "states", len(fresh),
		"memo", v.memo.Len())
}

// deepen fills in the values of every known state down to depth
func (v *ValueIteration[S, A]) deepen(depth int) {
	v.sweep(v.order, v.horizon+1, depth)
	v.horizon = depth
}

// Values returns the value of every state of the model
func (v *ValueIteration[S, A]) Values() map[S]float64 {
	values := make(map[S]float64)
	for _, state := range v.mdp.States() {
		values[state] = v.Value(state)
	}
	return values
}

// Ensure ValueIteration implements agent.Agent
var _ agent.Agent[int, int] = (*ValueIteration[int, int])(nil)
