// Package qlearning implements the Q-learning algorithm with tabular
// and linear action values
package qlearning

import (
	"fmt"
	"log/slog"

	"github.com/samuelfneumann/mdplearn/agent"
	"github.com/samuelfneumann/mdplearn/agent/policy"
	"github.com/samuelfneumann/mdplearn/environment"
	"github.com/samuelfneumann/mdplearn/features"
	"github.com/samuelfneumann/mdplearn/internal/logging"
)

// Option configures a QLearning agent
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report completed episodes
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// QLearning implements the Q-learning algorithm. Action values are
// held by a Representation and moved along the temporal difference
// error
//
//	δ = r + γ max Q(s', a') - Q(s, a)
//
// where the max is 0 if s' is terminal. Actions are selected
// ε-greedily, with ties between greedy actions broken uniformly at
// random.
//
// QLearning only responds to calls. Controllers drive the environment,
// call Update once per transition, and call Final at the end of each
// episode.
type QLearning[S, A comparable] struct {
	values    Representation[S, A]
	behaviour *policy.Selector[S, A]

	alpha       float64
	gamma       float64
	numTraining int
	episodes    int

	logger *slog.Logger
}

// New creates a new QLearning agent over the action values of rep.
// The legal actions in each state are given by actions. The Epsilon,
// Alpha, Gamma, NumTraining, and Seed fields of c are used.
func New[S, A comparable](actions environment.ActionFunc[S, A],
	rep Representation[S, A], c agent.Config,
	opts ...Option) (*QLearning[S, A], error) {
	if err := c.ValidateFor(agent.QLearning); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return newQLearning(actions, rep, c, opts)
}

// NewTabular creates a new QLearning agent with a table of action
// values
func NewTabular[S, A comparable](actions environment.ActionFunc[S, A],
	c agent.Config, opts ...Option) (*QLearning[S, A], error) {
	if err := c.ValidateFor(agent.QLearning); err != nil {
		return nil, fmt.Errorf("newTabular: %w", err)
	}
	return newQLearning[S, A](actions, NewTable[S, A](), c, opts)
}

// NewApproximate creates a new QLearning agent with action values
// linear in the features of the extractor named by c.Extractor. An
// unknown extractor is a configuration error.
func NewApproximate[S, A comparable](actions environment.ActionFunc[S, A],
	c agent.Config, opts ...Option) (*QLearning[S, A], error) {
	if err := c.ValidateFor(agent.ApproximateQLearning); err != nil {
		return nil, fmt.Errorf("newApproximate: %w", err)
	}

	extractor, err := features.Lookup[S, A](c.Extractor)
	if err != nil {
		return nil, fmt.Errorf("newApproximate: %w: %w",
			agent.ErrInvalidConfig, err)
	}
	return newQLearning[S, A](actions, NewLinear(extractor), c, opts)
}

func newQLearning[S, A comparable](actions environment.ActionFunc[S, A],
	rep Representation[S, A], c agent.Config,
	opts []Option) (*QLearning[S, A], error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	q := &QLearning[S, A]{
		values:      rep,
		alpha:       c.Alpha,
		gamma:       c.Gamma,
		numTraining: c.NumTraining,
		logger:      o.logger,
	}
	q.behaviour = policy.New(actions, rep.QValue, c.Epsilon, c.Seed)

	return q, nil
}

// QValue returns the estimated value of action in state
func (q *QLearning[S, A]) QValue(state S, action A) float64 {
	return q.values.QValue(state, action)
}

// Representation returns the representation of the agent's action
// values
func (q *QLearning[S, A]) Representation() Representation[S, A] {
	return q.values
}

// Value returns the maximum action value in state, or 0 if state is
// terminal
func (q *QLearning[S, A]) Value(state S) float64 {
	return q.behaviour.Value(state)
}

// Policy returns an action of maximal value in state, breaking ties
// uniformly at random. If state is terminal, Policy returns false.
func (q *QLearning[S, A]) Policy(state S) (A, bool) {
	return q.behaviour.Greedy(state)
}

// Action selects an ε-greedy action in state. If state is terminal,
// Action returns false.
func (q *QLearning[S, A]) Action(state S) (A, bool) {
	return q.behaviour.SelectAction(state)
}

// Update moves the value of action in state toward the target
// reward + γ * Value(nextState)
func (q *QLearning[S, A]) Update(state S, action A, nextState S,
	reward float64) {
	target := reward + q.gamma*q.Value(nextState)
	tdError := target - q.QValue(state, action)

	q.values.Step(state, action, tdError, q.alpha)
}

// Final records the end of an episode. It does not change any action
// values.
func (q *QLearning[S, A]) Final(state S) {
	q.episodes++

	if q.episodes == q.numTraining {
		q.logger.Info("finished training", "episodes", q.episodes)
		if linear, ok := q.values.(*Linear[S, A]); ok {
			q.logger.Debug("learned weights", "weights", linear.Weights())
		}
	} else {
		q.logger.Debug("episode complete", "episodes", q.episodes,
			"state", fmt.Sprint(state))
	}
}

// Episodes returns the number of episodes completed
func (q *QLearning[S, A]) Episodes() int {
	return q.episodes
}

// Training returns whether fewer than NumTraining episodes have been
// completed
func (q *QLearning[S, A]) Training() bool {
	return q.episodes < q.numTraining
}

// NumTraining returns the number of episodes the agent was configured
// to train for
func (q *QLearning[S, A]) NumTraining() int {
	return q.numTraining
}

// SetEpsilon sets the probability of selecting a random action
func (q *QLearning[S, A]) SetEpsilon(epsilon float64) {
	q.behaviour.SetEpsilon(epsilon)
}

// Epsilon returns the probability of selecting a random action
func (q *QLearning[S, A]) Epsilon() float64 {
	return q.behaviour.Epsilon()
}

// Alpha returns the learning rate
func (q *QLearning[S, A]) Alpha() float64 {
	return q.alpha
}

// Gamma returns the discount factor
func (q *QLearning[S, A]) Gamma() float64 {
	return q.gamma
}

// Ensure QLearning implements the agent interfaces
var (
	_ agent.Explorer[int, int] = (*QLearning[int, int])(nil)
	_ agent.Trainer[int, int]  = (*QLearning[int, int])(nil)
)
