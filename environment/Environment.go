// Package environment outlines the interfaces and structs needed to
// implement concrete environments: fully known MDP models, which
// planners such as value iteration consume, and episodic sampling
// environments, which online learners interact with.
package environment

import (
	"errors"

	"github.com/samuelfneumann/mdplearn/timestep"
)

// ErrEpisodeOver is returned when Step is called on an environment
// whose current episode has already ended. Call Reset to start a new
// episode.
var ErrEpisodeOver = errors.New("episode is over")

// ActionFunc returns the legal actions in a state. A state with no
// legal actions is terminal.
type ActionFunc[S, A comparable] func(state S) []A

// Outcome is a single successor state of a transition together with
// the probability of reaching it
type Outcome[S comparable] struct {
	State S
	Prob  float64
}

// MDP is a Markov Decision Process with a fully known model.
//
// Implementations must be immutable while any planner holds them:
// planners cache values computed from the model.
type MDP[S, A comparable] interface {
	// States enumerates the states of the MDP
	States() []S

	// PossibleActions returns the legal actions in state. The returned
	// slice is empty if and only if state is terminal. Planners break
	// ties in the order actions are returned.
	PossibleActions(state S) []A

	// TransitionStatesAndProbs returns the successors of taking action
	// in state, with probabilities summing to 1
	TransitionStatesAndProbs(state S, action A) []Outcome[S]

	// Reward returns the reward for the transition
	// state --action--> nextState
	Reward(state S, action A, nextState S) float64
}

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter[S any] interface {
	Start() S
}

// Ender determines when episodes end. If the episode should be ended,
// End modifies the TimeStep so that it is the last in the episode.
type Ender[S any] interface {
	End(t *timestep.TimeStep[S]) bool
}

// Environment implements a simulated, episodic environment which an
// agent interacts with one transition at a time
type Environment[S, A comparable] interface {
	// Reset starts a new episode and returns its first TimeStep
	Reset() (timestep.TimeStep[S], error)

	// Step takes action in the current state, returning the next
	// TimeStep and whether the episode has ended
	Step(action A) (timestep.TimeStep[S], bool, error)

	// PossibleActions returns the legal actions in state
	PossibleActions(state S) []A

	// CurrentTimeStep returns the most recent TimeStep
	CurrentTimeStep() timestep.TimeStep[S]
}
