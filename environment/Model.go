package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/mdplearn/timestep"
)

// Model is an Environment which samples its dynamics from a fully
// known MDP. It lets online learners, which never inspect the model,
// be run on the same MDP a planner solves exactly.
//
// Episodes end when a terminal state (one without legal actions) is
// reached, or when the optional Ender says so.
type Model[S, A comparable] struct {
	mdp      MDP[S, A]
	starter  Starter[S]
	ender    Ender[S]
	discount float64
	source   rand.Source

	currentStep timestep.TimeStep[S]
}

// NewModel returns a new Model environment sampling transitions from
// mdp. Episodes start in states drawn from starter and may be cut off
// by ender, which can be nil.
func NewModel[S, A comparable](mdp MDP[S, A], starter Starter[S],
	ender Ender[S], discount float64, seed uint64) *Model[S, A] {
	m := &Model[S, A]{
		mdp:      mdp,
		starter:  starter,
		ender:    ender,
		discount: discount,
		source:   rand.NewSource(seed),
	}
	// Step before the first Reset is an error
	m.currentStep.SetEnd(timestep.Unended)
	return m
}

// Reset resets the environment to a starting state
func (m *Model[S, A]) Reset() (timestep.TimeStep[S], error) {
	start := m.starter.Start()
	m.currentStep = timestep.New(timestep.First, 0, m.discount, start, 0)

	if len(m.mdp.PossibleActions(start)) == 0 {
		m.currentStep.SetEnd(timestep.TerminalStateReached)
	}
	return m.currentStep, nil
}

// Step takes one environmental step given action, sampling the next
// state from the model's transition distribution
func (m *Model[S, A]) Step(action A) (timestep.TimeStep[S], bool, error) {
	if m.currentStep.Last() {
		return m.currentStep, true, ErrEpisodeOver
	}
	state := m.currentStep.Observation

	outcomes := m.mdp.TransitionStatesAndProbs(state, action)
	if len(outcomes) == 0 {
		return m.currentStep, false, fmt.Errorf("step: action %v has no "+
			"successors in state %v", action, state)
	}
	next := m.sample(outcomes)

	reward := m.mdp.Reward(state, action, next)
	step := timestep.New(timestep.Mid, reward, m.discount, next,
		m.currentStep.Number+1)

	if len(m.mdp.PossibleActions(next)) == 0 {
		step.SetEnd(timestep.TerminalStateReached)
	} else if m.ender != nil {
		m.ender.End(&step)
	}

	m.currentStep = step
	return step, step.Last(), nil
}

// sample draws a successor state from outcomes
func (m *Model[S, A]) sample(outcomes []Outcome[S]) S {
	if len(outcomes) == 1 {
		return outcomes[0].State
	}

	weights := make([]float64, len(outcomes))
	for i, o := range outcomes {
		weights[i] = o.Prob
	}
	dist := distuv.NewCategorical(weights, m.source)
	return outcomes[int(dist.Rand())].State
}

// PossibleActions returns the legal actions in state
func (m *Model[S, A]) PossibleActions(state S) []A {
	return m.mdp.PossibleActions(state)
}

// CurrentTimeStep returns the current timestep of the environment
func (m *Model[S, A]) CurrentTimeStep() timestep.TimeStep[S] {
	return m.currentStep
}

// MDP returns the model the environment samples from
func (m *Model[S, A]) MDP() MDP[S, A] {
	return m.mdp
}
