// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either the first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended
type EndType int

const (
	Unended EndType = iota
	TerminalStateReached
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Unended"
	}
}

// Info holds the parts of a TimeStep which do not depend on the type
// of state observed. Trackers only ever see the Info of a TimeStep.
type Info struct {
	StepType StepType
	EndType  EndType
	Reward   float64
	Discount float64
	Number   int
}

// First returns whether a TimeStep is the first in an environment
func (i Info) First() bool {
	return i.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (i Info) Mid() bool {
	return i.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (i Info) Last() bool {
	return i.StepType == Last
}

// TimeStep packages together a single timestep in an environment
type TimeStep[S any] struct {
	Info
	Observation S
}

// New returns a new TimeStep of type t with reward r, discount d, and
// step number n, observing state o
func New[S any](t StepType, r, d float64, o S, n int) TimeStep[S] {
	return TimeStep[S]{
		Info:        Info{StepType: t, Reward: r, Discount: d, Number: n},
		Observation: o,
	}
}

// SetEnd marks the TimeStep as the last in its episode for reason e
func (t *TimeStep[S]) SetEnd(e EndType) {
	t.StepType = Last
	t.EndType = e
}

func (t TimeStep[S]) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v  |  Observation: %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number,
		t.Observation)
}

// Transition is a single observed (state, action, next state, reward)
// tuple, the unit of experience online learners update from
type Transition[S, A comparable] struct {
	State     S
	Action    A
	NextState S
	Reward    float64
}

func (t Transition[S, A]) String() string {
	return fmt.Sprintf("%v --%v--> %v (r = %.2f)", t.State, t.Action,
		t.NextState, t.Reward)
}
