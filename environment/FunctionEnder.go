package environment

import "github.com/samuelfneumann/mdplearn/timestep"

// FunctionEnder ends an episode whenever a function of the observed
// state returns true.
type FunctionEnder[S any] struct {
	end     func(S) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder[S any](f func(S) bool,
	endType timestep.EndType) *FunctionEnder[S] {
	return &FunctionEnder[S]{f, endType}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode temrination. If the episode
// should be ended, End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is the appropriate ending
// type.
func (f *FunctionEnder[S]) End(t *timestep.TimeStep[S]) bool {
	if f.end(t.Observation) {
		t.SetEnd(f.endType)
		return true
	}
	return false
}

// Enders combines multiple Enders into one, ending an episode as soon
// as any of them does. Earlier Enders take precedence in setting the
// EndType.
type Enders[S any] []Ender[S]

// End implements the Ender interface
func (e Enders[S]) End(t *timestep.TimeStep[S]) bool {
	for _, ender := range e {
		if ender.End(t) {
			return true
		}
	}
	return false
}
