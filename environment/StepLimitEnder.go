package environment

import "github.com/samuelfneumann/mdplearn/timestep"

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits
type StepLimit[S any] struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit[S any](episodeSteps int) StepLimit[S] {
	return StepLimit[S]{episodeSteps}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode temrination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is timestep.Timeout
func (s StepLimit[S]) End(t *timestep.TimeStep[S]) bool {
	if s.episodeSteps > 0 && t.Number >= s.episodeSteps {
		t.SetEnd(timestep.Timeout)
		return true
	}
	return false
}
