package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/mdplearn/timestep"
)

// chain is a three state MDP: 0 -> 1 -> 2, where 2 is terminal. The
// single action advances with probability advance and otherwise stays.
type chain struct {
	advance float64
}

func (c chain) States() []int { return []int{0, 1, 2} }

func (c chain) PossibleActions(s int) []string {
	if s == 2 {
		return nil
	}
	return []string{"go"}
}

func (c chain) TransitionStatesAndProbs(s int, _ string) []Outcome[int] {
	if c.advance == 1 {
		return []Outcome[int]{{State: s + 1, Prob: 1}}
	}
	return []Outcome[int]{
		{State: s + 1, Prob: c.advance},
		{State: s, Prob: 1 - c.advance},
	}
}

func (c chain) Reward(_ int, _ string, next int) float64 {
	if next == 2 {
		return 1
	}
	return 0
}

func TestModelReachesTerminal(t *testing.T) {
	env := NewModel[int, string](chain{advance: 1}, NewSingleStart(0), nil, 1, 1)

	step, err := env.Reset()
	require.NoError(t, err)
	assert.True(t, step.First())
	assert.Equal(t, 0, step.Observation)

	step, last, err := env.Step("go")
	require.NoError(t, err)
	assert.False(t, last)
	assert.Equal(t, 1, step.Observation)
	assert.Equal(t, 0.0, step.Reward)

	step, last, err = env.Step("go")
	require.NoError(t, err)
	assert.True(t, last)
	assert.Equal(t, timestep.TerminalStateReached, step.EndType)
	assert.Equal(t, 1.0, step.Reward)
	assert.Equal(t, 2, step.Number)

	_, _, err = env.Step("go")
	assert.ErrorIs(t, err, ErrEpisodeOver)
}

func TestModelStepBeforeReset(t *testing.T) {
	env := NewModel[int, string](chain{advance: 1}, NewSingleStart(0), nil, 1, 1)

	_, _, err := env.Step("go")
	assert.ErrorIs(t, err, ErrEpisodeOver)
}

func TestModelStepLimit(t *testing.T) {
	env := NewModel[int, string](chain{advance: 0}, NewSingleStart(0),
		NewStepLimit[int](5), 1, 1)
	_, err := env.Reset()
	require.NoError(t, err)

	steps := 0
	for {
		step, last, err := env.Step("go")
		require.NoError(t, err)
		steps++
		if last {
			assert.Equal(t, timestep.Timeout, step.EndType)
			break
		}
	}
	assert.Equal(t, 5, steps)
}

func TestModelSamplingFrequencies(t *testing.T) {
	const trials = 5000
	env := NewModel[int, string](chain{advance: 0.7}, NewSingleStart(0), nil, 1, 11)

	advanced := 0
	for i := 0; i < trials; i++ {
		_, err := env.Reset()
		require.NoError(t, err)
		step, _, err := env.Step("go")
		require.NoError(t, err)
		if step.Observation == 1 {
			advanced++
		}
	}
	assert.InDelta(t, 0.7, float64(advanced)/trials, 0.03)
}

func TestCategoricalStarter(t *testing.T) {
	starter := NewCategoricalStarter([]string{"a", "b"}, []float64{0, 1}, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, "b", starter.Start())
	}
}

func TestEnders(t *testing.T) {
	enders := Enders[int]{
		NewFunctionEnder(func(s int) bool { return s < 0 },
			timestep.TerminalStateReached),
		NewStepLimit[int](10),
	}

	step := timestep.New(timestep.Mid, 0, 1, -1, 1)
	assert.True(t, enders.End(&step))
	assert.Equal(t, timestep.TerminalStateReached, step.EndType)

	step = timestep.New(timestep.Mid, 0, 1, 3, 10)
	assert.True(t, enders.End(&step))
	assert.Equal(t, timestep.Timeout, step.EndType)

	step = timestep.New(timestep.Mid, 0, 1, 3, 2)
	assert.False(t, enders.End(&step))
	assert.True(t, step.Mid())
}
