package trackers

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/mdplearn/experiment/tracker"
	"github.com/samuelfneumann/mdplearn/timestep"
)

// episode returns the Infos of an episode with the given rewards
func episode(rewards ...float64) []timestep.Info {
	steps := []timestep.Info{{StepType: timestep.First, Number: 0}}
	for i, r := range rewards {
		info := timestep.Info{StepType: timestep.Mid, Reward: r, Number: i + 1}
		if i == len(rewards)-1 {
			info.StepType = timestep.Last
			info.EndType = timestep.TerminalStateReached
		}
		steps = append(steps, info)
	}
	return steps
}

func track(t tracker.Tracker, episodes ...[]timestep.Info) {
	for _, ep := range episodes {
		for _, step := range ep {
			t.Track(step)
		}
	}
}

func TestReturn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(path)

	track(r, episode(1, 2, 3), episode(-1), episode(0.5, 0.5))
	assert.Equal(t, []float64{6, -1, 1}, r.Returns())

	require.NoError(t, r.Save())
	data, err := tracker.LoadData[float64](path)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, -1, 1}, data)
}

func TestReturnPanicsOnSkippedStep(t *testing.T) {
	r := NewReturn("")
	r.Track(timestep.Info{StepType: timestep.First, Number: 0})
	assert.Panics(t, func() {
		r.Track(timestep.Info{StepType: timestep.Mid, Number: 2})
	})
}

func TestReturnDiscardsAbandonedEpisode(t *testing.T) {
	r := NewReturn("")
	abandoned := episode(5, 5, 5)[:3]

	track(r, abandoned, episode(1, 2), abandoned, episode(-1))
	assert.Equal(t, []float64{3, -1}, r.Returns())
}

func TestEpisodeLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lengths.bin")
	e := NewEpisodeLength(path)

	track(e, episode(1, 2, 3), episode(-1))
	assert.Equal(t, []int{3, 1}, e.Lengths())

	require.NoError(t, e.Save())
	data, err := tracker.LoadData[int](path)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, data)
}

func TestSaveToMissingDirectory(t *testing.T) {
	e := NewEpisodeLength(filepath.Join(t.TempDir(), "missing", "x.bin"))
	assert.Error(t, e.Save())

	_, err := tracker.LoadData[int](filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "qlearning")
	require.NoError(t, err)

	track(m, episode(1, 2, 3), episode(-1))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.episodes))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.steps))
	assert.Equal(t, -1.0, testutil.ToFloat64(m.lastReturn))
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, m.Save())

	// Registering twice with the same registry fails
	_, err = NewMetrics(reg, "qlearning")
	assert.Error(t, err)
}
