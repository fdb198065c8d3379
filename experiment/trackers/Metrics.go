package trackers

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samuelfneumann/mdplearn/timestep"
)

// Metrics exports episode statistics as Prometheus metrics:
//
//	mdplearn_episodes_total       Finished episodes
//	mdplearn_steps_total          Environment steps taken
//	mdplearn_episode_return       Histogram of episodic returns
//	mdplearn_last_episode_return  Return of the last finished episode
//
// Metrics are exported as they are tracked, so Save does nothing.
type Metrics struct {
	episodes   prometheus.Counter
	steps      prometheus.Counter
	returns    prometheus.Histogram
	lastReturn prometheus.Gauge

	currentReturn float64
}

// NewMetrics creates a new Metrics Tracker and registers its metrics
// with reg. Every metric is labelled with the agent type.
func NewMetrics(reg prometheus.Registerer, agentType string) (*Metrics, error) {
	labels := prometheus.Labels{"agent": agentType}

	m := &Metrics{
		episodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mdplearn",
			Name:        "episodes_total",
			Help:        "Total number of finished episodes",
			ConstLabels: labels,
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mdplearn",
			Name:        "steps_total",
			Help:        "Total number of environment steps",
			ConstLabels: labels,
		}),
		returns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "mdplearn",
			Name:        "episode_return",
			Help:        "Undiscounted return of finished episodes",
			ConstLabels: labels,
			Buckets:     prometheus.LinearBuckets(-10, 2, 11),
		}),
		lastReturn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "mdplearn",
			Name:        "last_episode_return",
			Help:        "Undiscounted return of the last finished episode",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{m.episodes, m.steps, m.returns,
		m.lastReturn} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("newMetrics: %w", err)
		}
	}
	return m, nil
}

// Track records a timestep
func (m *Metrics) Track(step timestep.Info) {
	if step.Number > 0 {
		m.steps.Inc()
	}
	m.currentReturn += step.Reward

	if step.Last() {
		m.episodes.Inc()
		m.returns.Observe(m.currentReturn)
		m.lastReturn.Set(m.currentReturn)
		m.currentReturn = 0
	}
}

// Save implements the tracker.Tracker interface
func (m *Metrics) Save() error {
	return nil
}
