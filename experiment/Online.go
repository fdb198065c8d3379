// Package experiment implements controllers which run agents on
// environments
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/mdplearn/agent"
	env "github.com/samuelfneumann/mdplearn/environment"
	"github.com/samuelfneumann/mdplearn/experiment/tracker"
	"github.com/samuelfneumann/mdplearn/internal/logging"
	ts "github.com/samuelfneumann/mdplearn/timestep"
)

// DefaultWindow is the default number of episodes over which average
// returns are reported
const DefaultWindow = 100

// Progress is notified after every episode
type Progress interface {
	Increment()
	Display()
}

// Option configures an Online experiment
type Option func(*options)

type options struct {
	logger   *slog.Logger
	window   int
	trackers []tracker.Tracker
	progress Progress
}

// WithLogger sets the logger used to report progress
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWindow sets the number of episodes over which average returns
// are reported. A window of 0 disables reporting.
func WithWindow(episodes int) Option {
	return func(o *options) {
		o.window = episodes
	}
}

// WithTrackers registers Trackers which are sent every TimeStep
func WithTrackers(t ...tracker.Tracker) Option {
	return func(o *options) {
		o.trackers = append(o.trackers, t...)
	}
}

// WithProgress sets a Progress which is notified after every episode
func WithProgress(p Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// Summary summarizes the episodes run by an experiment
type Summary struct {
	Episodes         int
	TrainingEpisodes int
	TestEpisodes     int
	Steps            int

	// Mean undiscounted returns, 0 if there were no such episodes
	TrainingReturn float64
	TestReturn     float64
}

func (s Summary) String() string {
	str := "Summary | Episodes: %d (%d training, %d testing)  |  Steps: %d" +
		"  |  Training Return: %.3f  |  Test Return: %.3f"
	return fmt.Sprintf(str, s.Episodes, s.TrainingEpisodes, s.TestEpisodes,
		s.Steps, s.TrainingReturn, s.TestReturn)
}

// Online is an experiment which runs an agent online: the agent
// selects every action and learns from every transition as it
// happens.
//
// If the agent is an agent.Trainer, Online only calls Update while the
// agent reports Training. Once training ends, exploration is turned
// off for agents which are agent.Explorers, and the remaining episodes
// test the learned policy. Agents which are not Trainers always train.
type Online[S, A comparable] struct {
	env.Environment[S, A]
	agent.Agent[S, A]
	episodes int

	trackers []tracker.Tracker
	logger   *slog.Logger
	window   int
	progress Progress

	steps         int
	completed     int
	testing       bool
	trainReturns  []float64
	testReturns   []float64
	windowReturns []float64
}

// NewOnline creates and returns a new online experiment which runs a
// on e for the given number of episodes
func NewOnline[S, A comparable](e env.Environment[S, A], a agent.Agent[S, A],
	episodes int, opts ...Option) *Online[S, A] {
	o := options{logger: logging.NewNop(), window: DefaultWindow}
	for _, opt := range opts {
		opt(&o)
	}

	return &Online[S, A]{
		Environment: e,
		Agent:       a,
		episodes:    episodes,
		trackers:    o.trackers,
		logger:      o.logger,
		window:      o.window,
		progress:    o.progress,
	}
}

// Register registers a Tracker with the experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online[S, A]) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// training returns whether the agent should learn in the next episode,
// turning off exploration the first time it should not
func (o *Online[S, A]) training() bool {
	trainer, ok := o.Agent.(agent.Trainer[S, A])
	if !ok || trainer.Training() {
		return true
	}

	if !o.testing {
		o.testing = true
		if explorer, ok := o.Agent.(agent.Explorer[S, A]); ok {
			explorer.SetEpsilon(0)
		}
		o.logger.Info("training complete, testing learned policy",
			"episodes", o.completed)
	}
	return false
}

// RunEpisode runs a single episode of the experiment, returning the
// undiscounted return of the episode and whether the agent learned
// during it
func (o *Online[S, A]) RunEpisode(ctx context.Context) (float64, bool, error) {
	train := o.training()

	step, err := o.Environment.Reset()
	if err != nil {
		return 0, train, fmt.Errorf("runEpisode: could not reset: %w", err)
	}
	o.track(step)

	var ret float64
	for !step.Last() {
		if err := ctx.Err(); err != nil {
			return ret, train, err
		}

		// Select action, step in environment
		state := step.Observation
		action, ok := o.Agent.Action(state)
		if !ok {
			return ret, train, fmt.Errorf("runEpisode: no legal actions "+
				"in non-terminal state %v", state)
		}

		step, _, err = o.Environment.Step(action)
		if err != nil {
			return ret, train, fmt.Errorf("runEpisode: %w", err)
		}
		o.steps++
		ret += step.Reward
		o.track(step)

		if train {
			o.Agent.Update(state, action, step.Observation, step.Reward)
		}
	}

	o.Agent.Final(step.Observation)
	o.completed++
	return ret, train, nil
}

// Run runs all episodes of the experiment, stopping early if ctx is
// cancelled
func (o *Online[S, A]) Run(ctx context.Context) (Summary, error) {
	for o.completed < o.episodes {
		if err := ctx.Err(); err != nil {
			return o.Summary(), err
		}

		ret, train, err := o.RunEpisode(ctx)
		if err != nil {
			return o.Summary(), err
		}

		if train {
			o.trainReturns = append(o.trainReturns, ret)
		} else {
			o.testReturns = append(o.testReturns, ret)
		}
		o.report(ret)

		if o.progress != nil {
			o.progress.Increment()
			o.progress.Display()
		}
	}
	return o.Summary(), nil
}

// report logs the average return over each window of episodes
func (o *Online[S, A]) report(ret float64) {
	if o.window <= 0 {
		return
	}

	o.windowReturns = append(o.windowReturns, ret)
	if len(o.windowReturns) < o.window {
		return
	}

	o.logger.Info("completed episodes", "episodes", o.completed,
		"window", o.window, "average_return",
		stat.Mean(o.windowReturns, nil))
	o.windowReturns = o.windowReturns[:0]
}

// Summary summarizes the episodes completed so far
func (o *Online[S, A]) Summary() Summary {
	return Summary{
		Episodes:         o.completed,
		TrainingEpisodes: len(o.trainReturns),
		TestEpisodes:     len(o.testReturns),
		Steps:            o.steps,
		TrainingReturn:   mean(o.trainReturns),
		TestReturn:       mean(o.testReturns),
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online[S, A]) Save() error {
	var errs []error
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online[S, A]) track(t ts.TimeStep[S]) {
	for _, tr := range o.trackers {
		tr.Track(t.Info)
	}
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}
