package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/mdplearn/agent"
	"github.com/samuelfneumann/mdplearn/agent/qlearning"
	"github.com/samuelfneumann/mdplearn/environment"
	"github.com/samuelfneumann/mdplearn/environment/gridworld"
	"github.com/samuelfneumann/mdplearn/experiment"
	"github.com/samuelfneumann/mdplearn/experiment/trackers"
	"github.com/samuelfneumann/mdplearn/features"
	"github.com/samuelfneumann/mdplearn/utils/progressbar"
)

// tileCoding names the tile coding extractor, which needs the grid's
// dimensions and so is built here rather than looked up by name
const tileCoding = "tilecoding"

type qLearnFlags struct {
	agent       string
	episodes    int
	maxSteps    int
	options     string
	config      string
	discount    float64
	extractor   string
	metricsAddr string
	returns     string
	render      string
	progress    bool
}

func newQLearnCmd(g *globals) *cobra.Command {
	f := &qLearnFlags{}
	defaults := agent.DefaultConfig(agent.QLearning)

	cmd := &cobra.Command{
		Use:     "qlearn",
		Aliases: []string{"q"},
		Short:   "Learn a gridworld policy online with Q-learning",
		Long: `Learn a gridworld policy online with Q-learning.

Agent options are given as comma separated key=value pairs, for example
-a epsilon=0.1,alpha=0.3,numTraining=50. Recognized keys are epsilon,
alpha, gamma (or discount), numTraining, and extractor. Agents train
for numTraining episodes and then act greedily without learning; a
numTraining of 0 trains on every episode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQLearn(cmd, g, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.agent, "agent", "tabular",
		"Agent type: tabular or approximate")
	flags.IntVarP(&f.episodes, "episodes", "k", 100,
		"Number of episodes to run")
	flags.IntVar(&f.maxSteps, "max-steps", 1000,
		"Maximum steps per episode, 0 for no limit")
	flags.StringVarP(&f.options, "options", "a", "",
		"Agent options as key=value pairs")
	flags.StringVar(&f.config, "config", "",
		"YAML or JSON agent configuration; options override its values")
	flags.Float64VarP(&f.discount, "discount", "d", defaults.Gamma,
		"Discount factor")
	flags.StringVar(&f.extractor, "extractor", "identity",
		fmt.Sprintf("Feature extractor of approximate agents, one of %v",
			append(features.Names(), tileCoding)))
	flags.StringVar(&f.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics at this address, for example :2112")
	flags.StringVar(&f.returns, "returns", "",
		"Save episodic returns to this file")
	flags.StringVar(&f.render, "render", "",
		"Save an image of the learned values and policy to this PNG file")
	flags.BoolVar(&f.progress, "progress", true,
		"Show a progress bar when stderr is a terminal")

	return cmd
}

// qLearnConfig builds the agent configuration from the config file,
// agent options, and flags, in increasing order of precedence
func qLearnConfig(cmd *cobra.Command, g *globals,
	f *qLearnFlags) (agent.Config, error) {
	t, err := agent.ParseType(f.agent)
	if err != nil {
		return agent.Config{}, err
	}
	if !t.Online() {
		return agent.Config{}, fmt.Errorf("%w: %v agents do not learn "+
			"online", agent.ErrInvalidConfig, t)
	}

	c := agent.DefaultConfig(t)
	c.Gamma = f.discount
	if f.config != "" {
		if c, err = agent.LoadConfig(f.config); err != nil {
			return agent.Config{}, err
		}
	}
	if cmd.Flags().Changed("agent") || f.config == "" {
		c.Type = t
	}
	if cmd.Flags().Changed("discount") {
		c.Gamma = f.discount
	}
	if cmd.Flags().Changed("extractor") || c.Extractor == "" {
		c.Extractor = f.extractor
	}

	options, err := agent.ParseOptions(f.options)
	if err != nil {
		return agent.Config{}, err
	}
	if c, err = agent.ConfigFromOptions(c, options); err != nil {
		return agent.Config{}, err
	}

	if !c.Type.Online() {
		return agent.Config{}, fmt.Errorf("%w: %v agents do not learn "+
			"online", agent.ErrInvalidConfig, c.Type)
	}

	c.Seed = g.seed
	if c.NumTraining == 0 {
		c.NumTraining = f.episodes
	}
	return c, nil
}

// newLearner creates the Q-learning agent described by c
func newLearner(grid *gridworld.GridWorld, c agent.Config,
	logger *slog.Logger) (*qlearning.QLearning[gridworld.Cell, gridworld.Action], error) {
	opts := []qlearning.Option{qlearning.WithLogger(logger)}

	switch {
	case c.Type == agent.QLearning:
		return qlearning.NewTabular(grid.PossibleActions, c, opts...)

	case c.Extractor == tileCoding:
		rows, cols := grid.Dims()
		extractor, err := features.NewTileCoding[gridworld.Cell, gridworld.Action](
			r1.Interval{Min: 0, Max: float64(rows)},
			r1.Interval{Min: 0, Max: float64(cols)},
			[][]int{{rows, cols}, {(rows + 1) / 2, (cols + 1) / 2}},
			c.Seed,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", agent.ErrInvalidConfig, err)
		}
		return qlearning.New(grid.PossibleActions,
			qlearning.NewLinear[gridworld.Cell, gridworld.Action](extractor),
			c, opts...)

	default:
		return qlearning.NewApproximate(grid.PossibleActions, c, opts...)
	}
}

// serveMetrics serves the metrics of reg on ln. The returned function
// shuts the server down, waiting for open requests until ctx is done.
func serveMetrics(ctx context.Context, ln net.Listener, reg *prometheus.Registry,
	logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux}

	go func() {
		logger.Info("serving metrics", "addr", ln.Addr().String())
		err := server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not shut down metrics server", "error", err)
		}
	}
}

func runQLearn(cmd *cobra.Command, g *globals, f *qLearnFlags) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	grid, err := g.gridWorld()
	if err != nil {
		return err
	}
	c, err := qLearnConfig(cmd, g, f)
	if err != nil {
		return err
	}

	q, err := newLearner(grid, c, logger)
	if err != nil {
		return err
	}

	var ender environment.Ender[gridworld.Cell]
	if f.maxSteps > 0 {
		ender = environment.NewStepLimit[gridworld.Cell](f.maxSteps)
	}
	env := environment.NewModel[gridworld.Cell, gridworld.Action](grid,
		environment.NewSingleStart(grid.Start()), ender, c.Gamma, g.seed+1)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	returns := trackers.NewReturn(f.returns)
	opts := []experiment.Option{
		experiment.WithLogger(logger),
		experiment.WithTrackers(returns),
	}
	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics, err := trackers.NewMetrics(reg, string(c.Type))
		if err != nil {
			return err
		}
		opts = append(opts, experiment.WithTrackers(metrics))

		ln, err := net.Listen("tcp", f.metricsAddr)
		if err != nil {
			return fmt.Errorf("could not serve metrics: %w", err)
		}
		shutdown := serveMetrics(context.Background(), ln, reg, logger)
		defer shutdown()
	}
	if f.progress && progressbar.IsTerminal(os.Stderr) {
		bar := progressbar.NewManualProgressBar(os.Stderr, 50, f.episodes)
		defer bar.Close()
		opts = append(opts, experiment.WithProgress(bar))
	}

	logger.Info("running q-learning", "grid", g.grid, "agent", c.Type,
		"episodes", f.episodes, "config", c.String())

	e := experiment.NewOnline[gridworld.Cell, gridworld.Action](env, q,
		f.episodes, opts...)
	summary, err := e.Run(ctx)
	if err != nil {
		return err
	}

	if f.returns != "" {
		if err := returns.Save(); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%v\n\n", summary)
	fmt.Fprintf(out, "VALUES AFTER %d EPISODES\n%v\n", summary.Episodes,
		grid.FormatValues(q.Value))
	fmt.Fprintf(out, "POLICY\n%v", grid.FormatPolicy(q.Policy))

	if f.render != "" {
		if err := grid.SavePNG(f.render, q.Value, q.Policy); err != nil {
			return fmt.Errorf("could not render: %w", err)
		}
		logger.Info("saved rendering", "path", f.render)
	}
	return nil
}
