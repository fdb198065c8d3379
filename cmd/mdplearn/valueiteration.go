package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/mdplearn/agent"
	"github.com/samuelfneumann/mdplearn/agent/valueiteration"
	"github.com/samuelfneumann/mdplearn/environment/gridworld"
)

type valueIterationFlags struct {
	iterations int
	discount   float64
	config     string
	render     string
}

func newValueIterationCmd(g *globals) *cobra.Command {
	f := &valueIterationFlags{}
	defaults := agent.DefaultConfig(agent.ValueIteration)

	cmd := &cobra.Command{
		Use:     "valueiteration",
		Aliases: []string{"vi"},
		Short:   "Solve a gridworld with value iteration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValueIteration(cmd, g, f)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&f.iterations, "iterations", "i", defaults.Iterations,
		"Number of Bellman backups")
	flags.Float64VarP(&f.discount, "discount", "d", defaults.Gamma,
		"Discount factor")
	flags.StringVar(&f.config, "config", "",
		"YAML or JSON agent configuration; flags override its values")
	flags.StringVar(&f.render, "render", "",
		"Save an image of the values and policy to this PNG file")

	return cmd
}

func runValueIteration(cmd *cobra.Command, g *globals,
	f *valueIterationFlags) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	grid, err := g.gridWorld()
	if err != nil {
		return err
	}

	c := agent.DefaultConfig(agent.ValueIteration)
	if f.config != "" {
		if c, err = agent.LoadConfig(f.config); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("iterations") || f.config == "" {
		c.Iterations = f.iterations
	}
	if cmd.Flags().Changed("discount") || f.config == "" {
		c.Gamma = f.discount
	}

	logger.Info("running value iteration", "grid", g.grid,
		"iterations", c.Iterations, "discount", c.Gamma, "noise", g.noise)

	v, err := valueiteration.New[gridworld.Cell, gridworld.Action](grid, c,
		valueiteration.WithLogger(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "VALUES AFTER %d ITERATIONS\n%v\n", c.Iterations,
		grid.FormatValues(v.Value))
	fmt.Fprintf(out, "POLICY\n%v", grid.FormatPolicy(v.Policy))

	if f.render != "" {
		if err := grid.SavePNG(f.render, v.Value, v.Policy); err != nil {
			return fmt.Errorf("could not render: %w", err)
		}
		logger.Info("saved rendering", "path", f.render)
	}
	return nil
}
