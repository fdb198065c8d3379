package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/mdplearn/environment/gridworld"
	"github.com/samuelfneumann/mdplearn/internal/logging"
)

// globals holds the flags shared by every command
type globals struct {
	seed         uint64
	logLevel     string
	noise        float64
	livingReward float64
	grid         string
}

// logger returns the logger configured by the --log-level flag
func (g *globals) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// gridWorld returns the gridworld configured by the global flags
func (g *globals) gridWorld() (*gridworld.GridWorld, error) {
	return gridworld.Named(g.grid, gridworld.WithNoise(g.noise),
		gridworld.WithLivingReward(g.livingReward))
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "mdplearn",
		Short: "mdplearn solves and learns gridworld MDPs",
		Long: `mdplearn computes values and policies of gridworld MDPs, either
exactly with value iteration over the known model, or online with
tabular or approximate Q-learning from sampled transitions.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.Uint64Var(&g.seed, "seed", 1, "Seed for all random number generation")
	flags.StringVar(&g.logLevel, "log-level", "info",
		"Log level: debug, info, warn, or error")
	flags.Float64Var(&g.noise, "noise", gridworld.DefaultNoise,
		"Probability that a move slips to a perpendicular direction")
	flags.Float64Var(&g.livingReward, "living-reward",
		gridworld.DefaultLivingReward, "Reward for every non-exit transition")
	flags.StringVar(&g.grid, "grid", "book",
		fmt.Sprintf("Gridworld layout, one of %v", gridworld.Names()))

	rootCmd.AddCommand(newValueIterationCmd(g), newQLearnCmd(g),
		newGridsCmd())
	return rootCmd
}

func newGridsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grids",
		Short: "Print the built-in gridworld layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range gridworld.Names() {
				g, err := gridworld.Named(name)
				if err != nil {
					return err
				}
				exits := func(s gridworld.Cell) float64 {
					r, _ := g.ExitReward(s)
					return r
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n%v\n%v\n", name, g,
					g.FormatValues(exits))
			}
			return nil
		},
	}
}
