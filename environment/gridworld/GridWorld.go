// Package gridworld implements noisy 2D gridworld MDPs.
//
// A gridworld is a grid of cells. Some cells are walls, one is the
// start cell, and some are exit cells which carry a reward. In an exit
// cell the only legal action is Exit, which moves the agent to the
// absorbing Terminal state and pays the cell's reward. In every other
// cell the agent may move North, West, South, or East. With
// probability 1 - noise the agent moves as intended, otherwise it
// slips to one of the two perpendicular directions. Moves into walls or
// off the grid leave the agent where it is. Every non-exit transition
// pays the living reward.
package gridworld

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/mdplearn/environment"
)

// ErrInvalidLayout is returned when a gridworld layout cannot be parsed
var ErrInvalidLayout = errors.New("invalid gridworld layout")

const (
	DefaultNoise        float64 = 0.2
	DefaultLivingReward float64 = 0.0
)

// probability is the range of valid noise values
var probability = r1.Interval{Min: 0, Max: 1}

// Cell is a state of a GridWorld, the (row, column) position of the
// agent. Row 0 is the top of the grid.
type Cell struct {
	Row, Col int
}

// Terminal is the absorbing state reached after taking the Exit action
var Terminal = Cell{-1, -1}

// Coordinates returns the row and column of the cell
func (c Cell) Coordinates() (row, col int) {
	return c.Row, c.Col
}

func (c Cell) String() string {
	if c == Terminal {
		return "TERMINAL"
	}
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// Action is an action in a GridWorld
type Action int

const (
	North Action = iota
	West
	South
	East
	Exit
)

func (a Action) String() string {
	switch a {
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	case East:
		return "east"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// moves are the actions available in non-exit cells, in the order
// planners break ties
var moves = []Action{North, West, South, East}

var exitOnly = []Action{Exit}

type kind int

const (
	empty kind = iota
	wall
	exit
)

type square struct {
	kind   kind
	reward float64
}

// GridWorld is an environment.MDP over Cells and Actions. A GridWorld
// is immutable once created.
type GridWorld struct {
	r, c         int
	grid         [][]square
	start        Cell
	noise        float64
	livingReward float64
}

// Option configures a GridWorld
type Option func(*GridWorld)

// WithNoise sets the probability with which a move slips to a
// perpendicular direction
func WithNoise(noise float64) Option {
	return func(g *GridWorld) {
		g.noise = noise
	}
}

// WithLivingReward sets the reward paid on every non-exit transition
func WithLivingReward(r float64) Option {
	return func(g *GridWorld) {
		g.livingReward = r
	}
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// Start returns the start cell
func (g *GridWorld) Start() Cell {
	return g.start
}

// Noise returns the probability that a move slips
func (g *GridWorld) Noise() float64 {
	return g.noise
}

// LivingReward returns the reward paid on each non-exit transition
func (g *GridWorld) LivingReward() float64 {
	return g.livingReward
}

// IsWall returns whether the cell at (row, col) is a wall. Positions
// outside the grid count as walls.
func (g *GridWorld) IsWall(row, col int) bool {
	if row < 0 || row >= g.r || col < 0 || col >= g.c {
		return true
	}
	return g.grid[row][col].kind == wall
}

// ExitReward returns the reward of the exit cell at s and whether s is
// an exit cell at all
func (g *GridWorld) ExitReward(s Cell) (float64, bool) {
	if s == Terminal || g.IsWall(s.Row, s.Col) {
		return 0, false
	}
	sq := g.grid[s.Row][s.Col]
	return sq.reward, sq.kind == exit
}

// States returns Terminal followed by every non-wall cell in row-major
// order
func (g *GridWorld) States() []Cell {
	states := []Cell{Terminal}
	for row := 0; row < g.r; row++ {
		for col := 0; col < g.c; col++ {
			if !g.IsWall(row, col) {
				states = append(states, Cell{row, col})
			}
		}
	}
	return states
}

// PossibleActions returns the legal actions in state s
func (g *GridWorld) PossibleActions(s Cell) []Action {
	if s == Terminal || g.IsWall(s.Row, s.Col) {
		return nil
	}
	if _, ok := g.ExitReward(s); ok {
		return exitOnly
	}
	return moves
}

// TransitionStatesAndProbs returns the successors of taking action a in
// state s. Successors reached in more than one way are merged.
func (g *GridWorld) TransitionStatesAndProbs(s Cell,
	a Action) []environment.Outcome[Cell] {
	if s == Terminal {
		return nil
	}
	if _, ok := g.ExitReward(s); ok {
		return []environment.Outcome[Cell]{{State: Terminal, Prob: 1}}
	}

	outcomes := make([]environment.Outcome[Cell], 0, 3)
	add := func(next Cell, prob float64) {
		if prob == 0 {
			return
		}
		for i := range outcomes {
			if outcomes[i].State == next {
				outcomes[i].Prob += prob
				return
			}
		}
		outcomes = append(outcomes, environment.Outcome[Cell]{
			State: next,
			Prob:  prob,
		})
	}

	left, right := perpendicular(a)
	add(g.move(s, a), 1-g.noise)
	add(g.move(s, left), g.noise/2)
	add(g.move(s, right), g.noise/2)

	return outcomes
}

// Reward returns the exit reward when leaving an exit cell, and the
// living reward otherwise
func (g *GridWorld) Reward(s Cell, _ Action, _ Cell) float64 {
	if s == Terminal {
		return 0
	}
	if r, ok := g.ExitReward(s); ok {
		return r
	}
	return g.livingReward
}

// move returns the cell reached by moving deterministically in
// direction a from s
func (g *GridWorld) move(s Cell, a Action) Cell {
	next := s
	switch a {
	case North:
		next.Row--
	case South:
		next.Row++
	case West:
		next.Col--
	case East:
		next.Col++
	}

	if g.IsWall(next.Row, next.Col) {
		return s
	}
	return next
}

// perpendicular returns the two directions at right angles to a
func perpendicular(a Action) (Action, Action) {
	switch a {
	case North, South:
		return West, East
	default:
		return North, South
	}
}
