package gridworld

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samuelfneumann/mdplearn/utils/floatutils"
)

// Layouts are written one row per line with whitespace separated
// tokens:
//
//	_      an empty cell
//	#      a wall
//	S      the start cell, which is otherwise empty
//	<num>  an exit cell paying reward <num>
const (
	BookGrid = `
_ _ _ 1
_ # _ -1
S _ _ _`

	BridgeGrid = `
#  -100 -100 -100 -100 -100 #
1  S    _    _    _    _    10
#  -100 -100 -100 -100 -100 #`

	CliffGrid = `
_    _    _    _    _
S    _    _    _    10
-100 -100 -100 -100 -100`

	DiscountGrid = `
_   _   _   _   _
_   #   _   _   _
_   #   1   #   10
S   _   _   _   _
-10 -10 -10 -10 -10`

	MazeGrid = `
_ _ _ 1
# # _ #
_ # _ _
_ # # _
S _ _ _`
)

var layouts = map[string]string{
	"book":     BookGrid,
	"bridge":   BridgeGrid,
	"cliff":    CliffGrid,
	"discount": DiscountGrid,
	"maze":     MazeGrid,
}

// Names returns the names of the built-in layouts in sorted order
func Names() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Named returns a GridWorld with the built-in layout called name
func Named(name string, opts ...Option) (*GridWorld, error) {
	layout, ok := layouts[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: no built-in layout %q (have %v)",
			ErrInvalidLayout, name, Names())
	}
	return Parse(layout, opts...)
}

// Parse returns a new GridWorld described by layout. The layout must be
// rectangular and contain exactly one start cell.
func Parse(layout string, opts ...Option) (*GridWorld, error) {
	g := &GridWorld{
		noise:        DefaultNoise,
		livingReward: DefaultLivingReward,
		start:        Terminal,
	}
	for _, opt := range opts {
		opt(g)
	}
	if !floatutils.Contains(probability, g.noise) {
		return nil, fmt.Errorf("%w: noise %v must be in [0, 1]",
			ErrInvalidLayout, g.noise)
	}

	for _, line := range strings.Split(layout, "\n") {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if g.c != 0 && len(tokens) != g.c {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidLayout, g.r, len(tokens), g.c)
		}
		g.c = len(tokens)

		row := make([]square, g.c)
		for col, token := range tokens {
			switch token {
			case "_":
			case "#":
				row[col].kind = wall
			case "S":
				if g.start != Terminal {
					return nil, fmt.Errorf("%w: more than one start cell",
						ErrInvalidLayout)
				}
				g.start = Cell{g.r, col}
			default:
				reward, err := strconv.ParseFloat(token, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: unknown cell %q at (%d, %d)",
						ErrInvalidLayout, token, g.r, col)
				}
				row[col] = square{kind: exit, reward: reward}
			}
		}
		g.grid = append(g.grid, row)
		g.r++
	}

	if g.r == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}
	if g.start == Terminal {
		return nil, fmt.Errorf("%w: no start cell", ErrInvalidLayout)
	}
	return g, nil
}

// FormatValues returns a text rendering of value at each cell of the
// grid
func (g *GridWorld) FormatValues(value func(Cell) float64) string {
	return g.format(func(s Cell) string {
		return fmt.Sprintf("%8.2f", value(s))
	})
}

// FormatPolicy returns a text rendering of the action policy selects
// at each cell of the grid
func (g *GridWorld) FormatPolicy(policy func(Cell) (Action, bool)) string {
	return g.format(func(s Cell) string {
		a, ok := policy(s)
		if !ok {
			return fmt.Sprintf("%8s", "-")
		}
		return fmt.Sprintf("%8s", a)
	})
}

func (g *GridWorld) format(cell func(Cell) string) string {
	var b strings.Builder
	for row := 0; row < g.r; row++ {
		for col := 0; col < g.c; col++ {
			if g.IsWall(row, col) {
				fmt.Fprintf(&b, "%8s", "#")
			} else {
				b.WriteString(cell(Cell{row, col}))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (g *GridWorld) String() string {
	str := "GridWorld | Start: %v  |  Bounds: (%d, %d)  |  Noise: %.2f  |  " +
		"Living Reward: %.2f"
	return fmt.Sprintf(str, g.start, g.r, g.c, g.noise, g.livingReward)
}
