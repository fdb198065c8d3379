package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

type cell struct{ row, col int }

func (c cell) Coordinates() (int, int) { return c.row, c.col }

func TestLookup(t *testing.T) {
	e, err := Lookup[int, string]("identity")
	require.NoError(t, err)
	assert.Equal(t, Features{"id#0 (3, up)": 1}, e.Features(3, "up"))

	_, err = Lookup[int, string]("IdentityExtractor")
	assert.NoError(t, err)

	_, err = Lookup[cell, string]("coordinate")
	assert.NoError(t, err)

	_, err = Lookup[int, string]("simple")
	assert.ErrorIs(t, err, ErrUnknownExtractor)

	_, err = Lookup[int, string]("coordinate")
	assert.ErrorIs(t, err, ErrIncompatibleState)
}

func TestIdentityDistinguishesPairs(t *testing.T) {
	e := NewIdentity[cell, string]()
	seen := make(map[string]bool)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for _, a := range []string{"north", "south"} {
				f := e.Features(cell{r, c}, a)
				require.Len(t, f, 1)
				name := f.Names()[0]
				assert.False(t, seen[name], name)
				seen[name] = true
			}
		}
	}
}

func TestIdentityDistinguishesPairsPrintedAlike(t *testing.T) {
	var e Identity[string, string]

	f := e.Features("a, b", "c")
	g := e.Features("a", "b, c")
	assert.NotEqual(t, f.Names(), g.Names())
	assert.Equal(t, f, e.Features("a, b", "c"))
	assert.Equal(t, 2, e.Len())

	// Pointers are distinct states even when they point at equal values
	p := NewIdentity[*cell, string]()
	x, y := &cell{1, 1}, &cell{1, 1}
	assert.NotEqual(t, p.Features(x, "north").Names(),
		p.Features(y, "north").Names())
}

func TestCoordinate(t *testing.T) {
	e, err := NewCoordinate[cell, string]()
	require.NoError(t, err)

	f := e.Features(cell{1, 2}, "east")
	assert.Equal(t, []string{
		"action=east", "col=2", "id#0 ({1 2}, east)", "row=1",
	}, f.Names())

	// Rows are shared between states
	g := e.Features(cell{1, 0}, "west")
	assert.Contains(t, g, "row=1")
}

func TestTileCoding(t *testing.T) {
	rows := r1.Interval{Min: 0, Max: 3}
	cols := r1.Interval{Min: 0, Max: 4}

	e, err := NewTileCoding[cell, string](rows, cols, [][]int{{2, 2}, {3, 4}}, 1)
	require.NoError(t, err)

	f := e.Features(cell{1, 1}, "north")
	assert.Len(t, f, 3) // bias + one tile per tiling
	for name, v := range f {
		assert.Contains(t, name, "|north")
		assert.Equal(t, 1.0, v)
	}

	// Actions do not share features
	g := e.Features(cell{1, 1}, "south")
	for name := range g {
		assert.NotContains(t, f, name)
	}

	assert.Equal(t, f, e.Features(cell{1, 1}, "north"))

	_, err = NewTileCoding[int, string](rows, cols, [][]int{{2, 2}}, 1)
	assert.ErrorIs(t, err, ErrIncompatibleState)

	_, err = NewTileCoding[cell, string](rows, cols, [][]int{{2}}, 1)
	assert.Error(t, err)
}

func TestExtractorFunc(t *testing.T) {
	var e Extractor[int, int] = ExtractorFunc[int, int](
		func(s, a int) Features { return Features{"sum": float64(s + a)} },
	)
	assert.Equal(t, 5.0, e.Features(2, 3)["sum"])
}
