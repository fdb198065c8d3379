package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/mdplearn/utils/matutils/tilecoder"
)

// TileCoding extracts tile coded features of the coordinates of
// states, one set of tiles per action. Nearby states share tiles, so
// values generalize to neighbouring cells.
type TileCoding[S, A comparable] struct {
	coder *tilecoder.TileCoder
}

// NewTileCoding returns a new TileCoding extractor which tile codes
// the row and column of states within bounds, using one tiling per
// element of bins. See tilecoder.New for the meaning of bins. An error
// is returned if S does not implement Locator or the tilings do not
// cover two dimensions.
func NewTileCoding[S, A comparable](rows, cols r1.Interval, bins [][]int,
	seed uint64) (*TileCoding[S, A], error) {
	var state S
	if _, ok := any(state).(Locator); !ok {
		return nil, fmt.Errorf("newTileCoding: %w: states of type %T "+
			"have no coordinates", ErrIncompatibleState, state)
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("newTileCoding: no tilings given")
	}
	for _, b := range bins {
		if len(b) != 2 || b[0] < 1 || b[1] < 1 {
			return nil, fmt.Errorf("newTileCoding: tiling %v must have a "+
				"positive number of tiles along rows and columns", b)
		}
	}

	coder := tilecoder.New([]r1.Interval{rows, cols}, bins, seed, true)
	return &TileCoding[S, A]{coder: coder}, nil
}

// Features implements the Extractor interface
func (t *TileCoding[S, A]) Features(state S, action A) Features {
	row, col := any(state).(Locator).Coordinates()
	v := mat.NewVecDense(2, []float64{float64(row), float64(col)})

	indices := t.coder.EncodeIndices(v)
	f := make(Features, len(indices))
	for _, index := range indices {
		f[fmt.Sprintf("tile=%d|%v", index, action)] = 1.0
	}
	return f
}

// String returns a description of the tilings used
func (t *TileCoding[S, A]) String() string {
	return t.coder.String()
}
