package features

import "fmt"

// Locator is implemented by states which lie on a grid
type Locator interface {
	Coordinates() (row, col int)
}

// Coordinate extracts an indicator of the state-action pair, together
// with indicators of the row, the column, and the action. Features are
// shared between states in the same row or column, so values
// generalize along the grid.
type Coordinate[S, A comparable] struct {
	identity *Identity[S, A]
}

// NewCoordinate returns a new Coordinate extractor. An error is
// returned if S does not implement Locator.
func NewCoordinate[S, A comparable]() (*Coordinate[S, A], error) {
	var state S
	if _, ok := any(state).(Locator); !ok {
		return nil, fmt.Errorf("newCoordinate: %w: "+
			"states of type %T have no coordinates", ErrIncompatibleState,
			state)
	}
	return &Coordinate[S, A]{identity: NewIdentity[S, A]()}, nil
}

// Features implements the Extractor interface
func (c *Coordinate[S, A]) Features(state S, action A) Features {
	row, col := any(state).(Locator).Coordinates()
	return Features{
		c.identity.Name(state, action):   1.0,
		fmt.Sprintf("row=%d", row):       1.0,
		fmt.Sprintf("col=%d", col):       1.0,
		fmt.Sprintf("action=%v", action): 1.0,
	}
}
