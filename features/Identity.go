package features

import "fmt"

type pair[S, A comparable] struct {
	state  S
	action A
}

// Identity extracts a single indicator feature per state-action pair.
// Linear approximation with Identity features is equivalent to a
// table of action values.
//
// Each distinct pair is numbered the first time it is seen, so pairs
// which print the same are still given different features. The zero
// value is ready to use.
type Identity[S, A comparable] struct {
	ids map[pair[S, A]]int
}

// NewIdentity returns a new Identity extractor
func NewIdentity[S, A comparable]() *Identity[S, A] {
	return &Identity[S, A]{ids: make(map[pair[S, A]]int)}
}

// Features implements the Extractor interface
func (i *Identity[S, A]) Features(state S, action A) Features {
	return Features{i.Name(state, action): 1.0}
}

// Name returns the name of the feature of state and action. Names are
// unique per pair and stable for the lifetime of the extractor.
func (i *Identity[S, A]) Name(state S, action A) string {
	if i.ids == nil {
		i.ids = make(map[pair[S, A]]int)
	}

	key := pair[S, A]{state, action}
	id, ok := i.ids[key]
	if !ok {
		id = len(i.ids)
		i.ids[key] = id
	}
	return fmt.Sprintf("id#%d (%v, %v)", id, state, action)
}

// Len returns the number of distinct pairs seen
func (i *Identity[S, A]) Len() int {
	return len(i.ids)
}
