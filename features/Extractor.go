// Package features implements feature extractors, which map
// state-action pairs to named numeric features for linear function
// approximation
package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownExtractor is returned when an extractor is requested
	// by a name which is not registered
	ErrUnknownExtractor = errors.New("unknown feature extractor")

	// ErrIncompatibleState is returned when an extractor cannot
	// compute features for the state type it is requested for
	ErrIncompatibleState = errors.New("extractor incompatible with states")
)

// Features maps feature names to feature values. Missing features
// have value 0.
type Features map[string]float64

// Names returns the feature names in sorted order
func (f Features) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extractor computes the features of a state-action pair. Features
// must return the same features every time it is given the same
// arguments.
type Extractor[S, A comparable] interface {
	Features(state S, action A) Features
}

// ExtractorFunc adapts a function to an Extractor
type ExtractorFunc[S, A comparable] func(state S, action A) Features

// Features implements the Extractor interface
func (f ExtractorFunc[S, A]) Features(state S, action A) Features {
	return f(state, action)
}

// Names returns the names of the registered extractors
func Names() []string {
	return []string{"coordinate", "identity"}
}

// Lookup returns the extractor registered under name for states of
// type S and actions of type A. Matching is case insensitive and the
// suffix "extractor" may be included.
func Lookup[S, A comparable](name string) (Extractor[S, A], error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, "extractor")

	switch key {
	case "identity":
		return NewIdentity[S, A](), nil

	case "coordinate":
		return NewCoordinate[S, A]()
	}
	return nil, fmt.Errorf("lookup: %w %q (have %v)", ErrUnknownExtractor,
		name, Names())
}
