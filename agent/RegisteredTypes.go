package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Type represents a specific type of agent. Config's with this type
// describe agents of the corresponding type.
type Type string

const (
	// Planners
	ValueIteration Type = "valueiteration"

	// Online learners
	QLearning            Type = "qlearning"
	ApproximateQLearning Type = "approximate"
)

// registeredTypes maps accepted spellings of each Type to the Type
var registeredTypes = map[string]Type{
	"valueiteration":        ValueIteration,
	"value-iteration":       ValueIteration,
	"qlearning":             QLearning,
	"q-learning":            QLearning,
	"tabular":               QLearning,
	"approximate":           ApproximateQLearning,
	"approximateqlearning":  ApproximateQLearning,
	"approximate-qlearning": ApproximateQLearning,
}

// ParseType returns the Type named by name. Matching is case
// insensitive.
func ParseType(name string) (Type, error) {
	t, ok := registeredTypes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: unknown agent type %q (have %v)",
			ErrInvalidConfig, name, Types())
	}
	return t, nil
}

// Types returns the registered agent Types in sorted order
func Types() []Type {
	seen := make(map[Type]bool)
	var types []Type
	for _, t := range registeredTypes {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Online returns whether agents of type t learn from sampled
// transitions rather than from a model
func (t Type) Online() bool {
	return t == QLearning || t == ApproximateQLearning
}

// UnmarshalText implements encoding.TextUnmarshaler so that a Type can
// be decoded from configuration files by any of its spellings
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
