// Package table implements lookup tables of float64 values in which
// every key that has never been written reads as 0.
//
// Tables back every value representation in this module: the
// state-action values of tabular Q-learning, the feature weights of
// linear Q-learning, and the memoized backups of value iteration.
package table

// Table maps keys to float64 values. The zero value is an empty Table
// ready to use. Looking up a key which was never set returns 0 rather
// than failing, and keys are never removed once set.
type Table[K comparable] struct {
	values map[K]float64
}

// New returns a new, empty Table
func New[K comparable]() *Table[K] {
	return &Table[K]{values: make(map[K]float64)}
}

// NewSized returns a new, empty Table with room for size keys before
// it needs to grow
func NewSized[K comparable](size int) *Table[K] {
	return &Table[K]{values: make(map[K]float64, size)}
}

// At returns the value stored at key, or 0 if key was never set
func (t *Table[K]) At(key K) float64 {
	return t.values[key]
}

// Lookup returns the value stored at key and whether key was ever set
func (t *Table[K]) Lookup(key K) (float64, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Has returns whether key was ever set
func (t *Table[K]) Has(key K) bool {
	_, ok := t.values[key]
	return ok
}

// Set stores value at key
func (t *Table[K]) Set(key K, value float64) {
	if t.values == nil {
		t.values = make(map[K]float64)
	}
	t.values[key] = value
}

// Add adds delta to the value stored at key. Keys which were never set
// start from 0.
func (t *Table[K]) Add(key K, delta float64) {
	t.Set(key, t.At(key)+delta)
}

// Len returns the number of keys which have been set
func (t *Table[K]) Len() int {
	return len(t.values)
}

// Keys returns every key which has been set, in no particular order
func (t *Table[K]) Keys() []K {
	keys := make([]K, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	return keys
}

// Range calls f on each key and value in the Table until f returns
// false. Iteration order is unspecified.
func (t *Table[K]) Range(f func(key K, value float64) bool) {
	for k, v := range t.values {
		if !f(k, v) {
			return
		}
	}
}

// Clone returns a deep copy of the Table
func (t *Table[K]) Clone() *Table[K] {
	c := NewSized[K](len(t.values))
	for k, v := range t.values {
		c.values[k] = v
	}
	return c
}
