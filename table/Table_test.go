package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsetKeysReadZero(t *testing.T) {
	var tab Table[string]

	assert.Equal(t, 0.0, tab.At("missing"))
	v, ok := tab.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 0, tab.Len())
}

func TestSetAddAndLen(t *testing.T) {
	tab := New[[2]int]()

	tab.Add([2]int{0, 1}, 1.5)
	tab.Add([2]int{0, 1}, 0.5)
	tab.Set([2]int{2, 3}, -4)

	assert.Equal(t, 2.0, tab.At([2]int{0, 1}))
	assert.Equal(t, -4.0, tab.At([2]int{2, 3}))
	assert.True(t, tab.Has([2]int{2, 3}))
	assert.Equal(t, 2, tab.Len())
	assert.ElementsMatch(t, [][2]int{{0, 1}, {2, 3}}, tab.Keys())
}

func TestSettingZeroKeepsKey(t *testing.T) {
	tab := New[string]()
	tab.Set("a", 0)

	require.True(t, tab.Has("a"))
	assert.Equal(t, 1, tab.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	tab := New[string]()
	tab.Set("a", 1)

	c := tab.Clone()
	c.Set("a", 2)
	c.Set("b", 3)

	assert.Equal(t, 1.0, tab.At("a"))
	assert.False(t, tab.Has("b"))
	assert.Equal(t, 2.0, c.At("a"))
}

func TestRangeStopsEarly(t *testing.T) {
	tab := New[int]()
	for i := 0; i < 10; i++ {
		tab.Set(i, float64(i))
	}

	visited := 0
	tab.Range(func(int, float64) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}
