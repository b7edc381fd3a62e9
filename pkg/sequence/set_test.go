package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct{ name string }

func TestOrderedSet_IdentityAndOrder(t *testing.T) {
	a, b, c := &node{"x"}, &node{"x"}, &node{"y"}
	s := NewOrderedSet[*node]()

	require.True(t, s.Add(a))
	require.True(t, s.Add(b), "equal contents, different pointers")
	require.False(t, s.Add(a))
	require.True(t, s.Add(c))

	assert.Equal(t, []*node{a, b, c}, s.Values())
	assert.True(t, s.Has(b))
	assert.Equal(t, 3, s.Len())
}

func TestOrderedSet_RemoveKeepsOrder(t *testing.T) {
	s := NewOrderedSet(1, 2, 3, 4)

	require.True(t, s.Remove(2))
	require.False(t, s.Remove(2))
	assert.Equal(t, []int{1, 3, 4}, s.Values())
	assert.True(t, s.Has(4))

	require.True(t, s.Add(2))
	assert.Equal(t, []int{1, 3, 4, 2}, s.Values())
}

func TestOrderedSet_AllIsSnapshot(t *testing.T) {
	s := NewOrderedSet("a", "b", "c")
	var seen []string
	for v := range s.All() {
		seen = append(seen, v)
		s.Remove(v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Zero(t, s.Len())
}

func TestOrderedSet_ZeroValueUsable(t *testing.T) {
	var s OrderedSet[int]
	assert.False(t, s.Has(1))
	assert.True(t, s.Add(1))
	assert.True(t, s.Has(1))
}
