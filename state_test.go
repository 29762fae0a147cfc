package datrie_test

import (
	"testing"

	"github.com/milden6/datrie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rocketTrie(t *testing.T) *datrie.Trie {
	return createTrie(t, []entry{
		{"rocket", 1},
		{"rock", 2},
		{"frederico", 3},
	})
}

func walkString(s *datrie.State, str string) bool {
	for i := 0; i < len(str); i++ {
		if !s.Walk(str[i]) {
			return false
		}
	}
	return true
}

func TestStateWalk(t *testing.T) {
	trie := rocketTrie(t)
	s := trie.Root()

	assert.False(t, s.IsSuffix())
	assert.Equal(t, datrie.DataError, s.Data())
	assert.True(t, s.IsWalkable('r'))
	assert.False(t, s.IsWalkable('q'))
	assert.False(t, s.Walk('q'))

	require.True(t, walkString(s, "roc"))
	assert.False(t, s.IsTerminal())
	_, ok := s.Value()
	assert.False(t, ok)

	require.True(t, s.Walk('k'))
	assert.True(t, s.IsTerminal())
	assert.False(t, s.IsLeaf())
	data, ok := s.Value()
	require.True(t, ok)
	assert.Equal(t, datrie.Data(2), data)

	require.True(t, s.Walk('e'))
	assert.True(t, s.IsSuffix())
	assert.False(t, s.IsTerminal())
	assert.Equal(t, datrie.Data(1), s.Data())

	require.True(t, s.Walk('t'))
	assert.True(t, s.IsLeaf())
	data, ok = s.Value()
	require.True(t, ok)
	assert.Equal(t, datrie.Data(1), data)

	assert.False(t, s.Walk('x'))
	assert.True(t, s.IsLeaf(), "failed walk leaves the state alone")
}

func TestStateClone(t *testing.T) {
	trie := rocketTrie(t)
	s := trie.Root()
	require.True(t, walkString(s, "rock"))

	c := s.Clone()
	require.True(t, walkString(c, "et"))
	assert.True(t, c.IsLeaf())
	assert.False(t, s.IsSuffix())
	assert.True(t, s.IsWalkable('e'))

	s.CopyFrom(c)
	assert.True(t, s.IsLeaf())

	s.Rewind()
	assert.False(t, s.IsSuffix())
	assert.True(t, s.IsWalkable('f'))
	assert.True(t, walkString(s, "frederico"))
	assert.True(t, s.IsLeaf())
}

func TestRootIsNew(t *testing.T) {
	trie := rocketTrie(t)
	a, b := trie.Root(), trie.Root()
	assert.NotSame(t, a, b)

	require.True(t, a.Walk('r'))
	assert.True(t, b.IsWalkable('f'))
}

func iterate(s *datrie.State) map[string]datrie.Data {
	got := map[string]datrie.Data{}
	it := datrie.NewIterator(s)
	for it.Next() {
		got[string(it.Key())] = it.Data()
	}
	return got
}

func TestIterator(t *testing.T) {
	trie := rocketTrie(t)

	assert.Equal(t, map[string]datrie.Data{
		"rocket":    1,
		"rock":      2,
		"frederico": 3,
	}, iterate(trie.Root()))

	s := trie.Root()
	require.True(t, walkString(s, "roc"))
	assert.Equal(t, map[string]datrie.Data{"k": 2, "ket": 1}, iterate(s))

	// in the tail only one key is left
	s = trie.Root()
	require.True(t, walkString(s, "fr"))
	require.True(t, s.IsSuffix())
	assert.Equal(t, map[string]datrie.Data{"ederico": 3}, iterate(s))

	require.True(t, walkString(s, "ederico"))
	assert.Equal(t, map[string]datrie.Data{"": 3}, iterate(s))
}

func TestIteratorOrder(t *testing.T) {
	trie := createTrie(t, []entry{{"b", 1}, {"ab", 2}, {"a", 3}, {"abc", 4}})

	var keys []string
	it := datrie.NewIterator(trie.Root())
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"a", "ab", "abc", "b"}, keys)
	assert.False(t, it.Next())
	assert.Nil(t, it.Key())
	assert.Equal(t, datrie.DataError, it.Data())
}

func TestIteratorEmpty(t *testing.T) {
	it := datrie.NewIterator(datrie.New().Root())
	assert.False(t, it.Next())
}

func TestIteratorDoesNotMoveState(t *testing.T) {
	trie := rocketTrie(t)
	s := trie.Root()
	require.True(t, s.Walk('r'))

	it := datrie.NewIterator(s)
	n := 0
	for it.Next() {
		n++
	}
	assert.Equal(t, 2, n)
	assert.True(t, s.IsWalkable('o'))
}
