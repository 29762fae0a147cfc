package datrie

// Iterator pulls the keys below a State one at a time, in the order of
// Trie.Enumerate. Keys are reported relative to the starting state.
//
//	it := datrie.NewIterator(state)
//	for it.Next() {
//		fmt.Println(it.Key(), it.Data())
//	}
type Iterator struct {
	root    State
	walker  *daWalker
	started bool
	done    bool
	key     []TrieChar
	data    Data
}

// NewIterator starts an iterator at a copy of s.
func NewIterator(s *State) *Iterator {
	return &Iterator{root: *s, data: DataError}
}

// Next advances to the next key and reports whether there is one.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	t := it.root.trie
	if !it.started {
		it.started = true
		if it.root.isSuffix {
			// a single key remains, the rest of the suffix
			it.done = true
			suffix, ok := t.tail.getSuffix(it.root.index)
			if !ok || it.root.suffixIdx > len(suffix) {
				return false
			}
			it.key = append([]TrieChar(nil), suffix[it.root.suffixIdx:]...)
			it.data = t.tail.getData(it.root.index)
			return true
		}
		it.walker = t.da.newWalker(it.root.index)
	}

	sep, prefix, ok := it.walker.next()
	if !ok {
		it.done = true
		it.key = nil
		it.data = DataError
		return false
	}
	id := t.da.getTailIndex(sep)
	it.key = t.joinKey(prefix, id)
	it.data = t.tail.getData(id)
	return true
}

// Key returns the current key, relative to the starting state.
func (it *Iterator) Key() []TrieChar {
	return it.key
}

// Data returns the value of the current key.
func (it *Iterator) Data() Data {
	return it.data
}
