package datrie

// State is a cursor that walks a Trie one symbol at a time. It starts in
// the double-array and switches to suffix mode once it reaches a separator,
// after which it walks the suffix in the tail.
//
// A State borrows its Trie and becomes meaningless once the trie is
// modified.
type State struct {
	trie      *Trie
	index     Index
	suffixIdx int
	isSuffix  bool
}

// Clone returns an independent copy of s.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// CopyFrom makes s a copy of src.
func (s *State) CopyFrom(src *State) {
	*s = *src
}

// Rewind moves s back to the root.
func (s *State) Rewind() {
	s.index = daRoot
	s.suffixIdx = 0
	s.isSuffix = false
}

// Walk follows symbol c. On failure s is left unchanged.
func (s *State) Walk(c TrieChar) bool {
	if s.isSuffix {
		return s.trie.tail.walkChar(s.index, &s.suffixIdx, c)
	}

	da := s.trie.da
	if !da.walk(&s.index, c) {
		return false
	}
	if da.isSeparate(s.index) {
		s.index = da.getTailIndex(s.index)
		s.suffixIdx = 0
		s.isSuffix = true
	}
	return true
}

// IsWalkable reports whether Walk(c) would succeed, without moving.
func (s *State) IsWalkable(c TrieChar) bool {
	if s.isSuffix {
		return s.trie.tail.isWalkableChar(s.index, s.suffixIdx, c)
	}
	return s.trie.da.isWalkable(s.index, c)
}

// IsTerminal reports whether a key ends at s.
func (s *State) IsTerminal() bool {
	return s.IsWalkable(Term)
}

// IsLeaf reports whether a key ends at s and no longer key continues it.
func (s *State) IsLeaf() bool {
	return s.isSuffix && s.IsTerminal()
}

// IsSuffix reports whether s is walking a tail suffix.
func (s *State) IsSuffix() bool {
	return s.isSuffix
}

// Data returns the value of the key s is walking, or DataError while s is
// still in the double-array.
func (s *State) Data() Data {
	if !s.isSuffix {
		return DataError
	}
	return s.trie.tail.getData(s.index)
}

// Value returns the value of the key ending at s.
func (s *State) Value() (Data, bool) {
	c := s.Clone()
	if !c.Walk(Term) {
		return DataError, false
	}
	return c.Data(), true
}
