package datrie

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// Trie maps keys, given as sequences of TrieChar symbols, to Data values.
// Branching parts of the keys live in a double-array; the unshared rest of
// each key is kept as a suffix in the tail.
//
// A Trie is not safe for concurrent use.
type Trie struct {
	da     *darray
	tail   *tail
	opts   options
	logger *zap.Logger

	// set when the trie is backed by files opened with Open
	files *trieFiles
}

// New creates an empty trie.
func New(opts ...Option) *Trie {
	o := newOptions(opts)
	return &Trie{
		da:     newDArray(o),
		tail:   newTail(o),
		opts:   o,
		logger: o.logger,
	}
}

func checkKey(key []TrieChar) error {
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: %d symbols exceeds %d", ErrInvalidKey, len(key), MaxKeyLength)
	}
	for i, c := range key {
		if c == Term {
			return fmt.Errorf("%w: terminator at position %d", ErrInvalidKey, i)
		}
	}
	return nil
}

// symbolAt reads key[i], treating the end of the key as Term.
func symbolAt(key []TrieChar, i int) TrieChar {
	if i < len(key) {
		return key[i]
	}
	return Term
}

// walkBranches follows key through the double-array. It returns the state
// reached, how many symbols were consumed and whether that state is a
// separator.
func (t *Trie) walkBranches(key []TrieChar) (Index, int, bool) {
	s := daRoot
	i := 0
	for !t.da.isSeparate(s) {
		c := symbolAt(key, i)
		if !t.da.walk(&s, c) {
			return s, i, false
		}
		if c == Term {
			break
		}
		i++
	}
	return s, i, true
}

// tailMatches reports whether the suffix of block id is exactly rest.
func (t *Trie) tailMatches(id Index, rest []TrieChar) bool {
	str := append(rest[:len(rest):len(rest)], Term)
	offset := 0
	return t.tail.walkStr(id, &offset, str) == len(str)
}

// Retrieve returns the value stored for key.
func (t *Trie) Retrieve(key []TrieChar) (Data, bool) {
	s, i, ok := t.walkBranches(key)
	if !ok {
		return DataError, false
	}
	id := t.da.getTailIndex(s)
	if !t.tailMatches(id, key[i:]) {
		return DataError, false
	}
	return t.tail.getData(id), true
}

// HasKey reports whether key is stored.
func (t *Trie) HasKey(key []TrieChar) bool {
	_, ok := t.Retrieve(key)
	return ok
}

// Store associates data with key, replacing any previous value. On
// ErrAllocationExhausted the trie is left as it was.
func (t *Trie) Store(key []TrieChar, data Data) error {
	return t.store(key, data, true)
}

// StoreIfAbsent stores key only when it is not yet present, returning
// ErrKeyPresent otherwise.
func (t *Trie) StoreIfAbsent(key []TrieChar, data Data) error {
	return t.store(key, data, false)
}

func (t *Trie) store(key []TrieChar, data Data, overwrite bool) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s, i, ok := t.walkBranches(key)
	if !ok {
		return t.branchInBranch(s, key[i:], data)
	}

	id := t.da.getTailIndex(s)
	if !t.tailMatches(id, key[i:]) {
		return t.branchInTail(s, key[i:], data)
	}

	if !overwrite {
		return ErrKeyPresent
	}
	t.tail.setData(id, data)
	return nil
}

// branchInBranch hangs suffix off sep as a new separator with its own tail
// block.
func (t *Trie) branchInBranch(sep Index, suffix []TrieChar, data Data) error {
	c := symbolAt(suffix, 0)
	newDA, err := t.da.insertBranch(sep, c)
	if err != nil {
		return err
	}
	if c != Term {
		suffix = suffix[1:]
	}

	newTail := t.tail.addSuffix(suffix)
	t.tail.setData(newTail, data)
	t.da.setTailIndex(newDA, newTail)
	return nil
}

// branchInTail splits the suffix held by sep at the first symbol where it
// differs from suffix. The common part moves into the double-array.
func (t *Trie) branchInTail(sep Index, suffix []TrieChar, data Data) error {
	oldTail := t.da.getTailIndex(sep)
	stored, ok := t.tail.getSuffix(oldTail)
	if !ok {
		return fmt.Errorf("%w: separator %d points at missing tail block %d", ErrCorruptFormat, sep, oldTail)
	}
	oldSuffix := append([]TrieChar(nil), stored...)

	s := sep
	j := 0
	for ; symbolAt(oldSuffix, j) == symbolAt(suffix, j); j++ {
		next, err := t.da.insertBranch(s, symbolAt(oldSuffix, j))
		if err != nil {
			t.rollbackBranch(sep, s, oldTail)
			return err
		}
		s = next
	}

	oc := symbolAt(oldSuffix, j)
	oldDA, err := t.da.insertBranch(s, oc)
	if err != nil {
		t.rollbackBranch(sep, s, oldTail)
		return err
	}

	rest := oldSuffix[j:]
	if oc != Term {
		rest = oldSuffix[j+1:]
	}
	t.tail.setSuffix(oldTail, rest)
	t.da.setTailIndex(oldDA, oldTail)

	if err := t.branchInBranch(s, suffix[j:], data); err != nil {
		t.da.setBase(oldDA, IndexError)
		t.rollbackBranch(sep, oldDA, oldTail)
		t.tail.setSuffix(oldTail, oldSuffix)
		return err
	}
	return nil
}

// rollbackBranch frees the states created below sep up to s and turns sep
// back into a separator for oldTail.
func (t *Trie) rollbackBranch(sep, s, oldTail Index) {
	t.logger.Debug("rolling back branch split",
		zap.Int32("separator", sep),
		zap.Int32("state", s))
	t.da.pruneUpto(sep, s)
	t.da.setTailIndex(sep, oldTail)
}

// Delete removes key, returning ErrNotFound when it is absent.
func (t *Trie) Delete(key []TrieChar) error {
	s, i, ok := t.walkBranches(key)
	if !ok {
		return ErrNotFound
	}
	id := t.da.getTailIndex(s)
	if !t.tailMatches(id, key[i:]) {
		return ErrNotFound
	}

	t.tail.delete(id)
	t.da.setBase(s, IndexError)
	t.da.prune(s)
	return nil
}

// Enumerate calls fn for each key in ascending symbol order. The key slice
// is owned by fn. Enumerate returns false when fn stopped it early. The trie
// must not be modified during enumeration.
func (t *Trie) Enumerate(fn EnumFunc) bool {
	return t.da.enumerate(func(prefix []TrieChar, sep Index) bool {
		id := t.da.getTailIndex(sep)
		return fn(t.joinKey(prefix, id), t.tail.getData(id)) != Stop
	})
}

// joinKey builds the key ending at a separator from the branch symbols and
// the tail suffix.
func (t *Trie) joinKey(prefix []TrieChar, id Index) []TrieChar {
	suffix, _ := t.tail.getSuffix(id)
	if n := len(prefix); n > 0 && prefix[n-1] == Term {
		prefix = prefix[:n-1]
	}
	key := make([]TrieChar, 0, len(prefix)+len(suffix))
	key = append(key, prefix...)
	return append(key, suffix...)
}

// All returns an iterator over every key and value, in the order of
// Enumerate.
func (t *Trie) All() iter.Seq2[[]TrieChar, Data] {
	return func(yield func([]TrieChar, Data) bool) {
		t.Enumerate(func(key []TrieChar, data Data) EnumerationResult {
			if !yield(key, data) {
				return Stop
			}
			return Continue
		})
	}
}

// NumKeys counts the stored keys.
func (t *Trie) NumKeys() int {
	n := 0
	t.da.enumerate(func([]TrieChar, Index) bool {
		n++
		return true
	})
	return n
}

// FindAllPrefixesOf returns every stored key that is a prefix of input,
// shortest first.
func (t *Trie) FindAllPrefixesOf(input []TrieChar) []FindResult {
	var results []FindResult
	s := t.Root()
	for pos := 0; ; pos++ {
		if data, ok := s.Value(); ok {
			results = append(results, FindResult{
				Key:  append([]TrieChar(nil), input[:pos]...),
				Data: data,
			})
		}
		if pos == len(input) || !s.Walk(input[pos]) {
			return results
		}
	}
}

// Children returns every key starting with prefix, the prefix itself
// included when it is a key. It returns nil when nothing is stored below
// prefix.
func (t *Trie) Children(prefix []TrieChar) []FindResult {
	s := t.Root()
	for _, c := range prefix {
		if !s.Walk(c) {
			return nil
		}
	}

	var results []FindResult
	it := NewIterator(s)
	for it.Next() {
		key := make([]TrieChar, 0, len(prefix)+len(it.Key()))
		key = append(key, prefix...)
		results = append(results, FindResult{Key: append(key, it.Key()...), Data: it.Data()})
	}
	return results
}

// HasChildren reports whether any key starts with prefix.
func (t *Trie) HasChildren(prefix []TrieChar) bool {
	s := t.Root()
	for _, c := range prefix {
		if !s.Walk(c) {
			return false
		}
	}
	return NewIterator(s).Next()
}

// WalkToTerminal follows key and returns the first stored key met on the
// way, which is the shortest stored prefix of key.
func (t *Trie) WalkToTerminal(key []TrieChar) (FindResult, bool) {
	s := t.Root()
	for i, c := range key {
		if !s.Walk(c) {
			break
		}
		if data, ok := s.Value(); ok {
			return FindResult{Key: append([]TrieChar(nil), key[:i+1]...), Data: data}, true
		}
	}
	return FindResult{}, false
}

// Root returns a new cursor at the root of the trie.
func (t *Trie) Root() *State {
	return &State{trie: t, index: daRoot}
}

// IsDirty reports whether the trie changed since it was loaded or saved.
func (t *Trie) IsDirty() bool {
	return t.da.dirty || t.tail.dirty
}

// CheckIntegrity verifies the internal invariants of the double-array.
func (t *Trie) CheckIntegrity() error {
	return t.da.checkIntegrity()
}
