package datrie

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/exp/mmap"
)

// TextResult is a string key with its value.
type TextResult struct {
	Key  string
	Data Data
}

// Entry is a key and value to store with Concat.
type Entry struct {
	Key  string
	Data Data
}

// TextEnumFunc is called once per key during enumeration of a TextTrie.
type TextEnumFunc = func(key string, data Data) EnumerationResult

// TextTrie is a Trie keyed by strings. Characters are translated to trie
// symbols through an AlphaMap, so keys may only use characters the map
// covers.
type TextTrie struct {
	trie *Trie
	am   *AlphaMap

	// set when the alphabet changed since NAME.sbm was read
	amDirty bool
}

// NewText creates an empty trie over the alphabet of am.
func NewText(am *AlphaMap, opts ...Option) *TextTrie {
	return &TextTrie{trie: New(opts...), am: am.Clone()}
}

// OpenText opens a file-backed trie like Open, reading its alphabet from
// NAME.sbm, which must exist.
func OpenText(dir, name string, mode IOMode, opts ...Option) (*TextTrie, error) {
	o := newOptions(opts)
	am, err := ReadAlphaMapFile(dir, name, o.logger)
	if err != nil {
		return nil, err
	}
	t, err := Open(dir, name, mode, opts...)
	if err != nil {
		return nil, err
	}
	return &TextTrie{trie: t, am: am}, nil
}

// Trie returns the underlying symbol-keyed trie.
func (tt *TextTrie) Trie() *Trie {
	return tt.trie
}

// AlphaMap returns the alphabet of the trie.
func (tt *TextTrie) AlphaMap() *AlphaMap {
	return tt.am
}

// Store associates data with key, replacing any previous value.
func (tt *TextTrie) Store(key string, data Data) error {
	k, err := tt.am.ToAlphabet(key)
	if err != nil {
		return err
	}
	return tt.trie.Store(k, data)
}

// StoreIfAbsent stores key only when it is not yet present.
func (tt *TextTrie) StoreIfAbsent(key string, data Data) error {
	k, err := tt.am.ToAlphabet(key)
	if err != nil {
		return err
	}
	return tt.trie.StoreIfAbsent(k, data)
}

// Concat stores every entry, stopping at the first failure.
func (tt *TextTrie) Concat(entries []Entry) error {
	for _, e := range entries {
		if err := tt.Store(e.Key, e.Data); err != nil {
			return fmt.Errorf("store %q: %w", e.Key, err)
		}
	}
	return nil
}

// Retrieve returns the value stored for key.
func (tt *TextTrie) Retrieve(key string) (Data, bool) {
	k, err := tt.am.ToAlphabet(key)
	if err != nil {
		return DataError, false
	}
	return tt.trie.Retrieve(k)
}

// HasKey reports whether key is stored.
func (tt *TextTrie) HasKey(key string) bool {
	_, ok := tt.Retrieve(key)
	return ok
}

// Delete removes key, returning ErrNotFound when it is absent.
func (tt *TextTrie) Delete(key string) error {
	k, err := tt.am.ToAlphabet(key)
	if err != nil {
		return ErrNotFound
	}
	return tt.trie.Delete(k)
}

// Enumerate calls fn for each key. It returns false when fn stopped early.
func (tt *TextTrie) Enumerate(fn TextEnumFunc) bool {
	return tt.trie.Enumerate(func(key []TrieChar, data Data) EnumerationResult {
		return fn(tt.am.FromAlphabet(key), data)
	})
}

// All returns an iterator over every key and value.
func (tt *TextTrie) All() iter.Seq2[string, Data] {
	return func(yield func(string, Data) bool) {
		for key, data := range tt.trie.All() {
			if !yield(tt.am.FromAlphabet(key), data) {
				return
			}
		}
	}
}

// NumKeys counts the stored keys.
func (tt *TextTrie) NumKeys() int {
	return tt.trie.NumKeys()
}

func (tt *TextTrie) results(found []FindResult) []TextResult {
	if found == nil {
		return nil
	}
	results := make([]TextResult, len(found))
	for i, r := range found {
		results[i] = TextResult{Key: tt.am.FromAlphabet(r.Key), Data: r.Data}
	}
	return results
}

// Children returns every key starting with prefix, including prefix itself
// when it is a key, or nil when no key does.
func (tt *TextTrie) Children(prefix string) []string {
	found := tt.ChildrenWithValues(prefix)
	if found == nil {
		return nil
	}
	keys := make([]string, len(found))
	for i, r := range found {
		keys[i] = r.Key
	}
	return keys
}

// ChildrenWithValues is Children with the value of each key.
func (tt *TextTrie) ChildrenWithValues(prefix string) []TextResult {
	k, err := tt.am.ToAlphabet(prefix)
	if err != nil {
		return nil
	}
	return tt.results(tt.trie.Children(k))
}

// HasChildren reports whether any key starts with prefix.
func (tt *TextTrie) HasChildren(prefix string) bool {
	k, err := tt.am.ToAlphabet(prefix)
	if err != nil {
		return false
	}
	return tt.trie.HasChildren(k)
}

// WalkToTerminal returns the shortest stored key that is a prefix of key.
func (tt *TextTrie) WalkToTerminal(key string) (TextResult, bool) {
	s := tt.Root()
	for _, c := range key {
		if !s.Walk(c) {
			break
		}
		if data, ok := s.Value(); ok {
			return TextResult{Key: s.FullState(), Data: data}, true
		}
	}
	return TextResult{}, false
}

// FindAllPrefixesOf returns every stored key that is a prefix of input,
// shortest first.
func (tt *TextTrie) FindAllPrefixesOf(input string) []TextResult {
	var results []TextResult
	s := tt.Root()
	if data, ok := s.Value(); ok {
		results = append(results, TextResult{Data: data})
	}
	for _, c := range input {
		if !s.Walk(c) {
			break
		}
		if data, ok := s.Value(); ok {
			results = append(results, TextResult{Key: s.FullState(), Data: data})
		}
	}
	return results
}

// Root returns a new cursor at the root of the trie.
func (tt *TextTrie) Root() *TextState {
	return &TextState{state: tt.trie.Root(), am: tt.am}
}

// IsDirty reports whether the trie or its alphabet changed since they were
// loaded or saved.
func (tt *TextTrie) IsDirty() bool {
	return tt.amDirty || tt.trie.IsDirty()
}

// Save writes changes back to the files the trie was opened from,
// including NAME.sbm when the alphabet was replaced.
func (tt *TextTrie) Save() error {
	if err := tt.saveAlphaMap(); err != nil {
		return err
	}
	return tt.trie.Save()
}

func (tt *TextTrie) saveAlphaMap() error {
	if !tt.amDirty {
		return nil
	}
	files := tt.trie.files
	if files == nil {
		return fmt.Errorf("%w: trie has no backing files", ErrIO)
	}
	if files.mode&ModeWrite == 0 {
		return ErrReadOnly
	}
	if err := WriteAlphaMapFile(files.dir, files.name, tt.am); err != nil {
		return err
	}
	tt.amDirty = false
	return nil
}

// Close saves a writable trie and releases its files.
func (tt *TextTrie) Close() error {
	var err error
	if files := tt.trie.files; files != nil && files.mode&ModeWrite != 0 {
		err = tt.saveAlphaMap()
	}
	return errors.Join(err, tt.trie.Close())
}

// SerializedSize is the number of bytes WriteTo will produce.
func (tt *TextTrie) SerializedSize() int64 {
	return tt.am.binarySize() + tt.trie.SerializedSize()
}

// WriteTo writes the alphabet map followed by the trie.
func (tt *TextTrie) WriteTo(w io.Writer) (int64, error) {
	fw := newFieldWriter(w)
	tt.am.writeBinary(fw)
	tt.trie.da.writeTo(fw)
	tt.trie.tail.writeTo(fw)
	return fw.Count(), fw.Err()
}

// ReadText loads a TextTrie written by WriteTo, starting at offset in f.
func ReadText(f io.ReaderAt, offset int64, opts ...Option) (*TextTrie, error) {
	return readText(newFieldSeeker(f, offset), newOptions(opts))
}

func readText(r *fieldSeeker, o options) (*TextTrie, error) {
	am, err := readAlphaMapBinary(r)
	if err != nil {
		return nil, err
	}
	t, err := readTrie(r, o)
	if err != nil {
		return nil, err
	}
	return &TextTrie{trie: t, am: am}, nil
}

// MarshalBinary returns the alphabet map and the trie in the stream format.
func (tt *TextTrie) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(int(tt.SerializedSize()))
	if _, err := tt.WriteTo(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// UnmarshalBinary replaces the contents of tt with the stream in data. A
// trie opened with OpenText keeps its files; the next Save writes the new
// contents, and the new alphabet when it differs.
func (tt *TextTrie) UnmarshalBinary(data []byte) error {
	o := newOptions(nil)
	if tt.trie != nil && tt.trie.logger != nil {
		o = tt.trie.opts
	}
	loaded, err := readText(newFieldSeeker(bytes.NewReader(data), 0), o)
	if err != nil {
		return err
	}

	if tt.trie == nil || tt.trie.files == nil {
		tt.trie, tt.am = loaded.trie, loaded.am
		return nil
	}
	tt.trie.adopt(loaded.trie)
	if tt.am == nil || !slices.Equal(tt.am.ranges, loaded.am.ranges) {
		tt.amDirty = true
	}
	tt.am = loaded.am
	return nil
}

// SaveFile writes the trie and its alphabet to a single file.
func (tt *TextTrie) SaveFile(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	n, err := tt.WriteTo(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %v", ErrIO, cerr)
	}
	return n, err
}

// LoadTextFile reads a file written by TextTrie.SaveFile.
func LoadTextFile(filename string, opts ...Option) (*TextTrie, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	tt, err := ReadText(f, 0, opts...)
	if err != nil {
		return nil, err
	}
	tt.trie.logger.Debug("loaded text trie", zap.String("file", filename), zap.Int("bytes", f.Len()))
	return tt, nil
}

// TextState is a State that walks characters and remembers the path it
// took.
type TextState struct {
	state *State
	am    *AlphaMap
	path  []rune
}

// Clone returns an independent copy of s.
func (s *TextState) Clone() *TextState {
	return &TextState{
		state: s.state.Clone(),
		am:    s.am,
		path:  append([]rune(nil), s.path...),
	}
}

// Rewind moves s back to the root.
func (s *TextState) Rewind() {
	s.state.Rewind()
	s.path = s.path[:0]
}

// Walk follows c in place. On failure s is left unchanged.
func (s *TextState) Walk(c rune) bool {
	tc := s.am.CharToAlphabet(c)
	if tc == Term || tc == AlphabetError {
		return false
	}
	if !s.state.Walk(tc) {
		return false
	}
	s.path = append(s.path, c)
	return true
}

// WalkClone returns a copy of s that has walked c, or nil when c cannot
// be walked.
func (s *TextState) WalkClone(c rune) *TextState {
	next := s.Clone()
	if !next.Walk(c) {
		return nil
	}
	return next
}

// IsWalkable reports whether Walk(c) would succeed.
func (s *TextState) IsWalkable(c rune) bool {
	tc := s.am.CharToAlphabet(c)
	if tc == Term || tc == AlphabetError {
		return false
	}
	return s.state.IsWalkable(tc)
}

// LastChar returns the most recently walked character.
func (s *TextState) LastChar() (rune, bool) {
	if len(s.path) == 0 {
		return 0, false
	}
	return s.path[len(s.path)-1], true
}

// FullState returns every character walked since the root.
func (s *TextState) FullState() string {
	return string(s.path)
}

// IsTerminal reports whether a key ends here.
func (s *TextState) IsTerminal() bool {
	return s.state.IsTerminal()
}

// IsLeaf reports whether a key ends here and no longer key continues it.
func (s *TextState) IsLeaf() bool {
	return s.state.IsLeaf()
}

// Value returns the value of the key ending here.
func (s *TextState) Value() (Data, bool) {
	return s.state.Value()
}

// State returns the underlying symbol cursor.
func (s *TextState) State() *State {
	return s.state
}
