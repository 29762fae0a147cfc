package datrie

// TrieChar is a symbol of the internal trie alphabet.
type TrieChar = byte

// Index addresses a double-array cell or a tail block.
type Index = int32

// Data is the value stored with a key.
type Data = int32

// AlphaChar is a character of the external alphabet, mapped to TrieChar
// by an AlphaMap.
type AlphaChar = rune

const (
	// Term terminates every key inside the trie. Keys may not contain it.
	Term TrieChar = 0

	// CharMax is the largest TrieChar.
	CharMax TrieChar = 0xff

	// IndexError is never a valid cell or block.
	IndexError Index = 0

	// IndexMax bounds the double-array and the tail.
	IndexMax Index = 0x7fffffff

	// DataError means "no value". Keys added without a value carry it.
	DataError Data = -1

	// CharError is returned for symbols that map to no character.
	CharError AlphaChar = -1

	// AlphabetError is returned for characters outside every range of an
	// AlphaMap.
	AlphabetError TrieChar = CharMax

	// MaxKeyLength is the longest key the tail can persist.
	MaxKeyLength = 0x7fff
)

// FindResult is a key found by a prefix query, with its value.
type FindResult struct {
	Key  []TrieChar
	Data Data
}

// EnumFunc is called once per key during enumeration.
type EnumFunc = func(key []TrieChar, data Data) EnumerationResult

// EnumerationResult is returned by the enumeration function to indicate
// whether enumeration should go on.
type EnumerationResult = int

const (
	// Continue enumerating keys
	Continue EnumerationResult = iota

	// Stop will immediately stop enumerating keys
	Stop
)
