package datrie

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	alphaMapSignature = int32(-0x26032604) // 0xD9FCD9FC
	maxAlphabetSize   = int(CharMax) - 1
)

// Range is an inclusive span of characters.
type Range struct {
	Begin AlphaChar
	End   AlphaChar
}

func (r Range) size() int {
	return int(r.End-r.Begin) + 1
}

// AlphaMap maps the characters of an external alphabet onto the dense
// symbols 1..254 of the trie alphabet. Character 0 always maps to Term.
// Ranges are kept in ascending order and never overlap.
type AlphaMap struct {
	ranges []Range
	size   int
}

// NewAlphaMap returns an empty map.
func NewAlphaMap() *AlphaMap {
	return &AlphaMap{}
}

// ASCII returns a map covering 7-bit ASCII.
func ASCII() *AlphaMap {
	am := NewAlphaMap()
	_ = am.AddRange(0, 0x7f)
	return am
}

// FromRanges builds a map from the given ranges, which must be ordered.
func FromRanges(ranges ...Range) (*AlphaMap, error) {
	am := NewAlphaMap()
	for _, r := range ranges {
		if err := am.AddRange(r.Begin, r.End); err != nil {
			return nil, err
		}
	}
	return am, nil
}

// AddRange appends the characters begin..end to the alphabet. The range
// must lie strictly after every range already added.
func (am *AlphaMap) AddRange(begin, end AlphaChar) error {
	if begin < 0 || begin > end {
		return fmt.Errorf("%w: [%#04x,%#04x]", ErrInvalidRange, begin, end)
	}
	if n := len(am.ranges); n > 0 && begin <= am.ranges[n-1].End {
		return fmt.Errorf("%w: [%#04x,%#04x] overlaps or precedes [%#04x,%#04x]",
			ErrInvalidRange, begin, end, am.ranges[n-1].Begin, am.ranges[n-1].End)
	}
	r := Range{begin, end}
	if int64(am.size)+int64(end)-int64(begin)+1 > int64(maxAlphabetSize) {
		return fmt.Errorf("%w: alphabet would exceed %d symbols", ErrInvalidRange, maxAlphabetSize)
	}
	am.ranges = append(am.ranges, r)
	am.size += r.size()
	return nil
}

// Ranges returns a copy of the ranges in ascending order.
func (am *AlphaMap) Ranges() []Range {
	return append([]Range(nil), am.ranges...)
}

// Size is the number of characters covered by the map.
func (am *AlphaMap) Size() int {
	return am.size
}

// Clone returns an independent copy.
func (am *AlphaMap) Clone() *AlphaMap {
	return &AlphaMap{ranges: am.Ranges(), size: am.size}
}

// CharToAlphabet returns the trie symbol for c, or AlphabetError when c is
// outside every range.
func (am *AlphaMap) CharToAlphabet(c AlphaChar) TrieChar {
	if c == 0 {
		return Term
	}
	alphaBegin := 1
	for _, r := range am.ranges {
		if r.Begin <= c && c <= r.End {
			return TrieChar(alphaBegin + int(c-r.Begin))
		}
		alphaBegin += r.size()
	}
	return AlphabetError
}

// AlphabetToChar returns the character for trie symbol tc, or CharError
// when tc lies past the alphabet.
func (am *AlphaMap) AlphabetToChar(tc TrieChar) AlphaChar {
	if tc == Term {
		return 0
	}
	alphaBegin := 1
	for _, r := range am.ranges {
		if int(tc) < alphaBegin+r.size() {
			return r.Begin + AlphaChar(int(tc)-alphaBegin)
		}
		alphaBegin += r.size()
	}
	return CharError
}

// ToAlphabet converts s to trie symbols. Characters that are unmapped or
// map to Term make the key invalid.
func (am *AlphaMap) ToAlphabet(s string) ([]TrieChar, error) {
	key := make([]TrieChar, 0, len(s))
	for _, c := range s {
		tc := am.CharToAlphabet(c)
		if tc == Term || tc == AlphabetError {
			return nil, fmt.Errorf("%w: %q is outside the alphabet", ErrInvalidKey, c)
		}
		key = append(key, tc)
	}
	return key, nil
}

// FromAlphabet converts trie symbols back to a string, stopping at Term.
func (am *AlphaMap) FromAlphabet(key []TrieChar) string {
	var sb strings.Builder
	for _, tc := range key {
		if tc == Term {
			break
		}
		if c := am.AlphabetToChar(tc); c != CharError {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// WriteText writes the map in the line format read by ReadAlphaMap.
func (am *AlphaMap) WriteText(w io.Writer) error {
	for _, r := range am.ranges {
		if _, err := fmt.Fprintf(w, "[0x%04x,0x%04x]\n", r.Begin, r.End); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	return nil
}

// ReadAlphaMap parses one "[begin,end]" range of hexadecimal character
// codes per line. Blank lines, comments and lines that do not parse are
// ignored. Inverted ranges are skipped with a warning.
func ReadAlphaMap(r io.Reader, logger *zap.Logger) (*AlphaMap, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	am := NewAlphaMap()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		rng, ok := parseRangeLine(scanner.Text())
		if !ok {
			continue
		}
		if rng.Begin > rng.End {
			logger.Warn("skipping inverted alphabet range",
				zap.Int("line", line),
				zap.String("range", strings.TrimSpace(scanner.Text())))
			continue
		}
		if err := am.AddRange(rng.Begin, rng.End); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return am, nil
}

// ParseRange parses a single "[begin,end]" range.
func ParseRange(s string) (Range, error) {
	r, ok := parseRangeLine(s)
	if !ok {
		return Range{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidRange, s)
	}
	return r, nil
}

func parseRangeLine(s string) (Range, bool) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return Range{}, false
	}
	// text after the closing bracket is ignored
	inner, _, ok := strings.Cut(s[1:], "]")
	if !ok {
		return Range{}, false
	}
	first, last, ok := strings.Cut(inner, ",")
	if !ok {
		return Range{}, false
	}
	begin, err := parseHexChar(first)
	if err != nil {
		return Range{}, false
	}
	end, err := parseHexChar(last)
	if err != nil {
		return Range{}, false
	}
	return Range{begin, end}, true
}

func parseHexChar(s string) (AlphaChar, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return AlphaChar(v), nil
}

// writeBinary emits the map block: signature, a reserved field, the range
// count and each range as a pair of int32.
func (am *AlphaMap) writeBinary(w *fieldWriter) {
	w.WriteInt32(alphaMapSignature)
	w.WriteInt32(0)
	w.WriteInt32(int32(len(am.ranges)))
	for _, r := range am.ranges {
		w.WriteInt32(int32(r.Begin))
		w.WriteInt32(int32(r.End))
	}
}

func (am *AlphaMap) binarySize() int64 {
	return int64(3*4 + len(am.ranges)*8)
}

func readAlphaMapBinary(r *fieldSeeker) (*AlphaMap, error) {
	if sig := r.ReadInt32(); r.Err() != nil {
		return nil, r.Err()
	} else if sig != alphaMapSignature {
		return nil, fmt.Errorf("%w: bad alpha map signature %#x", ErrCorruptFormat, uint32(sig))
	}
	r.Skip(4)
	n := r.ReadInt32()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if n < 0 || int(n) > maxAlphabetSize {
		return nil, fmt.Errorf("%w: %d alpha map ranges", ErrCorruptFormat, n)
	}
	am := NewAlphaMap()
	for i := int32(0); i < n; i++ {
		begin := r.ReadInt32()
		end := r.ReadInt32()
		if r.Err() != nil {
			return nil, r.Err()
		}
		if err := am.AddRange(begin, end); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
		}
	}
	return am, nil
}
