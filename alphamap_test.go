package datrie

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAlphaMapAddRange(t *testing.T) {
	am := NewAlphaMap()
	require.NoError(t, am.AddRange('0', '9'))
	require.NoError(t, am.AddRange('a', 'z'))
	assert.Equal(t, 36, am.Size())
	assert.Equal(t, []Range{{'0', '9'}, {'a', 'z'}}, am.Ranges())

	assert.ErrorIs(t, am.AddRange(-1, 5), ErrInvalidRange)
	assert.ErrorIs(t, am.AddRange('z'+5, 'z'+1), ErrInvalidRange)
	assert.ErrorIs(t, am.AddRange('x', 0x7f), ErrInvalidRange, "overlap")
	assert.ErrorIs(t, am.AddRange('A', 'Z'), ErrInvalidRange, "out of order")
	assert.Equal(t, 36, am.Size())
}

func TestAlphaMapSizeLimit(t *testing.T) {
	am := NewAlphaMap()
	require.NoError(t, am.AddRange(1, 254))
	assert.Equal(t, 254, am.Size())
	assert.ErrorIs(t, am.AddRange(300, 300), ErrInvalidRange)

	_, err := FromRanges(Range{0x100, 0x1ff}, Range{0x300, 0x3ff})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestAlphaMapMapping(t *testing.T) {
	am, err := FromRanges(Range{'0', '9'}, Range{'a', 'z'})
	require.NoError(t, err)

	assert.Equal(t, Term, am.CharToAlphabet(0))
	assert.Equal(t, TrieChar(1), am.CharToAlphabet('0'))
	assert.Equal(t, TrieChar(10), am.CharToAlphabet('9'))
	assert.Equal(t, TrieChar(11), am.CharToAlphabet('a'))
	assert.Equal(t, TrieChar(36), am.CharToAlphabet('z'))
	assert.Equal(t, AlphabetError, am.CharToAlphabet('A'))

	assert.Equal(t, AlphaChar(0), am.AlphabetToChar(Term))
	assert.Equal(t, AlphaChar('0'), am.AlphabetToChar(1))
	assert.Equal(t, AlphaChar('a'), am.AlphabetToChar(11))
	assert.Equal(t, AlphaChar('z'), am.AlphabetToChar(36))
	assert.Equal(t, CharError, am.AlphabetToChar(37))

	for c := AlphaChar('a'); c <= 'z'; c++ {
		assert.Equal(t, c, am.AlphabetToChar(am.CharToAlphabet(c)))
	}
}

func TestAlphaMapUnicode(t *testing.T) {
	am, err := FromRanges(Range{'a', 'z'}, Range{0x430, 0x44f})
	require.NoError(t, err)

	key, err := am.ToAlphabet("мир")
	require.NoError(t, err)
	assert.Len(t, key, 3)
	assert.Equal(t, "мир", am.FromAlphabet(key))
}

func TestAlphaMapToAlphabet(t *testing.T) {
	am := ASCII()

	key, err := am.ToAlphabet("hi")
	require.NoError(t, err)
	assert.Equal(t, []TrieChar{1 + 'h', 1 + 'i'}, key)
	assert.Equal(t, "hi", am.FromAlphabet(key))
	assert.Equal(t, "hi", am.FromAlphabet(append(key, Term, 1+'x')))

	empty, err := am.ToAlphabet("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = am.ToAlphabet("café")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = am.ToAlphabet("a\x00b")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAlphaMapClone(t *testing.T) {
	am := ASCII()
	clone := am.Clone()
	require.NoError(t, clone.AddRange(0x100, 0x10f))

	assert.Equal(t, 128, am.Size())
	assert.Equal(t, 144, clone.Size())
}

func TestReadAlphaMap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	am, err := ReadAlphaMap(strings.NewReader(`# digits and letters
[0x0030,0x0039]

this line is ignored
[0x0050,0x0040]   # inverted
[0x61,0x7A]
`), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, []Range{{'0', '9'}, {'a', 'z'}}, am.Ranges())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "skipping inverted alphabet range", logs.All()[0].Message)
	assert.Equal(t, int64(5), logs.All()[0].ContextMap()["line"])
}

func TestReadAlphaMapOutOfOrder(t *testing.T) {
	_, err := ReadAlphaMap(strings.NewReader("[0x61,0x7a]\n[0x30,0x39]\n"), nil)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange(" [0x0041, 0x005a] ")
	require.NoError(t, err)
	assert.Equal(t, Range{'A', 'Z'}, r)

	r, err = ParseRange("[0x61,0x7a] latin small letters")
	require.NoError(t, err)
	assert.Equal(t, Range{'a', 'z'}, r)

	for _, s := range []string{"", "0x41,0x5a", "[0x41]", "[zz,0x5a]", "[0x41,0x5a", "latin [0x41,0x5a]"} {
		_, err := ParseRange(s)
		assert.ErrorIs(t, err, ErrInvalidRange, s)
	}
}

func TestReadAlphaMapTrailingText(t *testing.T) {
	am, err := ReadAlphaMap(strings.NewReader("[0x30,0x39] digits\n[0x61,0x7a]latin # letters\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []Range{{'0', '9'}, {'a', 'z'}}, am.Ranges())
}

func TestAlphaMapWriteText(t *testing.T) {
	am, err := FromRanges(Range{'0', '9'}, Range{0x430, 0x44f})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, am.WriteText(&sb))
	assert.Equal(t, "[0x0030,0x0039]\n[0x0430,0x044f]\n", sb.String())

	read, err := ReadAlphaMap(strings.NewReader(sb.String()), nil)
	require.NoError(t, err)
	assert.Equal(t, am.Ranges(), read.Ranges())
	assert.Equal(t, am.Size(), read.Size())
}

func TestAlphaMapBinary(t *testing.T) {
	am, err := FromRanges(Range{'0', '9'}, Range{'a', 'z'})
	require.NoError(t, err)

	var buf fieldBuffer
	fw := newFieldWriter(&buf)
	am.writeBinary(fw)
	require.NoError(t, fw.Err())
	assert.Equal(t, am.binarySize(), fw.Count())
	assert.Equal(t, []byte{0xd9, 0xfc, 0xd9, 0xfc}, buf.Bytes()[:4])

	read, err := readAlphaMapBinary(newFieldSeeker(buf.reader(), 0))
	require.NoError(t, err)
	assert.Equal(t, am.Ranges(), read.Ranges())
}

func TestAlphaMapBinaryCorrupt(t *testing.T) {
	var buf fieldBuffer
	fw := newFieldWriter(&buf)
	fw.WriteInt32(daSignature)
	fw.WriteInt32(0)
	fw.WriteInt32(0)
	_, err := readAlphaMapBinary(newFieldSeeker(buf.reader(), 0))
	assert.ErrorIs(t, err, ErrCorruptFormat)

	buf.Reset()
	fw = newFieldWriter(&buf)
	fw.WriteInt32(alphaMapSignature)
	fw.WriteInt32(0)
	fw.WriteInt32(2)
	fw.WriteInt32('a')
	fw.WriteInt32('z')
	fw.WriteInt32('0')
	fw.WriteInt32('9')
	_, err = readAlphaMapBinary(newFieldSeeker(buf.reader(), 0))
	assert.ErrorIs(t, err, ErrCorruptFormat)
}
