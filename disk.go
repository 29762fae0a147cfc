package datrie

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/exp/mmap"
)

/* STREAM FORMAT

All integers are big-endian.

A Trie is written as its double-array followed by its tail:

- for each cell, starting with the header cell 0:
	int32 base
	int32 check
  cell 0 holds the signature 0xDAFD and the number of cells, so the
  double-array knows where it ends.
- int32 tail signature 0xDFFD
- int32 first free tail block
- int32 number of tail blocks
- for each block:
	int32 next free block, -1 when used
	int32 data
	int16 suffix length
	suffix bytes

A TextTrie puts its alphabet map in front:

- int32 signature 0xD9FCD9FC
- int32 reserved, 0
- int32 number of ranges
- for each range: int32 begin, int32 end

The backing files written by Open use the same layouts: NAME.br holds the
double-array, NAME.tl the tail and NAME.sbm the alphabet map in text form.
*/

// SerializedSize is the number of bytes WriteTo will produce.
func (t *Trie) SerializedSize() int64 {
	return t.da.serializedSize() + t.tail.serializedSize()
}

// WriteTo writes the trie to an io.Writer. Returns the number of bytes
// written.
func (t *Trie) WriteTo(w io.Writer) (int64, error) {
	fw := newFieldWriter(w)
	t.da.writeTo(fw)
	t.tail.writeTo(fw)
	return fw.Count(), fw.Err()
}

// MarshalBinary returns the trie in the stream format.
func (t *Trie) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(int(t.SerializedSize()))
	if _, err := t.WriteTo(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// UnmarshalBinary replaces the contents of t with a trie in the stream
// format.
func (t *Trie) UnmarshalBinary(data []byte) error {
	o := t.opts
	if o.logger == nil {
		o = newOptions(nil)
	}
	loaded, err := readTrie(newFieldSeeker(bytes.NewReader(data), 0), o)
	if err != nil {
		return err
	}
	t.adopt(loaded)
	return nil
}

// adopt takes over the contents of loaded. A file-backed t keeps its files
// and becomes dirty so the next Save writes the new contents.
func (t *Trie) adopt(loaded *Trie) {
	t.da, t.tail, t.opts, t.logger = loaded.da, loaded.tail, loaded.opts, loaded.logger
	if t.files != nil {
		t.da.dirty, t.tail.dirty = true, true
	}
}

// Read loads a trie from the stream format, starting at offset in f.
func Read(f io.ReaderAt, offset int64, opts ...Option) (*Trie, error) {
	return readTrie(newFieldSeeker(f, offset), newOptions(opts))
}

func readTrie(r *fieldSeeker, o options) (*Trie, error) {
	da, err := readDArray(r, o)
	if err != nil {
		return nil, err
	}
	tl, err := readTail(r, o)
	if err != nil {
		return nil, err
	}
	return &Trie{da: da, tail: tl, opts: o, logger: o.logger}, nil
}

// SaveFile writes the trie to a single file in the stream format. Returns
// the number of bytes written.
func (t *Trie) SaveFile(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}

	n, err := t.WriteTo(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %v", ErrIO, cerr)
	}
	if err != nil {
		return n, err
	}
	t.logger.Debug("saved trie", zap.String("file", filename), zap.Int64("bytes", n))
	return n, nil
}

// LoadFile reads a trie written by SaveFile. The file is mapped into memory
// while it is decoded.
func LoadFile(filename string, opts ...Option) (*Trie, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	t, err := Read(f, 0, opts...)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("loaded trie", zap.String("file", filename), zap.Int("bytes", f.Len()))
	return t, nil
}
