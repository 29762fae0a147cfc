package datrie

import (
	"fmt"

	"go.uber.org/zap"
)

/* TAIL LAYOUT

int32 signature 0xDFFD
int32 first free block id, 0 if none
int32 number of blocks
for each block, ids counting from 1:
	int32 next free block id, -1 while the block is in use
	int32 data
	int16 suffix length
	suffix bytes, without terminator

Free blocks are chained in ascending id order.
*/

const (
	tailSignature  int32 = 0xDFFD
	tailStartBlock Index = 1
	tailHeaderSize       = 3 * 4
	tailBlockSize        = 4 + 4 + 2
)

type tailBlock struct {
	nextFree Index
	data     Data
	suffix   []TrieChar
}

type tail struct {
	blocks    []tailBlock
	firstFree Index
	dirty     bool
	logger    *zap.Logger
}

func newTail(o options) *tail {
	return &tail{dirty: true, logger: o.logger}
}

func (t *tail) block(id Index) *tailBlock {
	i := id - tailStartBlock
	if i < 0 || int(i) >= len(t.blocks) {
		return nil
	}
	return &t.blocks[i]
}

func (t *tail) allocBlock() Index {
	var id Index
	if t.firstFree != 0 {
		id = t.firstFree
		t.firstFree = t.block(id).nextFree
	} else {
		t.blocks = append(t.blocks, tailBlock{})
		id = Index(len(t.blocks)) - 1 + tailStartBlock
	}

	*t.block(id) = tailBlock{nextFree: -1, data: DataError}
	t.dirty = true
	return id
}

func (t *tail) freeBlock(id Index) {
	b := t.block(id)
	if b == nil || b.nextFree != -1 {
		return
	}
	b.data = DataError
	b.suffix = nil

	var j Index
	i := t.firstFree
	for i != 0 && i < id {
		j = i
		i = t.block(i).nextFree
	}

	b.nextFree = i
	if j != 0 {
		t.block(j).nextFree = id
	} else {
		t.firstFree = id
	}
	t.dirty = true
}

// getSuffix returns the stored suffix without its terminator.
func (t *tail) getSuffix(id Index) ([]TrieChar, bool) {
	b := t.block(id)
	if b == nil {
		return nil, false
	}
	return b.suffix, true
}

func (t *tail) setSuffix(id Index, suffix []TrieChar) bool {
	b := t.block(id)
	if b == nil {
		return false
	}
	b.suffix = append([]TrieChar(nil), suffix...)
	t.dirty = true
	return true
}

// addSuffix stores suffix in a new block and returns its id.
func (t *tail) addSuffix(suffix []TrieChar) Index {
	id := t.allocBlock()
	t.setSuffix(id, suffix)
	return id
}

func (t *tail) getData(id Index) Data {
	b := t.block(id)
	if b == nil {
		return DataError
	}
	return b.data
}

func (t *tail) setData(id Index, data Data) bool {
	b := t.block(id)
	if b == nil {
		return false
	}
	b.data = data
	t.dirty = true
	return true
}

func (t *tail) delete(id Index) {
	t.freeBlock(id)
}

// charAt treats the position just past the suffix as the terminator.
func (t *tail) charAt(b *tailBlock, offset int) TrieChar {
	if offset < len(b.suffix) {
		return b.suffix[offset]
	}
	return Term
}

// walkStr matches str against the suffix of block id from *offset. It
// returns the number of symbols matched and advances *offset, which never
// moves past the terminator.
func (t *tail) walkStr(id Index, offset *int, str []TrieChar) int {
	b := t.block(id)
	if b == nil {
		return 0
	}

	i := 0
	j := *offset
	for i < len(str) {
		c := t.charAt(b, j)
		if str[i] != c {
			break
		}
		i++
		if c == Term {
			break
		}
		j++
	}
	*offset = j
	return i
}

func (t *tail) walkChar(id Index, offset *int, c TrieChar) bool {
	b := t.block(id)
	if b == nil || *offset > len(b.suffix) {
		return false
	}
	sc := t.charAt(b, *offset)
	if sc != c {
		return false
	}
	if sc != Term {
		*offset++
	}
	return true
}

func (t *tail) isWalkableChar(id Index, offset int, c TrieChar) bool {
	b := t.block(id)
	if b == nil || offset > len(b.suffix) {
		return false
	}
	return t.charAt(b, offset) == c
}

func (t *tail) serializedSize() int64 {
	size := int64(tailHeaderSize)
	for _, b := range t.blocks {
		size += tailBlockSize + int64(len(b.suffix))
	}
	return size
}

func (t *tail) writeTo(w *fieldWriter) {
	w.WriteInt32(tailSignature)
	w.WriteInt32(t.firstFree)
	w.WriteInt32(int32(len(t.blocks)))
	for _, b := range t.blocks {
		w.WriteInt32(b.nextFree)
		w.WriteInt32(b.data)
		w.WriteInt16(int16(len(b.suffix)))
		w.WriteBytes(b.suffix)
	}
}

func readTail(r *fieldSeeker, o options) (*tail, error) {
	sig := r.ReadInt32()
	firstFree := r.ReadInt32()
	n := r.ReadInt32()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if sig != tailSignature {
		return nil, fmt.Errorf("%w: bad tail signature %#x", ErrCorruptFormat, sig)
	}
	if n < 0 || firstFree < 0 || firstFree > n {
		return nil, fmt.Errorf("%w: tail header first free %d, %d blocks", ErrCorruptFormat, firstFree, n)
	}

	t := &tail{
		blocks:    make([]tailBlock, 0, min(n, 1<<16)),
		firstFree: firstFree,
		logger:    o.logger,
	}
	for i := int32(0); i < n; i++ {
		var b tailBlock
		b.nextFree = r.ReadInt32()
		b.data = r.ReadInt32()
		length := r.ReadInt16()
		if r.Err() != nil {
			return nil, r.Err()
		}
		if length < 0 {
			return nil, fmt.Errorf("%w: tail block %d has length %d", ErrCorruptFormat, i+tailStartBlock, length)
		}
		if length > 0 {
			b.suffix = r.ReadBytes(int(length))
			if r.Err() != nil {
				return nil, r.Err()
			}
		}
		t.blocks = append(t.blocks, b)
	}

	o.logger.Debug("loaded tail", zap.Int32("blocks", n))
	return t, nil
}
