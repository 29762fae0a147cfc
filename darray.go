package datrie

import (
	"fmt"

	"go.uber.org/zap"
)

/* DOUBLE-ARRAY LAYOUT

cell 0: base = signature 0xDAFD, check = number of cells
cell 1: head of the free list
cell 2: root state
cell 3 onwards: the pool

A used cell s with a child on symbol c satisfies check[base[s]+c] == s.
base[s] < 0 marks a separator: the rest of the key lives in tail block
-base[s]. base[s] == 0 means no children have been placed yet.

Free cells form a circular doubly-linked list through cell 1, in ascending
order, encoded as negatives: base = -prev, check = -next.
*/

const (
	daSignature  Index = 0xDAFD
	daFreeList   Index = 1
	daRoot       Index = 2
	daPoolBegin  Index = 3
	daCellLength       = 8
)

type daCell struct {
	base  Index
	check Index
}

type darray struct {
	cells    []daCell
	maxCells Index
	dirty    bool
	logger   *zap.Logger
}

func newDArray(o options) *darray {
	d := &darray{
		cells:    make([]daCell, daPoolBegin),
		maxCells: o.maxCells,
		dirty:    true,
		logger:   o.logger,
	}
	d.cells[0] = daCell{daSignature, daPoolBegin}
	d.cells[daFreeList] = daCell{-daFreeList, -daFreeList}
	d.cells[daRoot] = daCell{daPoolBegin, 0}
	return d
}

func (d *darray) numCells() Index {
	return Index(len(d.cells))
}

func (d *darray) getBase(s Index) Index {
	if s >= 0 && s < d.numCells() {
		return d.cells[s].base
	}
	return IndexError
}

func (d *darray) getCheck(s Index) Index {
	if s >= 0 && s < d.numCells() {
		return d.cells[s].check
	}
	return IndexError
}

func (d *darray) setBase(s, val Index) {
	if s >= 0 && s < d.numCells() {
		d.cells[s].base = val
		d.dirty = true
	}
}

func (d *darray) setCheck(s, val Index) {
	if s >= 0 && s < d.numCells() {
		d.cells[s].check = val
		d.dirty = true
	}
}

// isSeparate reports whether s hands the rest of the key to the tail.
func (d *darray) isSeparate(s Index) bool {
	return d.getBase(s) < 0
}

func (d *darray) getTailIndex(s Index) Index {
	return -d.getBase(s)
}

func (d *darray) setTailIndex(s, t Index) {
	d.setBase(s, -t)
}

// walk follows symbol c from *s and moves *s on success.
func (d *darray) walk(s *Index, c TrieChar) bool {
	next := d.getBase(*s) + Index(c)
	if d.getCheck(next) == *s {
		*s = next
		return true
	}
	return false
}

func (d *darray) isWalkable(s Index, c TrieChar) bool {
	return d.getCheck(d.getBase(s)+Index(c)) == s
}

// insertBranch makes sure s has a child on c, moving the existing children
// of s when their base cannot host c.
func (d *darray) insertBranch(s Index, c TrieChar) (Index, error) {
	var next Index
	base := d.getBase(s)
	if base > 0 {
		next = base + Index(c)
		if d.getCheck(next) == s {
			return next, nil
		}

		if base > IndexMax-Index(c) || !d.checkFreeCell(next) {
			symbols := insertSymbol(d.outputSymbols(s), c)
			newBase, err := d.findFreeBase(symbols)
			if err != nil {
				return IndexError, err
			}
			d.relocateBase(s, newBase)
			next = newBase + Index(c)
		}
	} else {
		newBase, err := d.findFreeBase([]TrieChar{c})
		if err != nil {
			return IndexError, err
		}
		d.setBase(s, newBase)
		next = newBase + Index(c)
	}

	d.allocCell(next)
	d.setCheck(next, s)
	return next, nil
}

func insertSymbol(symbols []TrieChar, c TrieChar) []TrieChar {
	i := 0
	for i < len(symbols) && symbols[i] < c {
		i++
	}
	if i < len(symbols) && symbols[i] == c {
		return symbols
	}
	symbols = append(symbols, 0)
	copy(symbols[i+1:], symbols[i:])
	symbols[i] = c
	return symbols
}

func (d *darray) checkFreeCell(s Index) bool {
	return d.extendPool(s) && d.getCheck(s) < 0
}

// hasChildren reports whether any cell names s as its parent.
func (d *darray) hasChildren(s Index) bool {
	base := d.getBase(s)
	if base <= 0 {
		return false
	}
	maxC := symbolLimit(base)
	for c := Index(0); c <= maxC; c++ {
		if d.getCheck(base+c) == s {
			return true
		}
	}
	return false
}

// outputSymbols lists the symbols of the children of s in ascending order.
func (d *darray) outputSymbols(s Index) []TrieChar {
	base := d.getBase(s)
	if base <= 0 {
		return nil
	}
	var symbols []TrieChar
	maxC := symbolLimit(base)
	for c := Index(0); c <= maxC; c++ {
		if d.getCheck(base+c) == s {
			symbols = append(symbols, TrieChar(c))
		}
	}
	return symbols
}

func symbolLimit(base Index) Index {
	if IndexMax-base < Index(CharMax) {
		return IndexMax - base
	}
	return Index(CharMax)
}

// findFreeBase finds the lowest base at which every symbol lands on a free
// cell, growing the pool when the free list runs out.
func (d *darray) findFreeBase(symbols []TrieChar) (Index, error) {
	firstSym := Index(symbols[0])

	// first free cell beyond the first symbol
	s := -d.getCheck(daFreeList)
	for s != daFreeList && s < firstSym+daPoolBegin {
		s = -d.getCheck(s)
	}
	if s == daFreeList {
		for s = firstSym + daPoolBegin; ; s++ {
			if !d.extendPool(s) {
				return IndexError, d.exhausted()
			}
			if d.getCheck(s) < 0 {
				break
			}
		}
	}

	for !d.fitSymbols(s-firstSym, symbols) {
		if -d.getCheck(s) == daFreeList {
			if !d.extendPool(d.numCells()) {
				return IndexError, d.exhausted()
			}
		}
		s = -d.getCheck(s)
	}

	return s - firstSym, nil
}

func (d *darray) exhausted() error {
	return fmt.Errorf("%w: %d cells", ErrAllocationExhausted, d.numCells())
}

func (d *darray) fitSymbols(base Index, symbols []TrieChar) bool {
	for _, sym := range symbols {
		if base > IndexMax-Index(sym) || !d.checkFreeCell(base+Index(sym)) {
			return false
		}
	}
	return true
}

// relocateBase moves every child of s to newBase, re-parenting the
// grandchildren and freeing the old cells.
func (d *darray) relocateBase(s, newBase Index) {
	oldBase := d.getBase(s)
	symbols := d.outputSymbols(s)

	d.logger.Debug("relocating base",
		zap.Int32("state", s),
		zap.Int32("from", oldBase),
		zap.Int32("to", newBase),
		zap.Int("children", len(symbols)))

	for _, sym := range symbols {
		oldNext := oldBase + Index(sym)
		newNext := newBase + Index(sym)
		oldNextBase := d.getBase(oldNext)

		d.allocCell(newNext)
		d.setCheck(newNext, s)
		d.setBase(newNext, oldNextBase)

		// separators have no children to re-parent
		if oldNextBase > 0 {
			maxC := symbolLimit(oldNextBase)
			for c := Index(0); c <= maxC; c++ {
				if d.getCheck(oldNextBase+c) == oldNext {
					d.setCheck(oldNextBase+c, newNext)
				}
			}
		}

		d.freeCell(oldNext)
	}

	d.setBase(s, newBase)
}

// extendPool grows the array so that toIndex is a valid cell, linking the
// new cells into the free list.
func (d *darray) extendPool(toIndex Index) bool {
	if toIndex <= 0 || toIndex >= IndexMax {
		return false
	}
	if toIndex < d.numCells() {
		return true
	}
	if toIndex >= d.maxCells {
		return false
	}

	newBegin := d.numCells()
	d.cells = append(d.cells, make([]daCell, int(toIndex-newBegin)+1)...)

	for i := newBegin; i < toIndex; i++ {
		d.setCheck(i, -(i + 1))
		d.setBase(i+1, -i)
	}

	// splice the new run before the free list head
	freeTail := -d.getBase(daFreeList)
	d.setCheck(freeTail, -newBegin)
	d.setBase(newBegin, -freeTail)
	d.setCheck(toIndex, -daFreeList)
	d.setBase(daFreeList, -toIndex)

	d.cells[0].check = d.numCells()
	d.dirty = true

	d.logger.Debug("extended cell pool",
		zap.Int32("from", newBegin),
		zap.Int32("cells", d.numCells()))
	return true
}

// allocCell unlinks a free cell from the free list.
func (d *darray) allocCell(cell Index) {
	prev := -d.getBase(cell)
	next := -d.getCheck(cell)

	d.setCheck(prev, -next)
	d.setBase(next, -prev)
}

// freeCell links cell back into the free list at its sorted position.
func (d *darray) freeCell(cell Index) {
	i := -d.getCheck(daFreeList)
	for i != daFreeList && i < cell {
		i = -d.getCheck(i)
	}

	prev := -d.getBase(i)

	d.setCheck(cell, -i)
	d.setBase(cell, -prev)
	d.setCheck(prev, -cell)
	d.setBase(i, -cell)
}

// prune frees s and its ancestors up to the root while they have no
// children.
func (d *darray) prune(s Index) {
	d.pruneUpto(daRoot, s)
}

// pruneUpto frees s and its ancestors while they have no children,
// stopping at p.
func (d *darray) pruneUpto(p, s Index) {
	for p != s && !d.hasChildren(s) {
		parent := d.getCheck(s)
		d.freeCell(s)
		s = parent
	}
}

type daFrame struct {
	state   Index
	symbols []TrieChar
	next    int
}

// daWalker visits the separators below a state depth first, in ascending
// symbol order, keeping an explicit stack instead of recursing.
type daWalker struct {
	d      *darray
	stack  []daFrame
	prefix []TrieChar
	atSep  bool
}

func (d *darray) newWalker(from Index) *daWalker {
	return &daWalker{
		d:     d,
		stack: []daFrame{{state: from, symbols: d.outputSymbols(from)}},
	}
}

// next moves to the following separator. The returned prefix holds the
// symbols from the start state and is only valid until the next call.
func (w *daWalker) next() (Index, []TrieChar, bool) {
	if w.atSep {
		w.prefix = w.prefix[:len(w.prefix)-1]
		w.atSep = false
	}

	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next == len(top.symbols) {
			w.stack = w.stack[:len(w.stack)-1]
			if len(w.stack) > 0 {
				w.prefix = w.prefix[:len(w.prefix)-1]
			}
			continue
		}

		c := top.symbols[top.next]
		top.next++
		child := w.d.getBase(top.state) + Index(c)
		w.prefix = append(w.prefix, c)

		if w.d.isSeparate(child) {
			w.atSep = true
			return child, w.prefix, true
		}
		w.stack = append(w.stack, daFrame{state: child, symbols: w.d.outputSymbols(child)})
	}
	return IndexError, nil, false
}

// enumerate calls fn for every separator reachable from the root with the
// symbols leading to it. It returns false when fn stops the walk.
func (d *darray) enumerate(fn func(prefix []TrieChar, sep Index) bool) bool {
	w := d.newWalker(daRoot)
	for {
		sep, prefix, ok := w.next()
		if !ok {
			return true
		}
		if !fn(prefix, sep) {
			return false
		}
	}
}

// checkIntegrity verifies the free list and the parent links of every used
// cell.
func (d *darray) checkIntegrity() error {
	n := d.numCells()
	if n < daPoolBegin || d.cells[0].base != daSignature || d.cells[0].check != n {
		return fmt.Errorf("%w: bad double-array header", ErrCorruptFormat)
	}

	seen := make([]bool, n)
	prev := daFreeList
	for s := -d.getCheck(daFreeList); s != daFreeList; s = -d.getCheck(s) {
		if s < daPoolBegin || s >= n {
			return fmt.Errorf("%w: free list points at cell %d", ErrCorruptFormat, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: free list visits cell %d twice", ErrCorruptFormat, s)
		}
		if s <= prev {
			return fmt.Errorf("%w: free list out of order at cell %d", ErrCorruptFormat, s)
		}
		if -d.getBase(s) != prev {
			return fmt.Errorf("%w: free cell %d links back to %d, want %d",
				ErrCorruptFormat, s, -d.getBase(s), prev)
		}
		seen[s] = true
		prev = s
	}
	if -d.getBase(daFreeList) != prev {
		return fmt.Errorf("%w: free list tail is %d, want %d",
			ErrCorruptFormat, -d.getBase(daFreeList), prev)
	}

	for s := daPoolBegin; s < n; s++ {
		check := d.getCheck(s)
		if check < 0 {
			if !seen[s] {
				return fmt.Errorf("%w: free cell %d is not on the free list", ErrCorruptFormat, s)
			}
			continue
		}
		if check < daRoot || check >= n {
			return fmt.Errorf("%w: cell %d has parent %d", ErrCorruptFormat, s, check)
		}
		pbase := d.getBase(check)
		if pbase <= 0 || s-pbase < 0 || s-pbase > Index(CharMax) {
			return fmt.Errorf("%w: cell %d is not a child of %d", ErrCorruptFormat, s, check)
		}
	}
	return nil
}

func (d *darray) serializedSize() int64 {
	return int64(len(d.cells)) * daCellLength
}

func (d *darray) writeTo(w *fieldWriter) {
	d.cells[0].check = d.numCells()
	for _, c := range d.cells {
		w.WriteInt32(c.base)
		w.WriteInt32(c.check)
	}
}

func readDArray(r *fieldSeeker, o options) (*darray, error) {
	sig := r.ReadInt32()
	n := r.ReadInt32()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if sig != daSignature {
		return nil, fmt.Errorf("%w: bad double-array signature %#x", ErrCorruptFormat, sig)
	}
	if n < daPoolBegin {
		return nil, fmt.Errorf("%w: %d double-array cells", ErrCorruptFormat, n)
	}

	d := &darray{
		cells:    make([]daCell, 1, min(n, 1<<16)),
		maxCells: o.maxCells,
		logger:   o.logger,
	}
	d.cells[0] = daCell{sig, n}
	for i := Index(1); i < n; i++ {
		base := r.ReadInt32()
		check := r.ReadInt32()
		if r.Err() != nil {
			return nil, r.Err()
		}
		d.cells = append(d.cells, daCell{base, check})
	}

	o.logger.Debug("loaded double-array", zap.Int32("cells", n))
	return d, nil
}
