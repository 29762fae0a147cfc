package datrie

import (
	"bytes"
	"fmt"
	"io"
)

// Dump prints the trie stream stored in f at offset 0: the double-array
// header, every cell, then the tail header and every block. Each line
// starts with the byte offset of the field it describes.
func Dump(w io.Writer, f io.ReaderAt) error {
	r := newFieldSeeker(f, 0)

	at := r.Tell()
	sig := r.ReadInt32()
	numCells := r.ReadInt32()
	if r.Err() != nil {
		return r.Err()
	}
	if sig != daSignature {
		return fmt.Errorf("%w: bad double-array signature %#x", ErrCorruptFormat, sig)
	}
	fmt.Fprintf(w, "[%08x] Signature=%#04x Cells=%d\n", at, sig, numCells)

	for i := Index(1); i < numCells; i++ {
		at = r.Tell()
		base := r.ReadInt32()
		check := r.ReadInt32()
		if r.Err() != nil {
			return r.Err()
		}
		switch {
		case i == daFreeList:
			fmt.Fprintf(w, "[%08x] #%d free list head prev=%d next=%d\n", at, i, -base, -check)
		case check < 0:
			fmt.Fprintf(w, "[%08x] #%d free prev=%d next=%d\n", at, i, -base, -check)
		case base < 0:
			fmt.Fprintf(w, "[%08x] #%d parent=%d tail=%d\n", at, i, check, -base)
		default:
			fmt.Fprintf(w, "[%08x] #%d parent=%d base=%d\n", at, i, check, base)
		}
	}

	at = r.Tell()
	sig = r.ReadInt32()
	firstFree := r.ReadInt32()
	numBlocks := r.ReadInt32()
	if r.Err() != nil {
		return r.Err()
	}
	if sig != tailSignature {
		return fmt.Errorf("%w: bad tail signature %#x", ErrCorruptFormat, sig)
	}
	fmt.Fprintf(w, "[%08x] Signature=%#04x FirstFree=%d Blocks=%d\n", at, sig, firstFree, numBlocks)

	for i := Index(0); i < numBlocks; i++ {
		at = r.Tell()
		nextFree := r.ReadInt32()
		data := r.ReadInt32()
		length := r.ReadInt16()
		suffix := r.ReadBytes(int(max(length, 0)))
		if r.Err() != nil {
			return r.Err()
		}
		if nextFree != -1 {
			fmt.Fprintf(w, "[%08x] block %d free next=%d\n", at, i+tailStartBlock, nextFree)
			continue
		}
		fmt.Fprintf(w, "[%08x] block %d data=%d suffix=%v\n", at, i+tailStartBlock, data, suffix)
	}
	return nil
}

// Dump prints the trie in the layout of the package-level Dump.
func (t *Trie) Dump(w io.Writer) error {
	var buffer bytes.Buffer
	if _, err := t.WriteTo(&buffer); err != nil {
		return err
	}
	return Dump(w, bytes.NewReader(buffer.Bytes()))
}
