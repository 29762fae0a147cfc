package datrie

import (
	"encoding/binary"
	"fmt"
	"io"
)

// fieldWriter writes big-endian fixed-width fields. The first error sticks
// and every later write is dropped.
type fieldWriter struct {
	io.Writer
	n   int64
	err error
	buf [4]byte
}

func newFieldWriter(w io.Writer) *fieldWriter {
	return &fieldWriter{Writer: w}
}

func (w *fieldWriter) write(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.Write(b)
	w.n += int64(n)
	if err != nil {
		w.err = fmt.Errorf("%w: %v", ErrIO, err)
	}
}

func (w *fieldWriter) WriteInt32(v int32) {
	binary.BigEndian.PutUint32(w.buf[:], uint32(v))
	w.write(w.buf[:4])
}

func (w *fieldWriter) WriteInt16(v int16) {
	binary.BigEndian.PutUint16(w.buf[:], uint16(v))
	w.write(w.buf[:2])
}

func (w *fieldWriter) WriteBytes(b []byte) {
	if len(b) > 0 {
		w.write(b)
	}
}

// Count returns the number of bytes written so far.
func (w *fieldWriter) Count() int64 {
	return w.n
}

func (w *fieldWriter) Err() error {
	return w.err
}

// fieldSeeker reads big-endian fixed-width fields from a byte offset.
// A short read sets a sticky ErrCorruptFormat and yields zero values.
type fieldSeeker struct {
	io.ReaderAt
	p      int64
	buffer []byte
	err    error
}

func newFieldSeeker(r io.ReaderAt, offset int64) *fieldSeeker {
	return &fieldSeeker{r, offset, make([]byte, 4), nil}
}

func (r *fieldSeeker) read(b []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := r.ReadAt(b, r.p)
	r.p += int64(n)
	if n < len(b) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = fmt.Errorf("%w: read at %d: %v", ErrCorruptFormat, r.p, err)
		return false
	}
	return true
}

func (r *fieldSeeker) ReadInt32() int32 {
	if !r.read(r.buffer[:4]) {
		return 0
	}
	return int32(binary.BigEndian.Uint32(r.buffer))
}

func (r *fieldSeeker) ReadInt16() int16 {
	if !r.read(r.buffer[:2]) {
		return 0
	}
	return int16(binary.BigEndian.Uint16(r.buffer))
}

func (r *fieldSeeker) ReadBytes(n int) []byte {
	b := make([]byte, n)
	if n > 0 && !r.read(b) {
		return nil
	}
	return b
}

func (r *fieldSeeker) Skip(offset int64) {
	r.p += offset
}

func (r *fieldSeeker) Tell() int64 {
	return r.p
}

func (r *fieldSeeker) Err() error {
	return r.err
}
