package datrie

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldBuffer struct {
	bytes.Buffer
}

func (b *fieldBuffer) reader() *bytes.Reader {
	return bytes.NewReader(b.Bytes())
}

type failingWriter struct {
	left int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.left {
		n := w.left
		w.left = 0
		return n, errors.New("disk full")
	}
	w.left -= len(p)
	return len(p), nil
}

func TestFieldWriter(t *testing.T) {
	var buffer bytes.Buffer
	fw := newFieldWriter(&buffer)
	fw.WriteInt32(0x01020304)
	fw.WriteInt32(-2)
	fw.WriteInt16(-2)
	fw.WriteBytes([]byte("ab"))
	fw.WriteBytes(nil)

	require.NoError(t, fw.Err())
	assert.Equal(t, int64(12), fw.Count())
	assert.Equal(t, []byte{
		0x01, 0x02, 0x03, 0x04,
		0xff, 0xff, 0xff, 0xfe,
		0xff, 0xfe,
		'a', 'b',
	}, buffer.Bytes())
}

func TestFieldWriterStickyError(t *testing.T) {
	fw := newFieldWriter(&failingWriter{left: 6})
	fw.WriteInt32(1)
	fw.WriteInt32(2)
	fw.WriteInt32(3)

	assert.ErrorIs(t, fw.Err(), ErrIO)
	assert.Equal(t, int64(6), fw.Count())
}

func TestFieldSeeker(t *testing.T) {
	r := newFieldSeeker(bytes.NewReader([]byte{
		0x01, 0x02, 0x03, 0x04,
		0xff, 0xfe,
		'a', 'b', 'c',
	}), 0)

	assert.Equal(t, int32(0x01020304), r.ReadInt32())
	assert.Equal(t, int16(-2), r.ReadInt16())
	assert.Equal(t, []byte("abc"), r.ReadBytes(3))
	assert.Equal(t, int64(9), r.Tell())
	require.NoError(t, r.Err())

	r.Skip(-5)
	assert.Equal(t, int16(-2), r.ReadInt16())
	assert.Equal(t, int64(6), r.Tell())

	r.Skip(-6)
	assert.Equal(t, int32(0x01020304), r.ReadInt32())
	require.NoError(t, r.Err())
}

func TestFieldSeekerOffset(t *testing.T) {
	r := newFieldSeeker(bytes.NewReader([]byte{0xaa, 0xbb, 0, 0, 0, 7}), 2)
	assert.Equal(t, int32(7), r.ReadInt32())
	require.NoError(t, r.Err())
}

func TestFieldSeekerShortRead(t *testing.T) {
	r := newFieldSeeker(bytes.NewReader([]byte{0x01, 0x02}), 0)

	assert.Equal(t, int32(0), r.ReadInt32())
	assert.ErrorIs(t, r.Err(), ErrCorruptFormat)

	// errors stick
	assert.Equal(t, int16(0), r.ReadInt16())
	assert.Nil(t, r.ReadBytes(1))
	assert.ErrorIs(t, r.Err(), ErrCorruptFormat)
}

func TestFieldReaderWriter(t *testing.T) {
	var buffer bytes.Buffer
	fw := newFieldWriter(&buffer)
	for i := 0; i < 10000; i++ {
		fw.WriteInt32(int32(i * 7919))
		fw.WriteInt16(int16(i))
	}
	require.NoError(t, fw.Err())

	r := newFieldSeeker(bytes.NewReader(buffer.Bytes()), 0)
	for i := 0; i < 10000; i++ {
		if v := r.ReadInt32(); v != int32(i*7919) {
			t.Fatalf("int32 #%d: expected %d, read %d", i, i*7919, v)
		}
		if v := r.ReadInt16(); v != int16(i) {
			t.Fatalf("int16 #%d: expected %d, read %d", i, int16(i), v)
		}
	}
	require.NoError(t, r.Err())
}
