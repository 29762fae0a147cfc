package datrie

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// IOMode selects how Open treats the backing files.
type IOMode int

const (
	// ModeRead opens the files for reading.
	ModeRead IOMode = 1 << iota

	// ModeWrite allows Save to write changes back.
	ModeWrite

	// ModeCreate creates missing files, starting from an empty trie.
	ModeCreate
)

const (
	extDArray   = ".br"
	extTail     = ".tl"
	extAlphaMap = ".sbm"
)

// FilePath joins dir, name and ext into the path of a backing file.
func FilePath(dir, name, ext string) string {
	return filepath.Join(dir, name+ext)
}

func openFile(dir, name, ext string, mode IOMode) (*os.File, error) {
	flag := os.O_RDONLY
	if mode&ModeWrite != 0 {
		flag = os.O_RDWR
	}
	if mode&ModeCreate != 0 {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(FilePath(dir, name, ext), flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return f, nil
}

// readAll loads the whole file. An empty file yields a nil slice.
func readAll(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if info.Size() == 0 {
		return nil, nil
	}
	data, err := io.ReadAll(io.NewSectionReader(f, 0, info.Size()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return data, nil
}

type trieFiles struct {
	dir  string
	name string
	mode IOMode
	da   *os.File
	tail *os.File
}

func (tf *trieFiles) close() error {
	var errs []error
	for _, f := range []*os.File{tf.da, tf.tail} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// Open loads the trie stored in dir as NAME.br and NAME.tl. With
// ModeCreate, missing or empty files start an empty trie. The files stay
// open until Close; with ModeWrite, Save writes changes back to them.
func Open(dir, name string, mode IOMode, opts ...Option) (*Trie, error) {
	o := newOptions(opts)

	tf := &trieFiles{dir: dir, name: name, mode: mode}
	var err error
	if tf.da, err = openFile(dir, name, extDArray, mode); err != nil {
		return nil, err
	}
	if tf.tail, err = openFile(dir, name, extTail, mode); err != nil {
		tf.close()
		return nil, err
	}

	t := &Trie{opts: o, logger: o.logger, files: tf}
	if err := t.loadFiles(); err != nil {
		tf.close()
		return nil, err
	}

	o.logger.Debug("opened trie",
		zap.String("dir", dir),
		zap.String("name", name),
		zap.Int32("cells", t.da.numCells()),
		zap.Int("blocks", len(t.tail.blocks)))
	return t, nil
}

func (t *Trie) loadFiles() error {
	data, err := readAll(t.files.da)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		t.da = newDArray(t.opts)
	} else if t.da, err = readDArray(newFieldSeeker(bytes.NewReader(data), 0), t.opts); err != nil {
		return fmt.Errorf("%s: %w", t.files.da.Name(), err)
	}

	if data, err = readAll(t.files.tail); err != nil {
		return err
	}
	if len(data) == 0 {
		t.tail = newTail(t.opts)
	} else if t.tail, err = readTail(newFieldSeeker(bytes.NewReader(data), 0), t.opts); err != nil {
		return fmt.Errorf("%s: %w", t.files.tail.Name(), err)
	}
	return nil
}

// Save writes the changed parts of the trie back to the files it was
// opened from. It does nothing when the trie is unchanged.
func (t *Trie) Save() error {
	if !t.IsDirty() {
		return nil
	}
	if t.files == nil {
		return fmt.Errorf("%w: trie has no backing files", ErrIO)
	}
	if t.files.mode&ModeWrite == 0 {
		return ErrReadOnly
	}

	if t.da.dirty {
		if err := rewrite(t.files.da, t.da.writeTo); err != nil {
			return err
		}
		t.da.dirty = false
	}
	if t.tail.dirty {
		if err := rewrite(t.files.tail, t.tail.writeTo); err != nil {
			return err
		}
		t.tail.dirty = false
	}

	t.logger.Debug("saved trie",
		zap.String("dir", t.files.dir),
		zap.String("name", t.files.name))
	return nil
}

// rewrite replaces the contents of f from offset zero.
func rewrite(f *os.File, write func(*fieldWriter)) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	bw := bufio.NewWriter(f)
	fw := newFieldWriter(bw)
	write(fw)
	if err := fw.Err(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Truncate(fw.Count()); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// Close saves a writable trie and releases its files. Closing a trie that
// was not opened with Open does nothing.
func (t *Trie) Close() error {
	if t.files == nil {
		return nil
	}
	var err error
	if t.files.mode&ModeWrite != 0 {
		err = t.Save()
	}
	if cerr := t.files.close(); err == nil {
		err = cerr
	}
	t.files = nil
	return err
}

// ReadAlphaMapFile reads NAME.sbm from dir.
func ReadAlphaMapFile(dir, name string, logger *zap.Logger) (*AlphaMap, error) {
	f, err := os.Open(FilePath(dir, name, extAlphaMap))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return ReadAlphaMap(f, logger)
}

// WriteAlphaMapFile writes am to dir as NAME.sbm.
func WriteAlphaMapFile(dir, name string, am *AlphaMap) error {
	f, err := os.Create(FilePath(dir, name, extAlphaMap))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := am.WriteText(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// AlphaMapFileExists reports whether dir holds NAME.sbm.
func AlphaMapFileExists(dir, name string) bool {
	_, err := os.Stat(FilePath(dir, name, extAlphaMap))
	return !errors.Is(err, fs.ErrNotExist)
}
