package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/milden6/datrie"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// decodeReader converts r from the named character encoding to UTF-8.
// An empty name means r is UTF-8 already.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	if name == "" {
		return r, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// readList calls fn with every non-blank line of filename, trimmed.
func (e *env) readList(filename string, fn func(line string)) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot open input file '%s': %w", filename, err)
	}
	defer f.Close()

	r, err := decodeReader(f, e.config.Encoding)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	return nil
}

// parseEntry splits "key<TAB or comma>data". A missing data field yields
// DataError.
func parseEntry(line string) (string, datrie.Data, error) {
	i := strings.IndexAny(line, "\t,")
	if i < 0 {
		return line, datrie.DataError, nil
	}
	key, data := line[:i], strings.TrimSpace(line[i+1:])
	if data == "" {
		return key, datrie.DataError, nil
	}
	v, err := parseData(data)
	return key, v, err
}

func parseData(s string) (datrie.Data, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return datrie.DataError, fmt.Errorf("bad data %q: %w", s, err)
	}
	return datrie.Data(v), nil
}
