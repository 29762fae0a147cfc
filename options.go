package datrie

import "go.uber.org/zap"

type options struct {
	logger   *zap.Logger
	maxCells Index
}

// Option configures a Trie or TextTrie.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		maxCells: IndexMax,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for pool growth, relocation and file
// activity. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxCells caps the number of double-array cells. Insertions that would
// grow the array past the cap fail with ErrAllocationExhausted.
func WithMaxCells(n int) Option {
	return func(o *options) {
		if n > 0 && int64(n) < int64(IndexMax) {
			o.maxCells = Index(n)
		}
	}
}
