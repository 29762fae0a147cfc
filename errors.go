package datrie

import "errors"

var (
	ErrNotFound            = errors.New("datrie: key not found")
	ErrKeyPresent          = errors.New("datrie: key present")
	ErrInvalidKey          = errors.New("datrie: invalid key")
	ErrAllocationExhausted = errors.New("datrie: index space exhausted")
	ErrCorruptFormat       = errors.New("datrie: corrupt format")
	ErrInvalidRange        = errors.New("datrie: invalid alphabet range")
	ErrIO                  = errors.New("datrie: i/o failure")
	ErrReadOnly            = errors.New("datrie: trie is read-only")
)
