// Package store defines the persistent key-value boundary the
// repository layer writes through, modeled directly on go-ethereum's
// ethdb.KeyValueStore: a small, storage-engine-agnostic surface that
// both an in-memory test double and a pebble-backed implementation can
// satisfy identically.
package store

import "io"

// KeyValueReader wraps the read side of a backing key-value store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the write side of a backing key-value store.
type KeyValueWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Iterator walks a range of keys in lexicographic order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// Iteratee wraps the iterator constructor of a backing key-value store.
type Iteratee interface {
	// NewIterator returns an iterator over every key with the given
	// prefix, starting at (and including) the first key >= start.
	NewIterator(prefix, start []byte) Iterator
}

// KeyValueStore is the full surface a concrete storage engine must
// provide; Repository is built on top of it.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	Iteratee
	io.Closer
}
