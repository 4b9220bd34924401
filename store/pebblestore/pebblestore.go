// Package pebblestore backs store.KeyValueStore with a cockroachdb/pebble
// LSM-tree database, giving the persistent-store external interface a
// concrete, embedded, dependency-free-of-a-running-server implementation.
package pebblestore

import (
	"errors"

	"github.com/cockroachdb/pebble"

	"github.com/mev-inspect-go/mevinspect/store"
)

// Store wraps a pebble.DB as a store.KeyValueStore.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if absent) a pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Has(key []byte) (bool, error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer closer.Close()
	_ = v
	return true, nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Put(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) NewIterator(prefix, start []byte) store.Iterator {
	lower := prefix
	if start != nil && bytesGreater(start, prefix) {
		lower = start
	}
	upper := append(append([]byte{}, prefix...), 0xff)

	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return &errIterator{err: err}
	}
	return &iterator{it: it, started: false}
}

func bytesGreater(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}

type iterator struct {
	it      *pebble.Iterator
	started bool
}

func (i *iterator) Next() bool {
	if !i.started {
		i.started = true
		return i.it.First()
	}
	return i.it.Next()
}

func (i *iterator) Key() []byte   { return i.it.Key() }
func (i *iterator) Value() []byte { return i.it.Value() }
func (i *iterator) Error() error  { return i.it.Error() }
func (i *iterator) Release()      { _ = i.it.Close() }

type errIterator struct{ err error }

func (e *errIterator) Next() bool    { return false }
func (e *errIterator) Key() []byte   { return nil }
func (e *errIterator) Value() []byte { return nil }
func (e *errIterator) Error() error  { return e.err }
func (e *errIterator) Release()      {}
