// Package memstore is an in-memory store.KeyValueStore used by unit
// tests in place of a real pebble database.
package memstore

import (
	"bytes"
	"errors"
	"sort"
	"sync"

	"github.com/mev-inspect-go/mevinspect/store"
)

var errNotFound = errors.New("memstore: key not found")

// Store is a sorted, mutex-guarded in-memory KeyValueStore.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key)]
	if !ok {
		return nil, errNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[string(key)] = v
	return nil
}

func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) NewIterator(prefix, start []byte) store.Iterator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.data {
		if bytes.HasPrefix([]byte(k), prefix) && (start == nil || k >= string(start)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]kv, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, kv{key: []byte(k), value: append([]byte{}, s.data[k]...)})
	}
	return &iterator{entries: entries, pos: -1}
}

type kv struct {
	key, value []byte
}

type iterator struct {
	entries []kv
	pos     int
}

func (it *iterator) Next() bool {
	it.pos++
	return it.pos < len(it.entries)
}

func (it *iterator) Key() []byte   { return it.entries[it.pos].key }
func (it *iterator) Value() []byte { return it.entries[it.pos].value }
func (it *iterator) Error() error  { return nil }
func (it *iterator) Release()      {}
