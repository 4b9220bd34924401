package store

import "bytes"

// Prefixed namespaces every key under a fixed table-override prefix,
// letting one backing engine host more than one logical generation of
// rows (the CLI's table-override flag) without colliding keys.
type Prefixed struct {
	KeyValueStore
	prefix []byte
}

// WithPrefix wraps db so every key is namespaced under prefix + "/".
func WithPrefix(db KeyValueStore, prefix string) KeyValueStore {
	if prefix == "" {
		return db
	}
	return &Prefixed{KeyValueStore: db, prefix: []byte(prefix + "/")}
}

func (p *Prefixed) Has(key []byte) (bool, error) { return p.KeyValueStore.Has(p.apply(key)) }
func (p *Prefixed) Get(key []byte) ([]byte, error) { return p.KeyValueStore.Get(p.apply(key)) }
func (p *Prefixed) Put(key, value []byte) error    { return p.KeyValueStore.Put(p.apply(key), value) }
func (p *Prefixed) Delete(key []byte) error         { return p.KeyValueStore.Delete(p.apply(key)) }

func (p *Prefixed) NewIterator(prefix, start []byte) Iterator {
	inner := p.KeyValueStore.NewIterator(p.apply(prefix), applyStart(p.prefix, start))
	return &trimmedIterator{Iterator: inner, prefix: p.prefix}
}

func (p *Prefixed) apply(key []byte) []byte {
	return append(append([]byte{}, p.prefix...), key...)
}

func applyStart(prefix, start []byte) []byte {
	if start == nil {
		return nil
	}
	return append(append([]byte{}, prefix...), start...)
}

// trimmedIterator strips the namespace prefix back off each key so
// callers see the same unprefixed keys they wrote with.
type trimmedIterator struct {
	Iterator
	prefix []byte
}

func (t *trimmedIterator) Key() []byte {
	return bytes.TrimPrefix(t.Iterator.Key(), t.prefix)
}
