package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no Inspection row exists for a hash.
var ErrNotFound = errors.New("store: not found")

// ErrStorage wraps any underlying KeyValueStore failure (as opposed to
// ErrNotFound, which is a normal "no such row" outcome), so callers can
// distinguish "the store is broken" from "the row doesn't exist" with
// errors.Is.
var ErrStorage = errors.New("store: storage failure")

// Repository is the upsert-by-primary-key persistence boundary over a
// KeyValueStore. Each logical row is serialized to JSON and stored
// under a "table/primarykey" composite key; encoding/json is used here
// rather than a relational driver because none is present anywhere in
// the retrieved pack (see DESIGN.md) and the schema's write/read
// semantics are explicitly non-core per the specification.
type Repository struct {
	db KeyValueStore
}

// NewRepository wraps db with the Inspection upsert/read/delete API.
func NewRepository(db KeyValueStore) *Repository {
	return &Repository{db: db}
}

func inspectionKey(hash string) []byte      { return []byte("mev_inspections/" + hash) }
func callsPrefix(hash string) []byte        { return []byte("internal_calls/" + hash + "/") }
func callKey(hash string, traceAddr string) []byte {
	return []byte("internal_calls/" + hash + "/" + traceAddr)
}
func logsPrefix(hash string) []byte { return []byte("event_logs/" + hash + "/") }
func logKey(hash string, logIndex uint) []byte {
	return []byte(fmt.Sprintf("event_logs/%s/%010d", hash, logIndex))
}

// Upsert writes (or overwrites) every row of insp under its
// transaction hash's primary key. A re-run with the same hash replaces
// all three tables' rows for that transaction, giving the upsert and
// idempotent-retry semantics the concurrency model requires.
func (r *Repository) Upsert(insp Inspection) error {
	recordBytes, err := json.Marshal(insp.Record)
	if err != nil {
		return fmt.Errorf("store: marshal inspection: %w", err)
	}
	if err := r.db.Put(inspectionKey(insp.Record.Hash), recordBytes); err != nil {
		return fmt.Errorf("%w: put inspection: %v", ErrStorage, err)
	}

	if err := r.deletePrefix(callsPrefix(insp.Record.Hash)); err != nil {
		return err
	}
	for _, c := range insp.Calls {
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("store: marshal internal call: %w", err)
		}
		if err := r.db.Put(callKey(insp.Record.Hash, traceAddrKey(c.TraceAddress)), b); err != nil {
			return fmt.Errorf("%w: put internal call: %v", ErrStorage, err)
		}
	}

	if err := r.deletePrefix(logsPrefix(insp.Record.Hash)); err != nil {
		return err
	}
	for _, l := range insp.Logs {
		b, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("store: marshal event log: %w", err)
		}
		if err := r.db.Put(logKey(insp.Record.Hash, l.LogIndex), b); err != nil {
			return fmt.Errorf("%w: put event log: %v", ErrStorage, err)
		}
	}
	return nil
}

// Get reads back the Inspection stored under hash, or ErrNotFound.
func (r *Repository) Get(hash string) (*Inspection, error) {
	raw, err := r.db.Get(inspectionKey(hash))
	if err != nil {
		return nil, ErrNotFound
	}
	var record InspectionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("store: unmarshal inspection: %w", err)
	}

	calls, err := r.readPrefix(callsPrefix(hash), func() any { return &InternalCallRecord{} })
	if err != nil {
		return nil, err
	}
	logs, err := r.readPrefix(logsPrefix(hash), func() any { return &EventLogRecord{} })
	if err != nil {
		return nil, err
	}

	out := &Inspection{Record: record}
	for _, c := range calls {
		out.Calls = append(out.Calls, *c.(*InternalCallRecord))
	}
	for _, l := range logs {
		out.Logs = append(out.Logs, *l.(*EventLogRecord))
	}
	return out, nil
}

// Delete cascades: it removes the inspection row and every internal
// call and event log row keyed under hash.
func (r *Repository) Delete(hash string) error {
	if err := r.db.Delete(inspectionKey(hash)); err != nil {
		return fmt.Errorf("%w: delete inspection: %v", ErrStorage, err)
	}
	if err := r.deletePrefix(callsPrefix(hash)); err != nil {
		return err
	}
	return r.deletePrefix(logsPrefix(hash))
}

func (r *Repository) deletePrefix(prefix []byte) error {
	it := r.db.NewIterator(prefix, nil)
	defer it.Release()

	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte{}, it.Key()...))
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("%w: iterate %s: %v", ErrStorage, prefix, err)
	}
	for _, k := range keys {
		if err := r.db.Delete(k); err != nil {
			return fmt.Errorf("%w: delete %s: %v", ErrStorage, k, err)
		}
	}
	return nil
}

func (r *Repository) readPrefix(prefix []byte, newRow func() any) ([]any, error) {
	it := r.db.NewIterator(prefix, nil)
	defer it.Release()

	var out []any
	for it.Next() {
		row := newRow()
		if err := json.Unmarshal(it.Value(), row); err != nil {
			return nil, fmt.Errorf("store: unmarshal row under %s: %w", prefix, err)
		}
		out = append(out, row)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", prefix, err)
	}
	return out, nil
}

func traceAddrKey(addr []int) string {
	b, _ := json.Marshal(addr)
	return string(b)
}
