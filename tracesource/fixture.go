package tracesource

import (
	"context"

	"github.com/mev-inspect-go/mevinspect/trace"
)

// Fixture is a Source backed by an in-memory map, used to drive the
// pipeline end-to-end in tests without a live archival node.
type Fixture struct {
	byHash map[trace.Hash]TxData
}

// NewFixture builds a Fixture seeded with txs.
func NewFixture(txs map[trace.Hash]TxData) *Fixture {
	return &Fixture{byHash: txs}
}

func (f *Fixture) Trace(_ context.Context, hash trace.Hash) (*TxData, error) {
	tx, ok := f.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return &tx, nil
}
