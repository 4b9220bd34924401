package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/store"
	"github.com/mev-inspect-go/mevinspect/store/memstore"
)

func sampleInspection(hash string) store.Inspection {
	return store.Inspection{
		Record: store.InspectionRecord{
			Hash:        hash,
			Status:      "success",
			BlockNumber: 100,
			GasPrice:    "1000000000",
			GasUsed:     21000,
			Revenue:     "0",
			Protocols:   []string{"uniswap"},
			Actions:     []string{"trade"},
			EOA:         "0xaaaa",
			InsertedAt:  time.Unix(0, 0).UTC(),
		},
		Calls: []store.InternalCallRecord{
			{TransactionHash: hash, TraceAddress: []int{0}, CallType: store.CallTypeCall, Classification: store.ClassificationSwap},
		},
		Logs: []store.EventLogRecord{
			{TransactionHash: hash, Address: "0xpair", Signature: "0xfeed", LogIndex: 0},
		},
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := store.NewRepository(memstore.New())
	in := sampleInspection("0xabc")

	require.NoError(t, repo.Upsert(in))

	out, err := repo.Get("0xabc")
	require.NoError(t, err)
	assert.Equal(t, in.Record, out.Record)
	assert.Len(t, out.Calls, 1)
	assert.Len(t, out.Logs, 1)
}

func TestRepositoryUpsertReplacesChildRows(t *testing.T) {
	repo := store.NewRepository(memstore.New())
	in := sampleInspection("0xdef")
	require.NoError(t, repo.Upsert(in))

	updated := in
	updated.Calls = nil
	require.NoError(t, repo.Upsert(updated))

	out, err := repo.Get("0xdef")
	require.NoError(t, err)
	assert.Empty(t, out.Calls)
}

func TestRepositoryDeleteCascades(t *testing.T) {
	repo := store.NewRepository(memstore.New())
	in := sampleInspection("0x123")
	require.NoError(t, repo.Upsert(in))
	require.NoError(t, repo.Delete("0x123"))

	_, err := repo.Get("0x123")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
