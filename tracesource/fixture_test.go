package tracesource_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/trace"
	"github.com/mev-inspect-go/mevinspect/tracesource"
)

func TestFixtureReturnsSeededTx(t *testing.T) {
	hash := common.HexToHash("0x1")
	fixture := tracesource.NewFixture(map[trace.Hash]tracesource.TxData{
		hash: {Block: 42, GasUsed: 21000},
	})

	tx, err := fixture.Trace(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), tx.Block)
}

func TestFixtureReportsNotFound(t *testing.T) {
	fixture := tracesource.NewFixture(nil)
	_, err := fixture.Trace(context.Background(), common.HexToHash("0x2"))
	assert.ErrorIs(t, err, tracesource.ErrNotFound)
}
