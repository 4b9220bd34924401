package pipeline_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/pipeline"
	"github.com/mev-inspect-go/mevinspect/trace"
	"github.com/mev-inspect-go/mevinspect/trace/testutil"
)

var weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

type nilOracle struct{}

func (nilOracle) Quote(context.Context, common.Address, uint64) (*uint256.Int, error) {
	return nil, nil
}

func newProcessor(t *testing.T) *pipeline.Processor {
	t.Helper()
	reg, err := abiregistry.New()
	require.NoError(t, err)
	return pipeline.New(reg, nilOracle{}, weth)
}

func TestProcessCoversEveryFrameExactlyOnce(t *testing.T) {
	insp, err := testutil.Generate(testutil.DefaultOpts)
	require.NoError(t, err)

	p := newProcessor(t)
	out, err := p.Process(context.Background(), insp)
	require.NoError(t, err)

	require.Len(t, out.Actions, len(out.Frames))
	seen := make(map[string]bool)
	for _, a := range out.Actions {
		key := a.TraceAddress.String()
		require.False(t, seen[key], "trace address %s covered twice", key)
		seen[key] = true
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	insp, err := testutil.Generate(testutil.GenerateOpts{MaxDepth: 3, MaxChildren: 3, Seed: 42})
	require.NoError(t, err)

	p := newProcessor(t)
	first, err := p.Process(context.Background(), insp)
	require.NoError(t, err)

	snapshot := snapshotKinds(first)

	second, err := p.Process(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, snapshot, snapshotKinds(second))
}

func snapshotKinds(insp *trace.Inspection) []trace.ClassificationKind {
	kinds := make([]trace.ClassificationKind, len(insp.Actions))
	for i, a := range insp.Actions {
		kinds[i] = a.Classification.Kind
	}
	return kinds
}

func TestProcessOnPureTransferProducesNoActions(t *testing.T) {
	sender := common.HexToAddress("0xdddd111111111111111111111111111111111111")
	receiver := common.HexToAddress("0xdddd222222222222222222222222222222222222")

	frames := []trace.RawFrame{{
		TraceAddress: trace.TraceAddress{},
		CallType:     trace.Call,
		From:         sender,
		To:           receiver,
		Value:        uint256.NewInt(1_000_000_000_000_000_000),
		GasUsed:      uint256.NewInt(21000),
		Status:       trace.Success,
	}}
	insp, err := trace.Build(frames, nil, trace.TxMeta{Hash: common.HexToHash("0x5"), Block: 1})
	require.NoError(t, err)

	p := newProcessor(t)
	out, err := p.Process(context.Background(), insp)
	require.NoError(t, err)

	require.Empty(t, out.Protocols)
	for _, a := range out.Actions {
		require.True(t, a.Classification.IsUnknown())
	}
}
