package trace_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mev-inspect-go/mevinspect/trace"
	"github.com/mev-inspect-go/mevinspect/trace/testutil"
	"github.com/stretchr/testify/require"
)

var (
	eoa      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	contract = common.HexToAddress("0x2222222222222222222222222222222222222222")
	pair     = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func rootFrame(status trace.Status) trace.RawFrame {
	return trace.RawFrame{
		TraceAddress: trace.TraceAddress{},
		CallType:     trace.Call,
		From:         eoa,
		To:           contract,
		Value:        uint256.NewInt(0),
		GasUsed:      uint256.NewInt(21000),
		Status:       status,
		Subtraces:    1,
	}
}

func TestBuildInfersSenderContractAndStatus(t *testing.T) {
	frames := []trace.RawFrame{
		rootFrame(trace.Success),
		{
			TraceAddress: trace.TraceAddress{0},
			CallType:     trace.Call,
			From:         contract,
			To:           pair,
			Value:        uint256.NewInt(0),
			GasUsed:      uint256.NewInt(1000),
			Status:       trace.Success,
		},
	}
	insp, err := trace.Build(frames, nil, trace.TxMeta{Hash: common.HexToHash("0xabc"), Block: 100})
	require.NoError(t, err)
	require.Equal(t, eoa, insp.Sender)
	require.NotNil(t, insp.Contract)
	require.Equal(t, contract, *insp.Contract)
	require.Equal(t, trace.InspectionSuccess, insp.Status)
	require.Len(t, insp.Frames, 2)
	require.Len(t, insp.Actions, 2)
}

func TestBuildMarksRevertedFromRootOnly(t *testing.T) {
	frames := []trace.RawFrame{
		rootFrame(trace.Reverted),
		{
			TraceAddress: trace.TraceAddress{0},
			CallType:     trace.Call,
			From:         contract,
			To:           pair,
			Value:        uint256.NewInt(0),
			GasUsed:      uint256.NewInt(0),
			Status:       trace.Success,
		},
	}
	insp, err := trace.Build(frames, nil, trace.TxMeta{Hash: common.HexToHash("0xdef"), Block: 1})
	require.NoError(t, err)
	require.Equal(t, trace.InspectionReverted, insp.Status)

	// An inner revert alone must not fail the transaction.
	frames2 := []trace.RawFrame{
		rootFrame(trace.Success),
		{
			TraceAddress: trace.TraceAddress{0},
			CallType:     trace.Call,
			From:         contract,
			To:           pair,
			Value:        uint256.NewInt(0),
			GasUsed:      uint256.NewInt(0),
			Status:       trace.Reverted,
		},
	}
	insp2, err := trace.Build(frames2, nil, trace.TxMeta{Hash: common.HexToHash("0xdef"), Block: 1})
	require.NoError(t, err)
	require.Equal(t, trace.InspectionSuccess, insp2.Status)
}

func TestBuildInfersProxyImpl(t *testing.T) {
	impl := common.HexToAddress("0x4444444444444444444444444444444444444444")
	frames := []trace.RawFrame{
		rootFrame(trace.Success),
		{
			TraceAddress: trace.TraceAddress{0},
			CallType:     trace.DelegateCall,
			From:         contract,
			To:           impl,
			Status:       trace.Success,
		},
	}
	insp, err := trace.Build(frames, nil, trace.TxMeta{Hash: common.HexToHash("0x1"), Block: 1})
	require.NoError(t, err)
	require.NotNil(t, insp.ProxyImpl)
	require.Equal(t, impl, *insp.ProxyImpl)
}

func TestBuildRejectsMissingParent(t *testing.T) {
	frames := []trace.RawFrame{
		rootFrame(trace.Success),
		{TraceAddress: trace.TraceAddress{0, 0}, CallType: trace.Call},
	}
	_, err := trace.Build(frames, nil, trace.TxMeta{Hash: common.HexToHash("0x1"), Block: 1})
	require.ErrorIs(t, err, trace.ErrMalformedTrace)
}

func TestBuildRejectsDuplicateAddress(t *testing.T) {
	frames := []trace.RawFrame{
		rootFrame(trace.Success),
		rootFrame(trace.Success),
	}
	_, err := trace.Build(frames, nil, trace.TxMeta{Hash: common.HexToHash("0x1"), Block: 1})
	require.ErrorIs(t, err, trace.ErrMalformedTrace)
}

func TestBuildAttachesLogsToTheirEmittingFrame(t *testing.T) {
	frames := []trace.RawFrame{
		rootFrame(trace.Success),
		{
			TraceAddress: trace.TraceAddress{0},
			CallType:     trace.Call,
			From:         contract,
			To:           pair,
			Status:       trace.Success,
		},
	}
	logs := []trace.Log{
		{TraceAddress: trace.TraceAddress{0}, Address: pair, Signature: common.HexToHash("0xfeed")},
	}
	insp, err := trace.Build(frames, logs, trace.TxMeta{Hash: common.HexToHash("0x1"), Block: 1})
	require.NoError(t, err)

	frame, idx := insp.FrameAt(trace.TraceAddress{0})
	require.NotEqual(t, -1, idx)
	require.Len(t, frame.Logs, 1)
	require.Equal(t, pair, frame.Logs[0].Address)
}

func TestBuildRejectsLogForUnknownFrame(t *testing.T) {
	frames := []trace.RawFrame{rootFrame(trace.Success)}
	logs := []trace.Log{{TraceAddress: trace.TraceAddress{0}, Address: pair}}
	_, err := trace.Build(frames, logs, trace.TxMeta{Hash: common.HexToHash("0x1"), Block: 1})
	require.ErrorIs(t, err, trace.ErrMalformedTrace)
}

// Invariant 1: after building, |actions| == |frames| and every
// TraceAddress is covered exactly once.
func TestInvariantActionsCoverEveryFrame(t *testing.T) {
	insp, err := testutil.Generate(testutil.DefaultOpts)
	require.NoError(t, err)
	require.Len(t, insp.Actions, len(insp.Frames))

	seen := make(map[string]bool)
	for _, a := range insp.Actions {
		key := a.TraceAddress.String()
		require.False(t, seen[key], "trace address %s covered twice", key)
		seen[key] = true
	}
}
