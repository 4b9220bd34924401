package reduce_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/reduce"
	"github.com/mev-inspect-go/mevinspect/trace"
)

var (
	alice = common.HexToAddress("0xbbbb111111111111111111111111111111111111")
	pairA = common.HexToAddress("0xbbbb222222222222222222222222222222222222")
	pairB = common.HexToAddress("0xbbbb333333333333333333333333333333333333")
	tokX  = common.HexToAddress("0xbbbb444444444444444444444444444444444444")
	tokY  = common.HexToAddress("0xbbbb555555555555555555555555555555555555")
	weth  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

type stubOracle struct {
	prices map[common.Address]*uint256.Int
}

func (s stubOracle) Quote(_ context.Context, token common.Address, _ uint64) (*uint256.Int, error) {
	return s.prices[token], nil
}

func knownInspection(entries ...trace.ActionEntry) *trace.Inspection {
	insp := &trace.Inspection{Block: 1}
	for i, e := range entries {
		insp.Frames = append(insp.Frames, &trace.Frame{TraceAddress: trace.TraceAddress{i}, Classification: e.Classification})
		e.TraceAddress = trace.TraceAddress{i}
		insp.Actions = append(insp.Actions, e)
	}
	insp.SetIndex()
	return insp
}

func transferEntry(from, to, token trace.Address, amount uint64) trace.ActionEntry {
	return trace.ActionEntry{Classification: trace.Known(trace.NewTransfer(trace.Transfer{
		From: from, To: to, Token: token, Amount: uint256.NewInt(amount),
	}))}
}

func TestTradeReducerPromotesOppositeTransfersAndIsIdempotent(t *testing.T) {
	insp := knownInspection(
		transferEntry(alice, pairA, tokX, 100),
		transferEntry(pairA, alice, tokY, 90),
	)
	r := reduce.Default(weth)[0]
	require.Equal(t, "trade", r.Name())

	require.NoError(t, r.Reduce(context.Background(), insp, nil))
	require.Equal(t, trace.ActionTrade, insp.Actions[0].Classification.Action.Kind)
	require.True(t, insp.Actions[1].Classification.IsPrune())

	// idempotent: running again changes nothing further
	require.NoError(t, r.Reduce(context.Background(), insp, nil))
	require.Equal(t, trace.ActionTrade, insp.Actions[0].Classification.Action.Kind)
}

func tradeEntry(t1, t2 trace.Transfer) trace.ActionEntry {
	return trace.ActionEntry{Classification: trace.Known(trace.NewTrade(trace.Trade{T1: t1, T2: t2}))}
}

func TestArbitrageReducerDetectsClosedCycle(t *testing.T) {
	t1 := trace.Transfer{From: alice, To: pairA, Token: tokX, Amount: uint256.NewInt(100)}
	t2 := trace.Transfer{From: pairA, To: alice, Token: tokY, Amount: uint256.NewInt(95)}
	t3 := trace.Transfer{From: alice, To: pairB, Token: tokY, Amount: uint256.NewInt(95)}
	t4 := trace.Transfer{From: pairB, To: alice, Token: tokX, Amount: uint256.NewInt(110)}

	insp := knownInspection(tradeEntry(t1, t2), tradeEntry(t3, t4))

	r := reduce.Default(weth)[1]
	require.Equal(t, "arbitrage", r.Name())
	require.NoError(t, r.Reduce(context.Background(), insp, nil))

	require.Equal(t, trace.ActionArbitrage, insp.Actions[0].Classification.Action.Kind)
	require.True(t, insp.Actions[1].Classification.IsPrune())
	profit := insp.Actions[0].Classification.Action.Arbitrage.Profit
	require.Equal(t, uint256.NewInt(10), profit)
}

func TestLiquidationProfitReducerPromotesProfitableLiquidation(t *testing.T) {
	debt := common.HexToAddress("0xcccc111111111111111111111111111111111111")
	collateral := common.HexToAddress("0xcccc222222222222222222222222222222222222")

	entry := trace.ActionEntry{Classification: trace.Known(trace.NewLiquidation(trace.Liquidation{
		SentToken: debt, SentAmount: uint256.NewInt(100),
		ReceivedToken: collateral, ReceivedAmount: uint256.NewInt(100),
		From: alice, LiquidatedUser: pairA,
	}))}
	insp := knownInspection(entry)

	oracle := stubOracle{prices: map[common.Address]*uint256.Int{
		debt:       uint256.NewInt(1),
		collateral: uint256.NewInt(2),
	}}

	r := reduce.Default(weth)[2]
	require.Equal(t, "liquidation_profit", r.Name())
	require.NoError(t, r.Reduce(context.Background(), insp, oracle))

	require.Equal(t, trace.ActionProfitableLiquidation, insp.Actions[0].Classification.Action.Kind)
	require.Equal(t, uint256.NewInt(100), insp.Actions[0].Classification.Action.ProfitableLiquidation.Profit)
}

func TestCleanupPrunesTransferDuplicatingACompositeLeg(t *testing.T) {
	t1 := trace.Transfer{From: alice, To: pairA, Token: tokX, Amount: uint256.NewInt(100)}
	t2 := trace.Transfer{From: pairA, To: alice, Token: tokY, Amount: uint256.NewInt(90)}

	insp := knownInspection(tradeEntry(t1, t2), transferEntry(alice, pairA, tokX, 100))

	r := reduce.Default(weth)[3]
	require.Equal(t, "cleanup", r.Name())
	require.NoError(t, r.Reduce(context.Background(), insp, nil))

	require.True(t, insp.Actions[1].Classification.IsPrune())
}
