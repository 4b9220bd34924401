package reduce

import (
	"context"

	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// cleanupReducer prunes plain Transfer actions that duplicate a leg
// already folded into a composite action (Trade, Liquidation,
// ProfitableLiquidation) elsewhere in the Inspection. An Arbitrage
// carries no transfer legs, so it contributes none. It runs last so
// every other reducer has had a chance to compose first.
type cleanupReducer struct{}

func (cleanupReducer) Name() string { return "cleanup" }

func (cleanupReducer) Reduce(_ context.Context, insp *trace.Inspection, _ price.Oracle) error {
	legs := compositeTransferLegs(insp)

	for i, a := range insp.Actions {
		if !a.Classification.IsKnown() || a.Classification.Action.Kind != trace.ActionTransfer {
			continue
		}
		t := *a.Classification.Action.Transfer
		if legs[transferKey(t)] {
			setPrune(insp, i)
		}
	}
	return nil
}

type transferLeg struct {
	from, to, token trace.Address
}

func transferKey(t trace.Transfer) transferLeg {
	return transferLeg{from: t.From, to: t.To, token: t.Token}
}

func compositeTransferLegs(insp *trace.Inspection) map[transferLeg]bool {
	legs := make(map[transferLeg]bool)
	for _, a := range insp.Actions {
		if !a.Classification.IsKnown() {
			continue
		}
		switch a.Classification.Action.Kind {
		case trace.ActionTrade:
			t := a.Classification.Action.Trade
			legs[transferKey(t.T1)] = true
			legs[transferKey(t.T2)] = true
		case trace.ActionLiquidation:
			l := a.Classification.Action.Liquidation
			legs[transferLeg{from: l.From, to: l.LiquidatedUser, token: l.SentToken}] = true
			legs[transferLeg{from: l.LiquidatedUser, to: l.From, token: l.ReceivedToken}] = true
		case trace.ActionProfitableLiquidation:
			l := a.Classification.Action.ProfitableLiquidation.Liquidation
			legs[transferLeg{from: l.From, to: l.LiquidatedUser, token: l.SentToken}] = true
			legs[transferLeg{from: l.LiquidatedUser, to: l.From, token: l.ReceivedToken}] = true
		}
	}
	return legs
}
