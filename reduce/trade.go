package reduce

import (
	"context"

	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// tradeReducer promotes a pair of opposite-direction Transfers on the
// same counterparty into a Trade. It catches transfers that no
// protocol-specific Inspector recognized as belonging to a swap,
// e.g. a DEX clone the registry has no ABI fragment for.
type tradeReducer struct{}

func (tradeReducer) Name() string { return "trade" }

func (tradeReducer) Reduce(_ context.Context, insp *trace.Inspection, _ price.Oracle) error {
	for i := range insp.Actions {
		t1, ok := transferAt(insp, i)
		if !ok {
			continue
		}
		for j := i + 1; j < len(insp.Actions); j++ {
			t2, ok := transferAt(insp, j)
			if !ok {
				continue
			}
			if t1.To != t2.From || t2.To != t1.From {
				continue
			}
			setAction(insp, i, trace.NewTrade(trace.Trade{T1: t1, T2: t2}))
			setPrune(insp, j)
			break
		}
	}
	return nil
}

func transferAt(insp *trace.Inspection, i int) (trace.Transfer, bool) {
	c := insp.Actions[i].Classification
	if !c.IsKnown() || c.Action.Kind != trace.ActionTransfer {
		return trace.Transfer{}, false
	}
	return *c.Action.Transfer, true
}

func setAction(insp *trace.Inspection, i int, action trace.SpecificAction) {
	known := trace.Known(action)
	insp.Frames[i].Classification = known
	insp.Actions[i].Classification = known
}

func setPrune(insp *trace.Inspection, i int) {
	insp.Frames[i].Classification = trace.Prune()
	insp.Actions[i].Classification = trace.Prune()
}
