package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// balancerInspector recognizes Balancer vault swap and batchSwap calls.
// Each recognized call is reported as a single Trade, derived the same
// way as uniswapInspector: the first pair of ERC-20 transfers that move
// tokens between the trader and one counterparty. The individual hops
// of a batchSwap are not reported as separate Trades.
type balancerInspector struct{}

func (balancerInspector) Name() string { return "balancer" }

var balancerSwapMethods = map[string]struct{}{
	"swap":      {},
	"batchSwap": {},
}

func (balancerInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		sel, ok := selectorOf(f.Input)
		if !ok {
			continue
		}
		entry, ok := reg.Lookup(sel)
		if !ok || entry.Protocol != trace.Balancer {
			continue
		}
		if _, known := balancerSwapMethods[entry.Method.Name]; !known {
			continue
		}

		trade, ok := tradeFromTransfers(logsUnder(insp, f), reg, f.From)
		if !ok {
			continue
		}

		classify(insp, i, trace.Balancer, trace.NewTrade(trade))
		prune(insp, f.TraceAddress)
	}
}
