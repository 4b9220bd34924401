package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// zeroXInspector recognizes 0x exchange fillOrder and marketSellOrders
// calls. Token addresses are packed into the order's maker/takerAssetData
// rather than passed as plain addresses, so (as with the AMM inspectors)
// the Trade's two legs are read off the surrounding ERC-20 transfers
// instead of decoding the asset-data proxy encoding.
type zeroXInspector struct{}

func (zeroXInspector) Name() string { return "zerox" }

var zeroXTradeMethods = map[string]struct{}{
	"fillOrder":        {},
	"marketSellOrders": {},
}

func (zeroXInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		sel, ok := selectorOf(f.Input)
		if !ok {
			continue
		}
		entry, ok := reg.Lookup(sel)
		if !ok || entry.Protocol != trace.ZeroX {
			continue
		}
		if _, known := zeroXTradeMethods[entry.Method.Name]; !known {
			continue
		}

		trade, ok := tradeFromTransfers(logsUnder(insp, f), reg, f.From)
		if !ok {
			continue
		}

		classify(insp, i, trace.ZeroX, trace.NewTrade(trade))
		prune(insp, f.TraceAddress)
	}
}
