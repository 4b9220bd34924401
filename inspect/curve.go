package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// curveInspector recognizes Curve StableSwap pool exchange calls.
type curveInspector struct{}

func (curveInspector) Name() string { return "curve" }

var curveSwapMethods = map[string]struct{}{
	"exchange":            {},
	"exchange_underlying": {},
}

func (curveInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		sel, ok := selectorOf(f.Input)
		if !ok {
			continue
		}
		entry, ok := reg.Lookup(sel)
		if !ok || entry.Protocol != trace.Curve {
			continue
		}
		if _, known := curveSwapMethods[entry.Method.Name]; !known {
			continue
		}

		trade, ok := tradeFromTransfers(logsUnder(insp, f), reg, f.From)
		if !ok {
			continue
		}

		classify(insp, i, trace.Curve, trace.NewTrade(trade))
		prune(insp, f.TraceAddress)
	}
}
