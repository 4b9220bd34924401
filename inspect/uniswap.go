package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// uniswapInspector recognizes Uniswap v2-shaped pair and router swaps
// (and the many v2 clones sharing the same ABI). A swap is identified
// by its call selector; its two legs are the ERC-20 transfers moving
// the input token from the trader to the pool and the output token
// back, which the Swap event itself does not name directly (it reports
// amount0/amount1, not token addresses) so the transfers are the more
// reliable signal here.
type uniswapInspector struct{}

func (uniswapInspector) Name() string { return "uniswap" }

var uniswapSwapMethods = map[string]struct{}{
	"swap":                     {},
	"swapExactTokensForTokens": {},
	"swapExactETHForTokens":    {},
	"swapExactTokensForETH":    {},
	"exactInputSingle":         {},
}

func (uniswapInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		sel, ok := selectorOf(f.Input)
		if !ok {
			continue
		}
		entry, ok := reg.Lookup(sel)
		if !ok || entry.Protocol != trace.Uniswap {
			continue
		}
		if _, known := uniswapSwapMethods[entry.Method.Name]; !known {
			continue
		}

		trade, ok := tradeFromTransfers(logsUnder(insp, f), reg, f.From)
		if !ok {
			continue
		}

		classify(insp, i, trace.Uniswap, trace.NewTrade(trade))
		prune(insp, f.TraceAddress)
	}
}
