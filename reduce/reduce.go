// Package reduce holds the cross-cutting Reducers: the second
// classification pass that looks across already-classified frames for
// multi-action patterns (trades, arbitrage cycles, profitable
// liquidations) and coalesces them into composite actions.
package reduce

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// Reducer operates on an already-inspected Inspection looking for
// multi-action patterns. Reducers run in a fixed order and must be
// idempotent: Reduce;Reduce must be equivalent to a single Reduce.
type Reducer interface {
	Name() string
	Reduce(ctx context.Context, insp *trace.Inspection, oracle price.Oracle) error
}

// Default returns the fixed-order reducer set used by the pipeline.
// weth is the token ProfitableLiquidation profits are denominated in.
func Default(weth common.Address) []Reducer {
	return []Reducer{
		tradeReducer{},
		arbitrageReducer{},
		liquidationProfitReducer{weth: weth},
		cleanupReducer{},
	}
}
