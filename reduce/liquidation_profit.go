package reduce

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// liquidationProfitReducer prices a Liquidation's two legs in weth and
// promotes it to ProfitableLiquidation when the received collateral's
// priced value exceeds the repaid debt's. A pricing failure (no pool,
// oracle timeout) leaves the frame as a plain Liquidation rather than
// aborting the whole reduce pass.
type liquidationProfitReducer struct {
	weth common.Address
}

func (liquidationProfitReducer) Name() string { return "liquidation_profit" }

func (r liquidationProfitReducer) Reduce(ctx context.Context, insp *trace.Inspection, oracle price.Oracle) error {
	for i, a := range insp.Actions {
		if !a.Classification.IsKnown() || a.Classification.Action.Kind != trace.ActionLiquidation {
			continue
		}
		liq := *a.Classification.Action.Liquidation

		if frame, idx := insp.FrameAt(a.TraceAddress); idx >= 0 && frame.Status == trace.Reverted {
			// A reverted liquidationCall moved no collateral; it stays a
			// recorded Liquidation attempt, never a priced outcome.
			continue
		}

		sentPrice, err := oracle.Quote(ctx, liq.SentToken, insp.Block)
		if err != nil {
			log.Warn("reduce: pricing sent token failed, leaving plain liquidation", "err", err)
			continue
		}
		receivedPrice, err := oracle.Quote(ctx, liq.ReceivedToken, insp.Block)
		if err != nil {
			log.Warn("reduce: pricing received token failed, leaving plain liquidation", "err", err)
			continue
		}
		if sentPrice == nil || receivedPrice == nil {
			continue
		}

		sentValue := new(trace.U256).Mul(liq.SentAmount, sentPrice)
		receivedValue := new(trace.U256).Mul(liq.ReceivedAmount, receivedPrice)
		if receivedValue.Cmp(sentValue) <= 0 {
			continue
		}

		profit := new(trace.U256).Sub(receivedValue, sentValue)
		setAction(insp, i, trace.NewProfitableLiquidation(trace.ProfitableLiquidation{
			Liquidation: liq,
			Profit:      profit,
			Token:       r.weth,
		}))
	}
	return nil
}
