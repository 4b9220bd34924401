// Package evaluate turns a fully-reduced Inspection into its final
// economic verdict: gas cost against priced MEV revenue.
package evaluate

import (
	"context"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// Evaluation is the final, priced verdict for one transaction.
type Evaluation struct {
	Hash         trace.Hash
	Block        uint64
	GasUsed      uint64
	GasPrice     *uint256.Int
	Cost         *uint256.Int
	Revenue      *uint256.Int
	Profit       *uint256.Int
	Unprofitable bool
	Actions      []trace.ActionKind
}

// Evaluate computes an Evaluation for insp given the transaction's gas
// usage and price. Composite profit-bearing actions (Arbitrage,
// ProfitableLiquidation) are priced in weth via oracle at insp.Block
// and summed into revenue; an action whose pricing fails is logged and
// contributes no revenue. Profit clamps at zero and sets Unprofitable
// rather than going negative.
func Evaluate(ctx context.Context, insp *trace.Inspection, gasUsed uint64, gasPrice *uint256.Int, oracle price.Oracle, weth trace.Address) (*Evaluation, error) {
	cost := new(uint256.Int).Mul(uint256.NewInt(gasUsed), gasPrice)

	revenue := uint256.NewInt(0)
	kinds := make([]trace.ActionKind, 0, len(insp.Actions))
	for _, a := range insp.Actions {
		if !a.Classification.IsKnown() {
			continue
		}
		kinds = append(kinds, a.Classification.Action.Kind)

		switch a.Classification.Action.Kind {
		case trace.ActionArbitrage:
			arb := a.Classification.Action.Arbitrage
			priced, err := priceInWeth(ctx, oracle, arb.Token, arb.Profit, insp.Block, weth)
			if err != nil {
				log.Warn("evaluate: pricing arbitrage profit failed, leaving it out of revenue", "hash", insp.Hash, "err", err)
			}
			if priced != nil {
				revenue = new(uint256.Int).Add(revenue, priced)
			}
		case trace.ActionProfitableLiquidation:
			pl := a.Classification.Action.ProfitableLiquidation
			priced, err := priceInWeth(ctx, oracle, pl.Token, pl.Profit, insp.Block, weth)
			if err != nil {
				log.Warn("evaluate: pricing liquidation profit failed, leaving it out of revenue", "hash", insp.Hash, "err", err)
			}
			if priced != nil {
				revenue = new(uint256.Int).Add(revenue, priced)
			}
		}
	}

	eval := &Evaluation{
		Hash:     insp.Hash,
		Block:    insp.Block,
		GasUsed:  gasUsed,
		GasPrice: gasPrice,
		Cost:     cost,
		Revenue:  revenue,
		Actions:  kinds,
	}
	if revenue.Cmp(cost) > 0 {
		eval.Profit = new(uint256.Int).Sub(revenue, cost)
	} else {
		eval.Profit = uint256.NewInt(0)
		eval.Unprofitable = true
	}

	log.Info("evaluate: finished", "hash", insp.Hash, "revenue", eval.Revenue, "cost", eval.Cost, "profit", eval.Profit, "unprofitable", eval.Unprofitable)
	return eval, nil
}

// priceInWeth converts amount of token into weth terms at block. Profit
// already denominated in weth (token == weth) is returned unscaled.
func priceInWeth(ctx context.Context, oracle price.Oracle, token trace.Address, amount *uint256.Int, block uint64, weth trace.Address) (*uint256.Int, error) {
	if token == weth {
		return amount, nil
	}
	unitPrice, err := oracle.Quote(ctx, token, block)
	if err != nil {
		return nil, err
	}
	if unitPrice == nil {
		return nil, nil
	}
	return new(uint256.Int).Mul(amount, unitPrice), nil
}
