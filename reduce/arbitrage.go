package reduce

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// arbitrageReducer walks the sequence of Trade actions looking for a
// contiguous chain where each step's output token feeds the next
// step's input, closing back to the first step's input token and
// returning funds to the original sender. A one-trade "chain" is a
// simple round-trip, not a cycle, and never qualifies.
type arbitrageReducer struct{}

func (arbitrageReducer) Name() string { return "arbitrage" }

type tradeRef struct {
	index int
	trade trace.Trade
}

func (arbitrageReducer) Reduce(_ context.Context, insp *trace.Inspection, _ price.Oracle) error {
	var trades []tradeRef
	for i, a := range insp.Actions {
		if a.Classification.IsKnown() && a.Classification.Action.Kind == trace.ActionTrade {
			trades = append(trades, tradeRef{index: i, trade: *a.Classification.Action.Trade})
		}
	}

	i := 0
	for i < len(trades) {
		visited := mapset.NewThreadUnsafeSet[trace.Address]()
		visited.Add(trades[i].trade.T1.Token)
		j := i
		for j+1 < len(trades) && trades[j].trade.T2.Token == trades[j+1].trade.T1.Token && !visited.Contains(trades[j+1].trade.T1.Token) {
			j++
			visited.Add(trades[j].trade.T1.Token)
		}

		if j > i {
			first := trades[i].trade
			last := trades[j].trade
			if last.T2.Token == first.T1.Token && last.T2.To == first.T1.From && last.T2.Amount.Cmp(first.T1.Amount) > 0 {
				profit := new(trace.U256).Sub(last.T2.Amount, first.T1.Amount)
				setAction(insp, trades[i].index, trace.NewArbitrage(trace.Arbitrage{
					Profit: profit,
					Token:  first.T1.Token,
					To:     first.T1.From,
				}))
				for k := i + 1; k <= j; k++ {
					setPrune(insp, trades[k].index)
				}
			}
		}
		i = j + 1
	}
	return nil
}
