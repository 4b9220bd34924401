package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// compoundInspector recognizes Compound cToken market calls:
// liquidateBorrow becomes a Liquidation, repayBorrow/mint become a
// Deposit into the market, and redeem becomes a Withdrawal from it.
type compoundInspector struct{}

func (compoundInspector) Name() string { return "compound" }

func (compoundInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		sel, ok := selectorOf(f.Input)
		if !ok {
			continue
		}
		entry, ok := reg.Lookup(sel)
		if !ok || entry.Protocol != trace.Compound {
			continue
		}

		args, err := abiregistry.Decode(entry.Method, f.Input)
		if err != nil {
			warnDecodeFailure("compound", f, err)
			continue
		}

		switch entry.Method.Name {
		case "liquidateBorrow":
			classify(insp, i, trace.Compound, trace.NewLiquidation(trace.Liquidation{
				SentToken:      f.To,
				SentAmount:     u256FromBig(bigOrZero(args, "repayAmount")),
				ReceivedToken:  addressOrZero(args, "cTokenCollateral"),
				From:           f.From,
				LiquidatedUser: addressOrZero(args, "borrower"),
			}))
		case "repayBorrow", "mint":
			amountKey := "repayAmount"
			if entry.Method.Name == "mint" {
				amountKey = "mintAmount"
			}
			classify(insp, i, trace.Compound, trace.NewDeposit(trace.Deposit{
				Token:  f.To,
				Amount: u256FromBig(bigOrZero(args, amountKey)),
				From:   f.From,
			}))
		case "redeem":
			classify(insp, i, trace.Compound, trace.NewWithdrawal(trace.Withdrawal{
				Token:  f.To,
				Amount: u256FromBig(bigOrZero(args, "redeemTokens")),
				To:     f.From,
			}))
		default:
			continue
		}
		prune(insp, f.TraceAddress)
	}
}
