package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// aaveInspector recognizes Aave liquidationCall across the v1 and v2
// selector sets carried by the embedded ABI fragment. sent_token is the
// debt asset repaid by the liquidator; received_token is the seized
// collateral.
type aaveInspector struct{}

func (aaveInspector) Name() string { return "aave" }

func (aaveInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		sel, ok := selectorOf(f.Input)
		if !ok {
			continue
		}
		entry, ok := reg.Lookup(sel)
		if !ok || entry.Protocol != trace.Aave || entry.Method.Name != "liquidationCall" {
			continue
		}

		args, err := abiregistry.Decode(entry.Method, f.Input)
		if err != nil {
			warnDecodeFailure("aave", f, err)
			continue
		}

		sentAmount := bigOrZero(args, "debtToCover")
		receivedAmount := sentAmount
		for _, l := range logsUnder(insp, f) {
			evt, ok := reg.LookupEvent(l.Signature)
			if !ok || evt.Event.Name != "LiquidationCall" {
				continue
			}
			values, err := abiregistry.DecodeLog(evt.Event, l.Data)
			if err != nil {
				continue
			}
			sentAmount = bigOrZero(values, "debtToCover")
			receivedAmount = bigOrZero(values, "liquidatedCollateralAmount")
			break
		}

		classify(insp, i, trace.Aave, trace.NewLiquidation(trace.Liquidation{
			SentToken:      addressOrZero(args, "debtAsset"),
			SentAmount:     u256FromBig(sentAmount),
			ReceivedToken:  addressOrZero(args, "collateralAsset"),
			ReceivedAmount: u256FromBig(receivedAmount),
			From:           f.From,
			LiquidatedUser: addressOrZero(args, "user"),
		}))
		prune(insp, f.TraceAddress)
	}
}
