package inspect

import (
	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// erc20Inspector recognizes the base ERC-20 Transfer event. It runs
// last in the fixed inspector order so it only ever catches transfers
// that no protocol-specific inspector absorbed into a composite action.
type erc20Inspector struct{}

func (erc20Inspector) Name() string { return "erc20" }

func (erc20Inspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		for _, l := range f.Logs {
			entry, ok := reg.LookupEvent(l.Signature)
			if !ok || entry.Event.Name != "Transfer" || len(l.Topics) != 3 {
				continue
			}

			var topics struct {
				From trace.Address
				To   trace.Address
			}
			if err := decodeIndexed(entry.Event, l.Topics[1:], &topics); err != nil {
				warnDecodeFailure("erc20", f, err)
				continue
			}
			values, err := abiregistry.DecodeLog(entry.Event, l.Data)
			if err != nil {
				warnDecodeFailure("erc20", f, err)
				continue
			}

			classify(insp, i, trace.UnknownProtocol, trace.NewTransfer(trace.Transfer{
				From:   topics.From,
				To:     topics.To,
				Amount: u256FromBig(bigOrZero(values, "value")),
				Token:  l.Address,
			}))
			break
		}
	}
}
