package inspect

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// indexedArguments returns the subset of an event's inputs that are
// encoded into topics rather than the log's data payload.
func indexedArguments(event *abi.Event) abi.Arguments {
	var out abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			out = append(out, arg)
		}
	}
	return out
}

// decodeIndexed unpacks a log's indexed arguments (topics[1:]) into out,
// which must be a pointer to a struct with one exported field per
// indexed argument, named after the argument in CamelCase (abi.ParseTopics
// matches fields by name).
func decodeIndexed(event *abi.Event, topics []trace.Hash, out any) error {
	hashes := make([]common.Hash, len(topics))
	for i, t := range topics {
		hashes[i] = t
	}
	return abi.ParseTopics(out, indexedArguments(event), hashes)
}

// u256FromBig saturates a *big.Int into a *uint256.Int. Decoded ABI
// values are always non-negative 256-bit quantities, so this never
// truncates in practice; it guards against a malformed trusted input
// carrying an out-of-range value rather than panicking.
func u256FromBig(v *big.Int) *uint256.Int {
	u, overflow := uint256.FromBig(v)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return u
}

func bigOrZero(values map[string]any, key string) *big.Int {
	v, ok := values[key].(*big.Int)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func addressOrZero(values map[string]any, key string) trace.Address {
	v, ok := values[key].(common.Address)
	if !ok {
		return trace.Address{}
	}
	return v
}

func boolOrFalse(values map[string]any, key string) bool {
	v, ok := values[key].(bool)
	return ok && v
}

// decodeTransferLogs decodes every ERC-20 Transfer-shaped log found
// among logs against the registry, skipping anything that isn't a
// Transfer or fails to decode. Used by protocol inspectors that derive
// a Trade from the token movements surrounding a swap call rather than
// from a protocol-specific event.
func decodeTransferLogs(logs []trace.Log, reg *abiregistry.Registry) []trace.Transfer {
	var out []trace.Transfer
	for _, l := range logs {
		entry, ok := reg.LookupEvent(l.Signature)
		if !ok || entry.Event.Name != "Transfer" || len(l.Topics) != 3 {
			continue
		}
		var topics struct {
			From trace.Address
			To   trace.Address
		}
		if err := decodeIndexed(entry.Event, l.Topics[1:], &topics); err != nil {
			continue
		}
		values, err := abiregistry.DecodeLog(entry.Event, l.Data)
		if err != nil {
			continue
		}
		out = append(out, trace.Transfer{
			From:   topics.From,
			To:     topics.To,
			Amount: u256FromBig(bigOrZero(values, "value")),
			Token:  l.Address,
		})
	}
	return out
}

// logsUnder collects the logs attached to frame and to every strict
// descendant of it, in trace order.
func logsUnder(insp *trace.Inspection, frame *trace.Frame) []trace.Log {
	out := append([]trace.Log{}, frame.Logs...)
	for _, d := range insp.Descendants(frame.TraceAddress) {
		out = append(out, d.Logs...)
	}
	return out
}

// tradeFromTransfers finds a pair of opposite-direction ERC-20
// transfers between trader and a single counterparty among logs, and
// reports them as a Trade's two legs: t1 trader -> counterparty, t2
// counterparty -> trader.
func tradeFromTransfers(logs []trace.Log, reg *abiregistry.Registry, trader trace.Address) (trace.Trade, bool) {
	transfers := decodeTransferLogs(logs, reg)
	for _, out := range transfers {
		if out.From != trader {
			continue
		}
		for _, in := range transfers {
			if in.To == trader && in.From == out.To {
				return trace.Trade{T1: out, T2: in}, true
			}
		}
	}
	return trace.Trade{}, false
}
