// Package inspect holds the per-protocol Inspectors: the first
// classification pass over a trace.Inspection, each recognizing one
// DeFi protocol's calling convention and event shapes and attaching a
// trace.SpecificAction to the frames it claims.
package inspect

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// Inspector recognizes one protocol's calls and logs within an
// Inspection and classifies the frames it owns. Inspect must be
// idempotent, must never downgrade a Known classification back to
// Unknown, and must behave identically regardless of what order it
// runs in relative to other Inspectors (aside from Prune placement,
// which is restricted to strict descendants of a frame this call just
// classified as Known).
type Inspector interface {
	Name() string
	Inspect(insp *trace.Inspection, reg *abiregistry.Registry)
}

// Default returns the fixed-order inspector set used by the pipeline.
// ERC-20 is last: it only ever catches Transfer logs left over once
// every protocol-specific inspector has had a chance to absorb them
// into a composite action.
func Default() []Inspector {
	return []Inspector{
		uniswapInspector{},
		balancerInspector{},
		curveInspector{},
		aaveInspector{},
		compoundInspector{},
		zeroXInspector{},
		dydxInspector{},
		erc20Inspector{},
	}
}

// selectorOf reports the 4-byte function selector prefixing calldata,
// and false if input is too short to carry one.
func selectorOf(input []byte) ([4]byte, bool) {
	if len(input) < 4 {
		return [4]byte{}, false
	}
	var sel [4]byte
	copy(sel[:], input[:4])
	return sel, true
}

// classify attaches action as the Known classification of frame i,
// updating both the Frame and its paired ActionEntry (Build appends
// them in lockstep so they always share an index), and records the
// protocol as observed.
func classify(insp *trace.Inspection, i int, protocol trace.Protocol, action trace.SpecificAction) {
	known := trace.Known(action)
	insp.Frames[i].Classification = known
	insp.Actions[i].Classification = known
	insp.AddProtocol(protocol)
}

// prune marks every strict descendant of parent that is still Unknown
// as Prune, once parent itself has just been classified as a composite
// action. Frames a different inspector already classified as Known are
// left untouched: pruning never downgrades a decision.
func prune(insp *trace.Inspection, parent trace.TraceAddress) {
	for _, f := range insp.DescendantsBFS(parent) {
		if !f.Classification.IsUnknown() {
			continue
		}
		f.Classification = trace.Prune()
		if i := insp.ActionAt(f.TraceAddress); i >= 0 {
			insp.Actions[i].Classification = trace.Prune()
		}
	}
}

func warnDecodeFailure(inspector string, frame *trace.Frame, err error) {
	log.Debug("inspect: decode failed", "inspector", inspector, "trace_address", frame.TraceAddress.String(), "err", err)
}
