package trace

import (
	"fmt"
	"sort"
)

// RawFrame is one node of a raw trace as received from a trace source,
// prior to classification.
type RawFrame struct {
	TraceAddress TraceAddress
	CallType     CallType
	From, To     Address
	Input        []byte
	Output       []byte
	Value        *U256
	GasUsed      *U256
	Status       Status
	Subtraces    int
}

// TxMeta carries the transaction-level facts a trace source supplies
// alongside the frame stream.
type TxMeta struct {
	Hash  Hash
	Block uint64
}

// Build lifts a raw trace plus its logs into an Inspection. Frames are
// sorted into depth-first pre-order on their TraceAddress; every
// non-root frame's parent address must already be present in the
// stream, or Build fails with ErrMalformedTrace.
func Build(frames []RawFrame, logs []Log, meta TxMeta) (*Inspection, error) {
	sorted := make([]RawFrame, len(frames))
	copy(sorted, frames)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TraceAddress.Compare(sorted[j].TraceAddress) < 0
	})

	insp := &Inspection{
		Hash:    meta.Hash,
		Block:   meta.Block,
		Frames:  make([]*Frame, 0, len(sorted)),
		Actions: make([]ActionEntry, 0, len(sorted)),
		index:   make(map[string]int, len(sorted)),
	}

	seen := make(map[string]struct{}, len(sorted))
	var root *Frame
	for _, rf := range sorted {
		key := rf.TraceAddress.String()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate trace address %s", ErrMalformedTrace, key)
		}
		if parent, ok := rf.TraceAddress.Parent(); ok {
			if _, ok := seen[parent.String()]; !ok {
				return nil, fmt.Errorf("%w: missing parent for %s", ErrMalformedTrace, key)
			}
		}
		seen[key] = struct{}{}

		f := &Frame{
			TraceAddress:   rf.TraceAddress,
			CallType:       rf.CallType,
			From:           rf.From,
			To:             rf.To,
			Input:          rf.Input,
			Output:         rf.Output,
			Value:          rf.Value,
			GasUsed:        rf.GasUsed,
			Status:         rf.Status,
			Subtraces:      rf.Subtraces,
			Classification: Unknown(),
		}
		insp.index[key] = len(insp.Frames)
		insp.Frames = append(insp.Frames, f)
		insp.Actions = append(insp.Actions, ActionEntry{TraceAddress: rf.TraceAddress, Classification: Unknown()})

		if rf.TraceAddress.Len() == 0 {
			root = f
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root frame", ErrMalformedTrace)
	}

	insp.Sender = root.From
	contract := root.To
	insp.Contract = &contract

	for _, f := range insp.Frames {
		if f.CallType == DelegateCall && f.From == contract {
			impl := f.To
			insp.ProxyImpl = &impl
			break
		}
	}

	if root.Status == Reverted {
		insp.Status = InspectionReverted
	} else {
		insp.Status = InspectionSuccess
	}

	for _, l := range logs {
		idx, ok := insp.index[l.TraceAddress.String()]
		if !ok {
			return nil, fmt.Errorf("%w: log references unknown frame %s", ErrMalformedTrace, l.TraceAddress)
		}
		insp.Frames[idx].Logs = append(insp.Frames[idx].Logs, l)
	}

	return insp, nil
}
