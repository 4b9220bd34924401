package main

import (
	"time"

	"github.com/mev-inspect-go/mevinspect/evaluate"
	"github.com/mev-inspect-go/mevinspect/store"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// toInspectionRow flattens a classified Inspection plus its priced
// Evaluation into the three-table store.Inspection the Repository
// persists, matching the relational schema's shape.
func toInspectionRow(insp *trace.Inspection, eval *evaluate.Evaluation) store.Inspection {
	status := "success"
	if insp.Status == trace.InspectionReverted {
		status = "reverted"
	}

	protocols := make([]string, 0, len(insp.Protocols))
	for p := range insp.Protocols {
		protocols = append(protocols, p.String())
	}
	actions := make([]string, 0, len(eval.Actions))
	for _, a := range eval.Actions {
		actions = append(actions, a.String())
	}

	contract := ""
	if insp.Contract != nil {
		contract = insp.Contract.Hex()
	}
	proxyImpl := ""
	if insp.ProxyImpl != nil {
		proxyImpl = insp.ProxyImpl.Hex()
	}

	record := store.InspectionRecord{
		Hash:        insp.Hash.Hex(),
		Status:      status,
		BlockNumber: insp.Block,
		GasPrice:    eval.GasPrice.Dec(),
		GasUsed:     eval.GasUsed,
		Revenue:     eval.Revenue.Dec(),
		Protocols:   protocols,
		Actions:     actions,
		EOA:         insp.Sender.Hex(),
		Contract:    contract,
		ProxyImpl:   proxyImpl,
		InsertedAt:  time.Unix(0, 0).UTC(),
	}

	calls := make([]store.InternalCallRecord, 0, len(insp.Frames))
	for i, f := range insp.Frames {
		if f.Classification.IsPrune() {
			continue
		}
		calls = append(calls, store.InternalCallRecord{
			TransactionHash: record.Hash,
			TraceAddress:    []int(f.TraceAddress),
			CallType:        toStoreCallType(f.CallType),
			Value:           f.Value.Dec(),
			GasUsed:         f.GasUsed.Dec(),
			Caller:          f.From.Hex(),
			Callee:          f.To.Hex(),
			Classification:  toStoreClassification(insp.Actions[i].Classification),
		})
	}

	var logs []store.EventLogRecord
	for _, f := range insp.Frames {
		for _, l := range f.Logs {
			topics := make([]string, len(l.Topics))
			for i, t := range l.Topics {
				topics[i] = t.Hex()
			}
			logs = append(logs, store.EventLogRecord{
				Address:         l.Address.Hex(),
				TransactionHash: record.Hash,
				Signature:       l.Signature.Hex(),
				Topics:          topics,
				Data:            l.Data,
				LogIndex:        l.LogIndex,
				BlockNumber:     insp.Block,
			})
		}
	}

	return store.Inspection{Record: record, Calls: calls, Logs: logs}
}

func toStoreCallType(c trace.CallType) store.CallType {
	switch c {
	case trace.Call:
		return store.CallTypeCall
	case trace.CallCode:
		return store.CallTypeCallCode
	case trace.DelegateCall:
		return store.CallTypeDelegateCall
	case trace.StaticCall:
		return store.CallTypeStaticCall
	default:
		return store.CallTypeNone
	}
}

func toStoreClassification(c trace.Classification) store.CallClassification {
	if !c.IsKnown() {
		return store.ClassificationUnknown
	}
	switch c.Action.Kind {
	case trace.ActionDeposit:
		return store.ClassificationDeposit
	case trace.ActionWithdrawal:
		return store.ClassificationWithdrawal
	case trace.ActionTransfer:
		return store.ClassificationTransfer
	case trace.ActionLiquidation, trace.ActionProfitableLiquidation:
		return store.ClassificationLiquidation
	case trace.ActionAddLiquidity:
		return store.ClassificationAddLiquidity
	case trace.ActionTrade, trace.ActionArbitrage:
		return store.ClassificationSwap
	case trace.ActionFlashLoan:
		return store.ClassificationFlashSwap
	default:
		return store.ClassificationUnknown
	}
}
