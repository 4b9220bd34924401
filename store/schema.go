package store

import "time"

// CallType mirrors the call_type enum from the relational schema.
type CallType string

const (
	CallTypeNone         CallType = "none"
	CallTypeCall         CallType = "call"
	CallTypeCallCode     CallType = "callcode"
	CallTypeDelegateCall CallType = "delegatecall"
	CallTypeStaticCall   CallType = "staticcall"
)

// CallClassification mirrors the call_classification enum.
type CallClassification string

const (
	ClassificationUnknown         CallClassification = "unknown"
	ClassificationDeposit         CallClassification = "deposit"
	ClassificationWithdrawal      CallClassification = "withdrawal"
	ClassificationTransfer        CallClassification = "transfer"
	ClassificationLiquidation     CallClassification = "liquidation"
	ClassificationAddLiquidity    CallClassification = "addliquidity"
	ClassificationRemoveLiquidity CallClassification = "removeliquidity"
	ClassificationRepay           CallClassification = "repay"
	ClassificationBorrow          CallClassification = "borrow"
	ClassificationSwap            CallClassification = "swap"
	ClassificationFlashSwap       CallClassification = "flashswap"
)

// InspectionRecord is one row of mev_inspections: the top-level,
// per-transaction summary.
type InspectionRecord struct {
	Hash                string   `json:"hash"`
	Status              string   `json:"status"`
	BlockNumber         uint64   `json:"block_number"`
	GasPrice            string   `json:"gas_price"`
	GasUsed             uint64   `json:"gas_used"`
	Revenue             string   `json:"revenue"`
	Protocols           []string `json:"protocols"`
	Actions             []string `json:"actions"`
	EOA                 string   `json:"eoa"`
	Contract            string   `json:"contract,omitempty"`
	ProxyImpl           string   `json:"proxy_impl,omitempty"`
	TransactionPosition int      `json:"transaction_position"`
	InsertedAt          time.Time `json:"inserted_at"`
}

// InternalCallRecord is one row of internal_calls: one per non-pruned
// frame in the final Inspection.
type InternalCallRecord struct {
	TransactionHash string             `json:"transaction_hash"`
	TraceAddress    []int              `json:"trace_address"`
	CallType        CallType           `json:"call_type"`
	Value           string             `json:"value"`
	GasUsed         string             `json:"gas_used"`
	Caller          string             `json:"caller"`
	Callee          string             `json:"callee"`
	Protocol        string             `json:"protocol,omitempty"`
	Input           []byte             `json:"input"`
	Classification  CallClassification `json:"classification"`
}

// EventLogRecord is one row of event_logs.
type EventLogRecord struct {
	Address           string   `json:"address"`
	TransactionHash   string   `json:"transaction_hash"`
	Signature         string   `json:"signature"`
	Topics            []string `json:"topics"`
	Data              []byte   `json:"data"`
	TransactionIndex  int      `json:"transaction_index"`
	LogIndex          uint     `json:"log_index"`
	BlockNumber       uint64   `json:"block_number"`
}

// Inspection bundles the three rows a single processed transaction
// produces, the unit Repository.Upsert writes and Repository.Delete
// removes. Rows are written and deleted one key at a time, not as one
// atomic batch.
type Inspection struct {
	Record InspectionRecord
	Calls  []InternalCallRecord
	Logs   []EventLogRecord
}
