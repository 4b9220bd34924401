// Package trace provides the typed representation of an execution trace:
// the tree of call frames, event logs, and the per-frame classification
// slots that inspectors and reducers mutate in place.
package trace

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address is a 20-byte account or contract identifier.
type Address = common.Address

// Hash is a 32-byte identifier (transaction hash, topic, block hash, ...).
type Hash = common.Hash

// U256 is a 256-bit unsigned integer with saturating conversions at its
// construction points (see the u256FromBig helpers in inspect and
// tracesource).
type U256 = uint256.Int

// CallType enumerates how one frame invoked another.
type CallType int

const (
	Call CallType = iota
	CallCode
	DelegateCall
	StaticCall
	Create
	Reward
	Suicide
)

func (c CallType) String() string {
	switch c {
	case Call:
		return "call"
	case CallCode:
		return "callcode"
	case DelegateCall:
		return "delegatecall"
	case StaticCall:
		return "staticcall"
	case Create:
		return "create"
	case Reward:
		return "reward"
	case Suicide:
		return "suicide"
	default:
		return "unknown"
	}
}

// IsDelegate reports whether the call executes in the caller's context.
func (c CallType) IsDelegate() bool {
	return c == DelegateCall || c == CallCode
}

// Status is the execution outcome of a single frame.
type Status int

const (
	Success Status = iota
	Reverted
	OutOfGas
)

// TraceAddress is the path from the trace root to a frame, expressed as
// child indices. The empty sequence identifies the root. TraceAddresses
// within one trace form a prefix tree: every non-empty address's parent
// address must also be present.
type TraceAddress []int

// Len reports the depth of the address (0 for the root).
func (a TraceAddress) Len() int { return len(a) }

// Parent returns the address one level up, and false if a is the root.
func (a TraceAddress) Parent() (TraceAddress, bool) {
	if len(a) == 0 {
		return nil, false
	}
	return a[:len(a)-1], true
}

// IsAncestorOf reports whether a is a strict prefix of b, i.e. a is an
// ancestor frame of b in the call tree.
func (a TraceAddress) IsAncestorOf(b TraceAddress) bool {
	if len(a) >= len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Compare orders two TraceAddresses lexicographically on their integer
// sequences, matching the depth-first pre-order the trace was built in.
func (a TraceAddress) Compare(b TraceAddress) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func (a TraceAddress) String() string {
	out := make([]byte, 0, 2*len(a)+2)
	out = append(out, '[')
	for i, v := range a {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendInt(out, v)
	}
	out = append(out, ']')
	return string(out)
}

func appendInt(dst []byte, v int) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return append(dst, buf[i:]...)
}

// Protocol identifies the DeFi protocol a frame or action belongs to.
type Protocol int

const (
	UnknownProtocol Protocol = iota
	Uniswap
	Balancer
	Curve
	Aave
	Compound
	ZeroX
	DyDx
	Sushiswap
)

func (p Protocol) String() string {
	switch p {
	case Uniswap:
		return "uniswap"
	case Balancer:
		return "balancer"
	case Curve:
		return "curve"
	case Aave:
		return "aave"
	case Compound:
		return "compound"
	case ZeroX:
		return "zerox"
	case DyDx:
		return "dydx"
	case Sushiswap:
		return "sushiswap"
	default:
		return "unknown"
	}
}

// Log is one decoded event log emitted during the transaction. TraceAddress
// identifies the call frame that was executing when the log was recorded
// (the frame on top of the call stack at emission time, per the EVM's LOG
// opcode semantics), mirroring how a callTracer with withLog enabled nests
// logs inside their owning call. Topics follows go-ethereum's types.Log
// convention: Topics[0] is the event signature hash (topic0), and any
// indexed arguments follow at Topics[1:]. Signature duplicates Topics[0]
// for convenient registry lookups.
type Log struct {
	TraceAddress TraceAddress
	Address      Address
	Signature    Hash // == Topics[0]
	Topics       []Hash
	Data         []byte
	LogIndex     uint
}

// Frame is one node of the trace tree.
type Frame struct {
	TraceAddress TraceAddress
	CallType     CallType
	From, To     Address
	Input        []byte
	Output       []byte
	Value        *U256
	GasUsed      *U256
	Status       Status
	Subtraces    int
	Logs         []Log

	// Classification is mutated in place by inspectors and reducers.
	Classification Classification
}

// ClassificationKind tags the variant held by a Classification value.
type ClassificationKind int

const (
	ClassUnknown ClassificationKind = iota
	ClassPrune
	ClassKnown
)

// Classification is the mutable slot attached to every Frame.
type Classification struct {
	Kind   ClassificationKind
	Action SpecificAction
}

// Unknown is the zero-value classification.
func Unknown() Classification { return Classification{Kind: ClassUnknown} }

// Prune marks a frame as recognized noise to be ignored by later reducers.
func Prune() Classification { return Classification{Kind: ClassPrune} }

// Known wraps a decoded action.
func Known(a SpecificAction) Classification { return Classification{Kind: ClassKnown, Action: a} }

func (c Classification) IsUnknown() bool { return c.Kind == ClassUnknown }
func (c Classification) IsPrune() bool    { return c.Kind == ClassPrune }
func (c Classification) IsKnown() bool    { return c.Kind == ClassKnown }

// ActionKind tags the variant held by a SpecificAction.
type ActionKind int

const (
	ActionUnclassified ActionKind = iota
	ActionTransfer
	ActionDeposit
	ActionWithdrawal
	ActionTrade
	ActionLiquidation
	ActionAddLiquidity
	ActionFlashLoan
	ActionArbitrage
	ActionProfitableLiquidation
	ActionLiquidationCheck
)

func (k ActionKind) String() string {
	switch k {
	case ActionTransfer:
		return "transfer"
	case ActionDeposit:
		return "deposit"
	case ActionWithdrawal:
		return "withdrawal"
	case ActionTrade:
		return "trade"
	case ActionLiquidation:
		return "liquidation"
	case ActionAddLiquidity:
		return "addliquidity"
	case ActionFlashLoan:
		return "flashswap"
	case ActionArbitrage:
		return "arbitrage"
	case ActionProfitableLiquidation:
		return "profitableliquidation"
	case ActionLiquidationCheck:
		return "liquidationcheck"
	default:
		return "unclassified"
	}
}

// Transfer is an ERC-20 (or native) value movement from one account to
// another.
type Transfer struct {
	From, To Address
	Amount   *U256
	Token    Address
}

// Deposit is a value movement into a protocol (lending pool, vault, ...).
type Deposit struct {
	Token  Address
	Amount *U256
	From   Address
}

// Withdrawal is a value movement out of a protocol.
type Withdrawal struct {
	Token  Address
	Amount *U256
	To     Address
}

// Trade is a matched pair of opposite-direction Transfers: funds in from
// the trader, funds out back to the trader.
type Trade struct {
	T1, T2 Transfer
}

// Liquidation is a repayment of an under-collateralized position in
// exchange for discounted collateral.
type Liquidation struct {
	SentToken      Address
	SentAmount     *U256
	ReceivedToken  Address
	ReceivedAmount *U256
	From           Address
	LiquidatedUser Address
}

// AddLiquidity is a deposit of multiple tokens into a pool.
type AddLiquidity struct {
	Tokens  []Address
	Amounts []*U256
}

// Arbitrage is a closed cycle of Trades that returned more of the
// starting token than was spent.
type Arbitrage struct {
	Profit *U256
	Token  Address
	To     Address
}

// ProfitableLiquidation is a Liquidation whose priced collateral received
// exceeds the priced debt repaid.
type ProfitableLiquidation struct {
	Liquidation Liquidation
	Profit      *U256
	Token       Address
}

// SpecificAction is the closed sum of classifications an inspector or
// reducer may attach to a frame.
type SpecificAction struct {
	Kind ActionKind

	Transfer              *Transfer
	Deposit               *Deposit
	Withdrawal            *Withdrawal
	Trade                 *Trade
	Liquidation           *Liquidation
	AddLiquidity          *AddLiquidity
	Arbitrage             *Arbitrage
	ProfitableLiquidation *ProfitableLiquidation
}

func NewTransfer(t Transfer) SpecificAction {
	return SpecificAction{Kind: ActionTransfer, Transfer: &t}
}

func NewDeposit(d Deposit) SpecificAction {
	return SpecificAction{Kind: ActionDeposit, Deposit: &d}
}

func NewWithdrawal(w Withdrawal) SpecificAction {
	return SpecificAction{Kind: ActionWithdrawal, Withdrawal: &w}
}

func NewTrade(t Trade) SpecificAction {
	return SpecificAction{Kind: ActionTrade, Trade: &t}
}

func NewLiquidation(l Liquidation) SpecificAction {
	return SpecificAction{Kind: ActionLiquidation, Liquidation: &l}
}

func NewAddLiquidity(a AddLiquidity) SpecificAction {
	return SpecificAction{Kind: ActionAddLiquidity, AddLiquidity: &a}
}

func NewFlashLoan() SpecificAction {
	return SpecificAction{Kind: ActionFlashLoan}
}

func NewArbitrage(a Arbitrage) SpecificAction {
	return SpecificAction{Kind: ActionArbitrage, Arbitrage: &a}
}

func NewProfitableLiquidation(p ProfitableLiquidation) SpecificAction {
	return SpecificAction{Kind: ActionProfitableLiquidation, ProfitableLiquidation: &p}
}

func NewLiquidationCheck() SpecificAction {
	return SpecificAction{Kind: ActionLiquidationCheck}
}

// InspectionStatus mirrors the root frame's execution outcome.
type InspectionStatus int

const (
	InspectionSuccess InspectionStatus = iota
	InspectionReverted
)

// ActionEntry pairs a TraceAddress with the classification attached at
// that position. There is exactly one entry per Frame; the Reducer phase
// never removes entries, it marks the ones absorbed into a composite
// action as Prune.
type ActionEntry struct {
	TraceAddress TraceAddress
	Classification
}

// Inspection is the structured result of lifting a raw trace: a frame
// tree plus the ordered classification entries, owned for the lifetime
// of processing one transaction.
type Inspection struct {
	Status    InspectionStatus
	Hash      Hash
	Block     uint64
	Sender    Address
	Contract  *Address
	ProxyImpl *Address

	Frames    []*Frame
	Actions   []ActionEntry
	Protocols map[Protocol]struct{}

	// index maps each TraceAddress string to its position in Frames for O(1)
	// parent/child lookups during inspection and reduction.
	index map[string]int

	// children caches the parent -> child-index adjacency DescendantsBFS
	// walks over; built lazily since most Inspections are never walked.
	children map[string][]int
}

// AddProtocol records that a Protocol was observed during inspection.
func (insp *Inspection) AddProtocol(p Protocol) {
	if insp.Protocols == nil {
		insp.Protocols = make(map[Protocol]struct{})
	}
	insp.Protocols[p] = struct{}{}
}

// FrameAt returns the frame at the given position in Frames along with
// its index, or (nil, -1) if absent.
func (insp *Inspection) FrameAt(addr TraceAddress) (*Frame, int) {
	if insp.index == nil {
		return nil, -1
	}
	idx, ok := insp.index[addr.String()]
	if !ok {
		return nil, -1
	}
	return insp.Frames[idx], idx
}

// Children returns the direct children of the frame at parent, in
// trace order.
func (insp *Inspection) Children(parent TraceAddress) []*Frame {
	var out []*Frame
	for _, f := range insp.Frames {
		if len(f.TraceAddress) == len(parent)+1 && parent.IsAncestorOf(f.TraceAddress) {
			out = append(out, f)
		}
	}
	return out
}

// Descendants returns all strict descendants of the frame at parent.
func (insp *Inspection) Descendants(parent TraceAddress) []*Frame {
	var out []*Frame
	for _, f := range insp.Frames {
		if parent.IsAncestorOf(f.TraceAddress) {
			out = append(out, f)
		}
	}
	return out
}

// SetIndex rebuilds the TraceAddress -> Frames index. Builders and tests
// that construct an Inspection directly (bypassing Build) must call this
// once before using FrameAt.
func (insp *Inspection) SetIndex() {
	insp.index = make(map[string]int, len(insp.Frames))
	for i, f := range insp.Frames {
		insp.index[f.TraceAddress.String()] = i
	}
}

// ActionAt returns the index into Actions for the given TraceAddress, or
// -1 if not present.
func (insp *Inspection) ActionAt(addr TraceAddress) int {
	for i, a := range insp.Actions {
		if a.TraceAddress.Compare(addr) == 0 {
			return i
		}
	}
	return -1
}
