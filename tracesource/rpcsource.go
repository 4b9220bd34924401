package tracesource

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"

	"github.com/mev-inspect-go/mevinspect/trace"
)

// RPCSource fetches traces from a JSON-RPC node's debug_traceTransaction
// (Geth's built-in callTracer, configured to nest logs under their
// owning call, exactly the shape trace.Build expects) plus the
// transaction/receipt for the surrounding gas facts.
type RPCSource struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// Dial connects to a JSON-RPC endpoint (HTTP, WS, or IPC).
func Dial(ctx context.Context, url string) (*RPCSource, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return &RPCSource{rpcClient: client, ethClient: ethclient.NewClient(client)}, nil
}

func (s *RPCSource) Close() {
	s.rpcClient.Close()
}

// EthClient exposes the underlying ethclient.Client so callers (the
// price oracle's router caller) can share one connection instead of
// dialing a second time.
func (s *RPCSource) EthClient() *ethclient.Client {
	return s.ethClient
}

// TransactionHashesInBlock returns every transaction hash mined in
// block, in block order, for the blocks command's per-block fan-out.
func (s *RPCSource) TransactionHashesInBlock(ctx context.Context, block uint64) ([]trace.Hash, error) {
	b, err := s.ethClient.BlockByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, fmt.Errorf("%w: block %d: %v", ErrUnreachable, block, err)
	}
	hashes := make([]trace.Hash, 0, len(b.Transactions()))
	for _, tx := range b.Transactions() {
		hashes = append(hashes, tx.Hash())
	}
	return hashes, nil
}

// callFrame mirrors the JSON shape of Geth's built-in callTracer with
// withLog enabled.
type callFrame struct {
	Type    string      `json:"type"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Value   string      `json:"value"`
	Gas     string      `json:"gas"`
	GasUsed string      `json:"gasUsed"`
	Input   string      `json:"input"`
	Output  string      `json:"output"`
	Error   string      `json:"error"`
	Calls   []callFrame `json:"calls"`
	Logs    []callLog   `json:"logs"`
}

type callLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

func (s *RPCSource) Trace(ctx context.Context, hash trace.Hash) (*TxData, error) {
	var root callFrame
	err := s.rpcClient.CallContext(ctx, &root, "debug_traceTransaction", hash,
		map[string]any{"tracer": "callTracer", "tracerConfig": map[string]any{"withLog": true}})
	if err != nil {
		return nil, fmt.Errorf("%w: debug_traceTransaction: %v", ErrUnreachable, err)
	}

	receipt, err := s.ethClient.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction receipt: %v", ErrUnreachable, err)
	}
	tx, _, err := s.ethClient.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction by hash: %v", ErrUnreachable, err)
	}

	var frames []trace.RawFrame
	var logs []trace.Log
	flatten(root, trace.TraceAddress{}, &frames, &logs)

	status := trace.Success
	if receipt.Status == 0 {
		status = trace.Reverted
	}

	sender, err := s.ethClient.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
	if err != nil {
		log.Warn("tracesource: falling back to root frame caller as sender", "hash", hash, "err", err)
		if len(frames) > 0 {
			sender = frames[0].From
		}
	}

	return &TxData{
		Frames:   frames,
		Logs:     logs,
		From:     sender,
		GasPrice: u256FromBig(tx.GasPrice()),
		GasUsed:  receipt.GasUsed,
		Status:   status,
		Block:    receipt.BlockNumber.Uint64(),
	}, nil
}

func flatten(f callFrame, addr trace.TraceAddress, frames *[]trace.RawFrame, logs *[]trace.Log) {
	rf := trace.RawFrame{
		TraceAddress: addr,
		CallType:     callTypeOf(f.Type),
		From:         common.HexToAddress(f.From),
		To:           common.HexToAddress(f.To),
		Input:        hexutil.MustDecode(orZeroHex(f.Input)),
		Output:       hexutil.MustDecode(orZeroHex(f.Output)),
		Value:        u256FromHex(f.Value),
		GasUsed:      u256FromHex(f.GasUsed),
		Status:       trace.Success,
		Subtraces:    len(f.Calls),
	}
	if f.Error != "" {
		rf.Status = trace.Reverted
	}
	*frames = append(*frames, rf)

	for _, l := range f.Logs {
		topics := make([]trace.Hash, len(l.Topics))
		for i, t := range l.Topics {
			topics[i] = common.HexToHash(t)
		}
		var sig trace.Hash
		if len(topics) > 0 {
			sig = topics[0]
		}
		*logs = append(*logs, trace.Log{
			TraceAddress: addr,
			Address:      common.HexToAddress(l.Address),
			Signature:    sig,
			Topics:       topics,
			Data:         hexutil.MustDecode(orZeroHex(l.Data)),
		})
	}

	for i, child := range f.Calls {
		childAddr := append(append(trace.TraceAddress{}, addr...), i)
		flatten(child, childAddr, frames, logs)
	}
}

func callTypeOf(t string) trace.CallType {
	switch t {
	case "CALL":
		return trace.Call
	case "CALLCODE":
		return trace.CallCode
	case "DELEGATECALL":
		return trace.DelegateCall
	case "STATICCALL":
		return trace.StaticCall
	case "CREATE", "CREATE2":
		return trace.Create
	case "SELFDESTRUCT":
		return trace.Suicide
	default:
		return trace.Call
	}
}

func orZeroHex(s string) string {
	if s == "" {
		return "0x"
	}
	return s
}

func u256FromHex(s string) *uint256.Int {
	if s == "" {
		return uint256.NewInt(0)
	}
	v, err := hexutil.DecodeBig(s)
	if err != nil {
		return uint256.NewInt(0)
	}
	return u256FromBig(v)
}

func u256FromBig(v *big.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return u
}

