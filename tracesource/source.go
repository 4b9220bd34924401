// Package tracesource defines the trace-fetch boundary the pipeline is
// driven through: the Source interface, RPCSource (a JSON-RPC-backed
// implementation, with no disk cache), and Fixture, a map-backed
// implementation that lets the pipeline be exercised end-to-end in
// tests.
package tracesource

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/mev-inspect-go/mevinspect/trace"
)

// ErrUnreachable signals that the underlying trace source (the RPC
// node) could not be reached at all, distinct from the
// transaction itself being absent or malformed.
var ErrUnreachable = errors.New("tracesource: unreachable")

// ErrNotFound signals the hash is not known to this source.
var ErrNotFound = errors.New("tracesource: transaction not found")

// TxData is everything a Source must supply about one transaction to
// drive the pipeline: its raw call frames and logs, plus the
// transaction/receipt facts the Evaluator needs.
type TxData struct {
	Frames   []trace.RawFrame
	Logs     []trace.Log
	From     trace.Address
	GasPrice *uint256.Int
	GasUsed  uint64
	Status   trace.Status
	Block    uint64
}

// Source fetches a transaction's trace plus the gas facts needed to
// evaluate it.
type Source interface {
	Trace(ctx context.Context, hash trace.Hash) (*TxData, error)
}
