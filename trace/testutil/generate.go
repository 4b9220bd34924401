// Package testutil generates synthetic trace trees for property-based
// tests of the trace, inspect, reduce, and pipeline packages.
package testutil

import (
	"math/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// GenerateOpts bounds the shape of a generated trace tree.
type GenerateOpts struct {
	MaxDepth    int
	MaxChildren int
	Seed        int64
}

// DefaultOpts is a reasonable shape for fuzzing invariants 1-4.
var DefaultOpts = GenerateOpts{MaxDepth: 4, MaxChildren: 3, Seed: 1}

// Generate builds a random, well-formed raw frame stream (satisfying the
// prefix-tree invariant trace.Build requires) along with an empty log
// slice, and returns the built Inspection.
func Generate(opts GenerateOpts) (*trace.Inspection, error) {
	r := rand.New(rand.NewSource(opts.Seed))
	var frames []trace.RawFrame
	var walk func(addr trace.TraceAddress, depth int)
	walk = func(addr trace.TraceAddress, depth int) {
		frames = append(frames, randomFrame(r, addr))
		if depth >= opts.MaxDepth {
			return
		}
		children := r.Intn(opts.MaxChildren + 1)
		for i := 0; i < children; i++ {
			childAddr := make(trace.TraceAddress, len(addr)+1)
			copy(childAddr, addr)
			childAddr[len(addr)] = i
			walk(childAddr, depth+1)
		}
	}
	walk(trace.TraceAddress{}, 0)

	hash := common.BytesToHash([]byte("synthetic"))
	return trace.Build(frames, nil, trace.TxMeta{Hash: hash, Block: 1})
}

func randomFrame(r *rand.Rand, addr trace.TraceAddress) trace.RawFrame {
	return trace.RawFrame{
		TraceAddress: addr,
		CallType:     trace.CallType(r.Intn(int(trace.Suicide) + 1)),
		From:         randomAddress(r),
		To:           randomAddress(r),
		Value:        uint256.NewInt(uint64(r.Intn(1_000_000))),
		GasUsed:      uint256.NewInt(uint64(r.Intn(100_000))),
		Status:       trace.Success,
		Subtraces:    0,
	}
}

func randomAddress(r *rand.Rand) trace.Address {
	var a trace.Address
	r.Read(a[:])
	return a
}

// Permute returns a copy of order with its elements shuffled, used by
// permutation-invariance tests over inspector/reducer ordering.
func Permute[T any](r *rand.Rand, order []T) []T {
	out := make([]T, len(order))
	copy(out, order)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
