// Package pipeline wires the ABI registry, inspectors, and reducers
// into the single entry point that turns an already-built trace.Inspection
// into its final, fully-classified form.
package pipeline

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/inspect"
	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/reduce"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// Processor runs the fixed-order inspector phase followed by the
// fixed-order reducer phase over one Inspection at a time. It holds no
// per-transaction state and is safe to share across concurrent workers
// processing distinct Inspections.
type Processor struct {
	registry   *abiregistry.Registry
	inspectors []inspect.Inspector
	reducers   []reduce.Reducer
	oracle     price.Oracle
}

// New builds a Processor with the default fixed inspector and reducer
// order.
func New(registry *abiregistry.Registry, oracle price.Oracle, weth common.Address) *Processor {
	return &Processor{
		registry:   registry,
		inspectors: inspect.Default(),
		reducers:   reduce.Default(weth),
		oracle:     oracle,
	}
}

// Process runs every inspector over insp, then every reducer, in their
// fixed configured orders, and returns the same Inspection mutated in
// place. It fails only if a reducer's oracle-backed step returns a
// fatal, non-pricing error; unknown selectors and unpriceable tokens
// are not errors.
func (p *Processor) Process(ctx context.Context, insp *trace.Inspection) (*trace.Inspection, error) {
	log.Info("pipeline: processing transaction", "hash", insp.Hash, "block", insp.Block)

	for _, i := range p.inspectors {
		i.Inspect(insp, p.registry)
	}

	for _, r := range p.reducers {
		if err := r.Reduce(ctx, insp, p.oracle); err != nil {
			return nil, fmt.Errorf("pipeline: reducer %s: %w", r.Name(), err)
		}
	}

	return insp, nil
}
