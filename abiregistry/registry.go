// Package abiregistry holds the static, process-wide tables mapping
// 4-byte function selectors and 32-byte event topics to their
// protocol and ABI descriptor, and decodes calldata/logs against them.
//
// The registry is load-once: New parses the embedded per-protocol ABI
// fragments exactly once and returns an immutable, concurrency-safe
// Registry. Unknown selectors are never an error — Lookup simply
// reports ok=false so inspectors can treat the frame as "not mine".
package abiregistry

import (
	"embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mev-inspect-go/mevinspect/trace"
)

//go:embed abis/*.json
var fragments embed.FS

// protocolFiles maps embedded ABI fragment file names to the protocol
// they describe. The erc20 fragment is shared by every protocol's base
// token contracts and is registered last so it never shadows a
// protocol-specific method of the same selector.
var protocolFiles = map[string]trace.Protocol{
	"uniswap.json":  trace.Uniswap,
	"balancer.json": trace.Balancer,
	"curve.json":    trace.Curve,
	"aave.json":     trace.Aave,
	"compound.json": trace.Compound,
	"zerox.json":    trace.ZeroX,
	"dydx.json":     trace.DyDx,
	"erc20.json":    trace.UnknownProtocol,
}

// loadOrder fixes the registration order so that ties (unlikely, since
// real selectors rarely collide across unrelated protocols) resolve
// deterministically: protocol-specific tables first, erc20 last.
var loadOrder = []string{
	"uniswap.json", "balancer.json", "curve.json", "aave.json",
	"compound.json", "zerox.json", "dydx.json", "erc20.json",
}

// FunctionEntry pairs a decoded function descriptor with its protocol.
type FunctionEntry struct {
	Protocol trace.Protocol
	Method   *abi.Method
}

// EventEntry pairs a decoded event descriptor with its protocol.
type EventEntry struct {
	Protocol trace.Protocol
	Event    *abi.Event
}

// Registry is the immutable selector/topic lookup table. The zero value
// is not usable; construct with New.
type Registry struct {
	functions map[[4]byte]FunctionEntry
	events    map[common.Hash]EventEntry
}

// New parses the embedded ABI fragments and builds a Registry. It is
// meant to be called once at process startup (e.g. into a package-level
// var) and shared read-only across all subsequent transactions.
func New() (*Registry, error) {
	reg := &Registry{
		functions: make(map[[4]byte]FunctionEntry),
		events:    make(map[common.Hash]EventEntry),
	}
	for _, name := range loadOrder {
		protocol := protocolFiles[name]
		raw, err := fragments.ReadFile("abis/" + name)
		if err != nil {
			return nil, fmt.Errorf("abiregistry: read %s: %w", name, err)
		}
		parsed, err := abi.JSON(strings.NewReader(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("abiregistry: parse %s: %w", name, err)
		}

		for _, method := range parsed.Methods {
			m := method
			var sel [4]byte
			copy(sel[:], m.ID)
			if _, exists := reg.functions[sel]; !exists {
				reg.functions[sel] = FunctionEntry{Protocol: protocol, Method: &m}
			}
		}
		for _, event := range parsed.Events {
			e := event
			topic := common.BytesToHash(e.ID.Bytes())
			if _, exists := reg.events[topic]; !exists {
				reg.events[topic] = EventEntry{Protocol: protocol, Event: &e}
			}
		}
	}
	return reg, nil
}

// Lookup returns the function descriptor registered for a 4-byte
// selector, and false if none of the loaded protocols claim it.
func (r *Registry) Lookup(selector [4]byte) (FunctionEntry, bool) {
	e, ok := r.functions[selector]
	return e, ok
}

// LookupEvent returns the event descriptor registered for a topic0, and
// false if none of the loaded protocols claim it.
func (r *Registry) LookupEvent(topic0 common.Hash) (EventEntry, bool) {
	e, ok := r.events[topic0]
	return e, ok
}

// ErrDecodeFailed is returned by Decode/DecodeLog when the payload does
// not match the descriptor's parameter types (wrong length, malformed
// encoding). It is never fatal: the caller leaves the frame Unknown.
var ErrDecodeFailed = fmt.Errorf("abiregistry: decode failed")

// Decode unpacks calldata against a function descriptor's inputs. input
// is the full calldata; its leading 4-byte selector is skipped.
func Decode(method *abi.Method, input []byte) (map[string]any, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: input shorter than selector", ErrDecodeFailed)
	}
	values := make(map[string]any)
	if err := method.Inputs.UnpackIntoMap(values, input[4:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return values, nil
}

// DecodeLog unpacks a log's data against an event descriptor's
// non-indexed inputs. Indexed arguments must be decoded from topics
// separately by the caller (abi.ParseTopics).
func DecodeLog(event *abi.Event, data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := event.Inputs.UnpackIntoMap(values, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return values, nil
}
