package inspect

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/trace"
)

// dydxInspector recognizes the dYdX Solo margin LogLiquidate event.
// Solo addresses positions by a numeric market id rather than a token
// address; soloMarketTokens is the mapping for Solo's original market
// set (WETH, SAI, USDC, DAI). A market id outside this table is left
// Unknown rather than guessed.
type dydxInspector struct{}

func (dydxInspector) Name() string { return "dydx" }

var soloMarketTokens = map[int64]trace.Address{
	0: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), // WETH
	1: common.HexToAddress("0x89d24A6b4CcB1B6fAA2625fE562bDD9a23260359"), // SAI
	2: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), // USDC
	3: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), // DAI
}

func (dydxInspector) Inspect(insp *trace.Inspection, reg *abiregistry.Registry) {
	for i, f := range insp.Frames {
		if !f.Classification.IsUnknown() {
			continue
		}
		for _, l := range f.Logs {
			entry, ok := reg.LookupEvent(l.Signature)
			if !ok || entry.Event.Name != "LogLiquidate" {
				continue
			}
			values, err := abiregistry.DecodeLog(entry.Event, l.Data)
			if err != nil {
				warnDecodeFailure("dydx", f, err)
				continue
			}

			var topics struct {
				SolidAccountOwner  trace.Address
				LiquidAccountOwner trace.Address
			}
			if err := decodeIndexed(entry.Event, l.Topics[1:], &topics); err != nil {
				warnDecodeFailure("dydx", f, err)
				continue
			}

			heldToken, heldOK := soloMarketTokens[marketID(values, "heldMarket")]
			owedToken, owedOK := soloMarketTokens[marketID(values, "owedMarket")]
			if !heldOK || !owedOK {
				continue
			}

			classify(insp, i, trace.DyDx, trace.NewLiquidation(trace.Liquidation{
				SentToken:      owedToken,
				SentAmount:     u256FromBig(absBig(bigOrZero(values, "solidOwedUpdateDeltaWei"))),
				ReceivedToken:  heldToken,
				ReceivedAmount: u256FromBig(absBig(bigOrZero(values, "solidHeldUpdateDeltaWei"))),
				From:           topics.SolidAccountOwner,
				LiquidatedUser: topics.LiquidAccountOwner,
			}))
			break
		}
	}
}

func marketID(values map[string]any, key string) int64 {
	return bigOrZero(values, key).Int64()
}

func absBig(v *big.Int) *big.Int {
	return new(big.Int).Abs(v)
}
