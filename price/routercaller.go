package price

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
)

// getAmountsOutABI is the single-method fragment for a Uniswap v2-style
// router's getAmountsOut(uint256,address[]) view function, parsed the
// same way abiregistry parses its embedded protocol fragments.
const getAmountsOutABI = `[{
	"name": "getAmountsOut",
	"type": "function",
	"stateMutability": "view",
	"inputs": [
		{"name": "amountIn", "type": "uint256"},
		{"name": "path", "type": "address[]"}
	],
	"outputs": [
		{"name": "amounts", "type": "uint256[]"}
	]
}]`

var routerABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(getAmountsOutABI))
	if err != nil {
		panic(fmt.Sprintf("price: parse router ABI: %v", err))
	}
	routerABI = parsed
}

// EthRouterCaller is the concrete RouterCaller backed by a live
// JSON-RPC node: it ABI-encodes getAmountsOut, issues an eth_call
// pinned to the historical block, and decodes the result.
type EthRouterCaller struct {
	client *ethclient.Client
	router common.Address
}

// NewEthRouterCaller builds a RouterCaller against router through client.
func NewEthRouterCaller(client *ethclient.Client, router common.Address) *EthRouterCaller {
	return &EthRouterCaller{client: client, router: router}
}

func (c *EthRouterCaller) GetAmountsOut(ctx context.Context, block uint64, amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error) {
	data, err := routerABI.Pack("getAmountsOut", amountIn.ToBig(), path)
	if err != nil {
		return nil, fmt.Errorf("price: pack getAmountsOut: %w", err)
	}

	msg := ethereum.CallMsg{To: &c.router, Data: data}
	out, err := c.client.CallContract(ctx, msg, new(big.Int).SetUint64(block))
	if err != nil {
		if isLikelyNoPool(err) {
			return nil, ErrNoPool
		}
		return nil, fmt.Errorf("price: getAmountsOut call: %w", err)
	}

	results, err := routerABI.Unpack("getAmountsOut", out)
	if err != nil {
		return nil, fmt.Errorf("price: unpack getAmountsOut: %w", err)
	}
	amounts, ok := results[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("price: unexpected getAmountsOut return shape")
	}

	out256 := make([]*uint256.Int, len(amounts))
	for i, a := range amounts {
		v, overflow := uint256.FromBig(a)
		if overflow {
			return nil, fmt.Errorf("price: amount %d overflows uint256", i)
		}
		out256[i] = v
	}
	return out256, nil
}

// isLikelyNoPool distinguishes a router revert (no path/liquidity) from
// a genuine transport failure. Routers revert with plain strings like
// "UniswapV2Library: INSUFFICIENT_LIQUIDITY" or "INVALID_PATH"; a
// revert of any kind here means no quote exists, never a retryable
// transient error.
func isLikelyNoPool(err error) bool {
	return strings.Contains(err.Error(), "revert") || strings.Contains(err.Error(), "execution reverted")
}

