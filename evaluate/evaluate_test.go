package evaluate_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/evaluate"
	"github.com/mev-inspect-go/mevinspect/trace"
)

var weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

type stubOracle struct {
	price *uint256.Int
	err   error
}

func (s stubOracle) Quote(context.Context, common.Address, uint64) (*uint256.Int, error) {
	return s.price, s.err
}

func inspectionWith(action trace.SpecificAction) *trace.Inspection {
	insp := &trace.Inspection{Block: 1, Actions: []trace.ActionEntry{{Classification: trace.Known(action)}}}
	return insp
}

func TestEvaluateProfitableWhenRevenueExceedsCost(t *testing.T) {
	insp := inspectionWith(trace.NewArbitrage(trace.Arbitrage{
		Profit: uint256.NewInt(1_000_000),
		Token:  weth,
		To:     common.Address{},
	}))

	eval, err := evaluate.Evaluate(context.Background(), insp, 21000, uint256.NewInt(1), stubOracle{}, weth)
	require.NoError(t, err)
	assert.False(t, eval.Unprofitable)
	assert.Equal(t, uint256.NewInt(1_000_000-21000), eval.Profit)
}

func TestEvaluateUnprofitableClampsToZero(t *testing.T) {
	insp := inspectionWith(trace.NewArbitrage(trace.Arbitrage{
		Profit: uint256.NewInt(100),
		Token:  weth,
	}))

	eval, err := evaluate.Evaluate(context.Background(), insp, 1_000_000, uint256.NewInt(1), stubOracle{}, weth)
	require.NoError(t, err)
	assert.True(t, eval.Unprofitable)
	assert.True(t, eval.Profit.IsZero())
}

func TestEvaluatePricesNonWethProfitToken(t *testing.T) {
	token := common.HexToAddress("0xeeee111111111111111111111111111111111111")
	insp := inspectionWith(trace.NewProfitableLiquidation(trace.ProfitableLiquidation{
		Profit: uint256.NewInt(10),
		Token:  token,
	}))

	eval, err := evaluate.Evaluate(context.Background(), insp, 0, uint256.NewInt(0), stubOracle{price: uint256.NewInt(3)}, weth)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(30), eval.Revenue)
}

func TestEvaluateSkipsRevenueWhenNoPoolPriced(t *testing.T) {
	token := common.HexToAddress("0xeeee222222222222222222222222222222222222")
	insp := inspectionWith(trace.NewArbitrage(trace.Arbitrage{
		Profit: uint256.NewInt(10),
		Token:  token,
	}))

	eval, err := evaluate.Evaluate(context.Background(), insp, 0, uint256.NewInt(0), stubOracle{price: nil}, weth)
	require.NoError(t, err)
	assert.True(t, eval.Revenue.IsZero())
}
