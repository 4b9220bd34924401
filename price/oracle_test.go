package price_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/price"
)

var (
	weth  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	token = common.HexToAddress("0xdac17f958d2ee523a2206206994597c13d831ec7")
)

type fixtureRouter struct {
	calls   int32
	price   *uint256.Int
	failN   int32 // fail this many calls before succeeding
	noPool  bool
	permErr error
}

func (f *fixtureRouter) GetAmountsOut(ctx context.Context, block uint64, amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if f.noPool {
		return nil, price.ErrNoPool
	}
	if f.permErr != nil {
		return nil, f.permErr
	}
	if n <= f.failN {
		return nil, errors.New("transient rpc error")
	}
	return []*uint256.Int{amountIn, f.price}, nil
}

func newOracle(router price.RouterCaller) *price.AMMOracle {
	cfg := price.DefaultConfig()
	cfg.WETH = weth
	cfg.RetryBackoff = time.Millisecond
	return price.NewAMMOracle(router, cfg)
}

func TestQuoteReturnsOneForWETHWithoutCallingRouter(t *testing.T) {
	router := &fixtureRouter{price: uint256.NewInt(999)}
	o := newOracle(router)

	got, err := o.Quote(context.Background(), weth, 100)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1), got)
	assert.Zero(t, router.calls)
}

func TestQuoteCachesSecondLookup(t *testing.T) {
	router := &fixtureRouter{price: uint256.NewInt(42)}
	o := newOracle(router)

	_, err := o.Quote(context.Background(), token, 100)
	require.NoError(t, err)
	_, err = o.Quote(context.Background(), token, 100)
	require.NoError(t, err)

	assert.Equal(t, int32(1), router.calls)
}

func TestQuoteReturnsNilForNoPoolWithoutError(t *testing.T) {
	router := &fixtureRouter{noPool: true}
	o := newOracle(router)

	got, err := o.Quote(context.Background(), token, 100)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQuoteRetriesTransientErrorsThenSucceeds(t *testing.T) {
	router := &fixtureRouter{price: uint256.NewInt(7), failN: 2}
	o := newOracle(router)

	got, err := o.Quote(context.Background(), token, 100)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(7), got)
	assert.Equal(t, int32(3), router.calls)
}

func TestQuoteSurfacesPriceUnavailableAfterExhaustingRetries(t *testing.T) {
	router := &fixtureRouter{permErr: errors.New("boom")}
	o := newOracle(router)

	_, err := o.Quote(context.Background(), token, 100)
	require.ErrorIs(t, err, price.ErrPriceUnavailable)
}

func TestQuoteCoalescesConcurrentLookups(t *testing.T) {
	router := &fixtureRouter{price: uint256.NewInt(5)}
	o := newOracle(router)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Quote(context.Background(), token, 555)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, router.calls, int32(2))
}
