// Package price implements the historical, ETH-denominated price
// oracle: quoting a token at a past block through an AMM router,
// cached and single-flight-coalesced so concurrent lookups for the
// same (token, block) never fan out into duplicate RPCs.
package price

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/sync/singleflight"
)

// Oracle quotes the ETH-denominated price of one unit of token at the
// end of the given block.
type Oracle interface {
	Quote(ctx context.Context, token common.Address, block uint64) (*uint256.Int, error)
}

// RouterCaller is the on-chain call boundary an Oracle drives: a
// Uniswap v2-style router's getAmountsOut for one unit of the input
// token along path, evaluated as of block. Concrete implementations
// wrap an ethclient.Client bound contract call; tests use a fixture.
type RouterCaller interface {
	GetAmountsOut(ctx context.Context, block uint64, amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error)
}

// Config parameterizes an AMMOracle.
type Config struct {
	// WETH is the canonical wrapped-ether address quotes are denominated in.
	WETH common.Address
	// StablecoinPairs maps a stablecoin to the token it is routed
	// directly against: the router is asked for [token, pair] instead of
	// [token, WETH].
	StablecoinPairs map[common.Address]common.Address
	// CacheSize bounds the number of (token, block) entries retained.
	CacheSize int
	// MaxAttempts bounds retries of a transient RouterCaller error.
	MaxAttempts int
	// RetryBackoff is the delay between retry attempts.
	RetryBackoff time.Duration
}

// DefaultConfig returns sane defaults for MaxAttempts/RetryBackoff/CacheSize;
// callers must still set WETH.
func DefaultConfig() Config {
	return Config{
		CacheSize:    4096,
		MaxAttempts:  3,
		RetryBackoff: 200 * time.Millisecond,
	}
}

type cacheKey struct {
	token common.Address
	block uint64
}

// AMMOracle is the AMM-router-backed Oracle implementation.
type AMMOracle struct {
	router RouterCaller
	cfg    Config
	cache  *lruCache[cacheKey, *uint256.Int]
	group  singleflight.Group
}

// NewAMMOracle constructs an Oracle quoting against router.
func NewAMMOracle(router RouterCaller, cfg Config) *AMMOracle {
	return &AMMOracle{
		router: router,
		cfg:    cfg,
		cache:  newLRUCache[cacheKey, *uint256.Int](cfg.CacheSize),
	}
}

// Quote returns the ETH-denominated price of one unit of token at
// block, nil if no pool exists for it, or ErrPriceUnavailable if the
// router call kept failing transiently past the retry budget.
func (o *AMMOracle) Quote(ctx context.Context, token common.Address, block uint64) (*uint256.Int, error) {
	if token == o.cfg.WETH {
		return uint256.NewInt(1), nil
	}

	key := cacheKey{token: token, block: block}
	if v, ok := o.cache.Get(key); ok {
		return v, nil
	}

	sfKey := token.Hex() + ":" + strconv.FormatUint(block, 10)
	v, err, _ := o.group.Do(sfKey, func() (any, error) {
		price, err := o.fetchWithRetry(ctx, token, block)
		if err != nil {
			return nil, err
		}
		o.cache.Add(key, price)
		return price, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*uint256.Int), nil
}

func (o *AMMOracle) fetchWithRetry(ctx context.Context, token common.Address, block uint64) (*uint256.Int, error) {
	if o.router == nil {
		return nil, fmt.Errorf("%w: no router configured", ErrPriceUnavailable)
	}

	path := o.pathFor(token)

	var lastErr error
	attempts := o.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		amounts, err := o.router.GetAmountsOut(ctx, block, uint256.NewInt(1), path)
		if err == nil {
			if len(amounts) == 0 {
				return nil, fmt.Errorf("price: empty amounts for %s at block %d", token, block)
			}
			return amounts[len(amounts)-1], nil
		}
		if errors.Is(err, ErrNoPool) {
			log.Debug("price: no pool", "token", token, "block", block)
			return nil, nil
		}
		lastErr = err
		log.Warn("price: router call failed, retrying", "token", token, "block", block, "attempt", attempt+1, "err", err)
		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.cfg.RetryBackoff):
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, lastErr)
}

func (o *AMMOracle) pathFor(token common.Address) []common.Address {
	if direct, ok := o.cfg.StablecoinPairs[token]; ok {
		return []common.Address{token, direct}
	}
	return []common.Address{token, o.cfg.WETH}
}
