package price

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/time/rate"
)

// RateLimitedRouterCaller paces calls to an underlying RouterCaller so a
// historical-pricing backfill over many blocks cannot overrun the
// archival node's rate limit; the oracle's own LRU cache and
// singleflight coalescing already remove duplicate calls, this limiter
// bounds what's left.
type RateLimitedRouterCaller struct {
	inner   RouterCaller
	limiter *rate.Limiter
}

// NewRateLimitedRouterCaller paces inner to at most requestsPerSecond
// GetAmountsOut calls per second, with a one-request burst.
func NewRateLimitedRouterCaller(inner RouterCaller, requestsPerSecond float64) *RateLimitedRouterCaller {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 20
	}
	return &RateLimitedRouterCaller{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (r *RateLimitedRouterCaller) GetAmountsOut(ctx context.Context, block uint64, amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.GetAmountsOut(ctx, block, amountIn, path)
}
