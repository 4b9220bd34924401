package price

import "errors"

// ErrNoPool signals that the token has no WETH (or configured
// stablecoin) pool at the requested block. It is a RouterCaller
// sentinel, not a transport failure: Quote turns it into (nil, nil)
// rather than propagating it.
var ErrNoPool = errors.New("price: no pool for token at block")

// ErrPriceUnavailable is returned once a quote's underlying RPC calls
// have exhausted their retry budget.
var ErrPriceUnavailable = errors.New("price: unavailable")
