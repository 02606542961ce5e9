// Package integrations provides the shared HTTP client for upstream plant
// data providers.
//
// # Overview
//
// Provider clients (see the perenual subpackage) embed [Client], which
// combines the response cache, the rate gate and the backoff executor:
//
//	gate := ratelimit.New(ratelimit.DefaultConfig())
//	c := integrations.NewClient(cache.NewMemoryCache(), "perenual:", time.Hour, nil,
//	    integrations.WithGate(gate))
//
//	var out payload
//	err := c.Cached(ctx, key, false, &out, func(ctx context.Context) error {
//	    return c.Get(ctx, url, &out)
//	})
//
// A cache hit never touches the gate or the network. A miss takes a gate
// slot, performs the request, retries only on HTTP 429 with exponential
// backoff, and stores the decoded value for the cache TTL.
//
// # Errors
//
// Status codes map to structured errors from pkg/errors:
//
//   - 429: *errors.RateLimitedError (the only retried failure)
//   - 404: NOT_FOUND, matching [ErrNotFound]
//   - 401, 403: UNAUTHORIZED, matching [ErrUnauthorized]
//   - anything else: UPSTREAM_ERROR; transport failures are NETWORK_ERROR
package integrations
