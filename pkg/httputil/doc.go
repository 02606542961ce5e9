// Package httputil provides the retry discipline for outbound calls to the
// plant-data API.
//
// # Retry
//
// [RunWithRetry] re-invokes an operation while it fails with an upstream
// rate-limit signal (HTTP 429, see errors.RateLimitedError). Any other
// failure is returned immediately, without delay:
//
//	plants, err := httputil.RunWithRetry(ctx, httputil.DefaultPolicy(),
//	    func(ctx context.Context) ([]Plant, error) {
//	        return fetch(ctx)
//	    })
//
// The delay before retry n is min(1s * 2^n, 30s) plus up to 5s of uniform
// jitter, so concurrent callers that were throttled together do not retry
// together.
//
// # Configuration
//
// Default settings match the upstream quota:
//
//   - Max retries: 3 (4 attempts in total)
//   - Base backoff: 1 second, doubling per retry, capped at 30 seconds
//   - Jitter: up to 5 seconds
package httputil
