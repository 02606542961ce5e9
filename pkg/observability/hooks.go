// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about rate gating, retries, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The Prometheus implementation lives in the prom subpackage and is
// registered by the serve command.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetGateHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Gate().OnQueued(ctx, depth)
//	// ... wait for admission ...
//	observability.Gate().OnAdmitted(ctx, waited)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Gate Hooks
// =============================================================================

// GateHooks receives events from the rate gate.
type GateHooks interface {
	// OnAdmitted records an admission and how long the call waited in the queue.
	OnAdmitted(ctx context.Context, waited time.Duration)

	// OnQueued records a call that could not be admitted immediately.
	OnQueued(ctx context.Context, depth int)

	// OnCompleted records the end of an admitted call.
	OnCompleted(ctx context.Context, duration time.Duration, err error)

	// OnAbandoned records a queued call whose context ended before admission.
	OnAbandoned(ctx context.Context, err error)
}

// =============================================================================
// Retry Hooks
// =============================================================================

// RetryHooks receives events from the backoff executor.
type RetryHooks interface {
	// OnRetry records a retry decision: the 1-based retry number, the
	// computed delay, and the failure that caused it.
	OnRetry(ctx context.Context, retry int, delay time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGateHooks is a no-op implementation of GateHooks.
type NoopGateHooks struct{}

func (NoopGateHooks) OnAdmitted(context.Context, time.Duration)         {}
func (NoopGateHooks) OnQueued(context.Context, int)                     {}
func (NoopGateHooks) OnCompleted(context.Context, time.Duration, error) {}
func (NoopGateHooks) OnAbandoned(context.Context, error)                {}

// NoopRetryHooks is a no-op implementation of RetryHooks.
type NoopRetryHooks struct{}

func (NoopRetryHooks) OnRetry(context.Context, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	gateHooks  GateHooks  = NoopGateHooks{}
	retryHooks RetryHooks = NoopRetryHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetGateHooks registers custom rate gate hooks.
// This should be called once at application startup.
func SetGateHooks(h GateHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gateHooks = h
	}
}

// SetRetryHooks registers custom retry hooks.
func SetRetryHooks(h RetryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		retryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Gate returns the registered rate gate hooks.
func Gate() GateHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gateHooks
}

// Retry returns the registered retry hooks.
func Retry() RetryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return retryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	gateHooks = NoopGateHooks{}
	retryHooks = NoopRetryHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
