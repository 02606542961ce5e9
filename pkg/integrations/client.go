package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/plantgate/pkg/cache"
	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/httputil"
	"github.com/matzehuels/plantgate/pkg/observability"
	"github.com/matzehuels/plantgate/pkg/ratelimit"
)

// maxLoggedBody bounds how much of a raw response is written to debug logs.
const maxLoggedBody = 2048

// Client provides shared HTTP functionality for upstream API clients.
//
// Every cache miss runs through the same pipeline:
//
//	cache lookup -> coalesce identical misses -> rate gate -> retry on 429 -> GET -> decode -> cache write
//
// The gate slot is held for the whole retry sequence: backoff waits count
// against the concurrency ceiling and the sequence is one window admission.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	gate      *ratelimit.Gate
	policy    httputil.Policy
	logger    *log.Logger
	group     singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context a coalesced upstream call runs under. It is detached
// from every caller and cancelled once the last waiting caller has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Option configures a Client.
type Option func(*Client)

// WithGate routes every upstream call through g. Clients that spend the same
// upstream quota must share one gate.
func WithGate(g *ratelimit.Gate) Option {
	return func(c *Client) { c.gate = g }
}

// WithPolicy replaces the default retry policy.
func WithPolicy(p httputil.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger for cache and upstream diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithKeyer replaces the default cache key builder.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client with the given cache and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and a nil backend
// to disable caching.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if backend == nil {
		backend = cache.NullCache{}
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	c := &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		policy:    httputil.DefaultPolicy(),
		logger:    log.Default(),
		flights:   make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.Logger == nil {
		c.policy.Logger = c.logger
	}
	return c
}

// Keyer returns the cache key builder.
func (c *Client) Keyer() cache.Keyer { return c.keyer }

// Namespace returns the cache namespace passed to NewClient.
func (c *Client) Namespace() string { return c.namespace }

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Gate returns the rate gate, or nil when calls are not gated.
func (c *Client) Gate() *ratelimit.Gate { return c.gate }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache lookup is skipped but the result is still
// written. The fetch function should populate v; on success, v is stored in
// the cache.
//
// Concurrent misses for the same key are coalesced into one upstream call.
// That call is not bound to any single caller: each caller waits on its own
// ctx, and the call is cancelled only when every waiting caller has gone.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func(context.Context) error) error {
	keyType := keyTypeOf(key)
	if !refresh {
		if c.lookup(ctx, key, keyType, v) {
			return nil
		}
	}

	f := c.join(ctx, key)
	defer c.leave(key, f)

	ch := c.group.DoChan(key, func() (any, error) {
		defer c.land(key, f)
		if err := c.gate.Execute(f.ctx, func(ctx context.Context) error {
			return httputil.Retry(ctx, c.policy, fetch)
		}); err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "encode %s", keyType)
		}
		if err := c.cache.Set(f.ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(f.ctx, keyType, len(data))
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			return json.Unmarshal(res.Val.([]byte), v)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// join registers the caller as a waiter on the flight for key, starting one
// if none is open. The flight keeps ctx's values but not its cancellation.
func (c *Client) join(ctx context.Context, key string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++
	return f
}

// leave drops the caller from f. The last caller out cancels the flight and
// forgets the key, so later misses start a fresh call instead of joining a
// cancelled one.
func (c *Client) leave(key string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[key] == f {
		delete(c.flights, key)
		c.group.Forget(key)
	}
}

// land closes f to new waiters once its upstream call has finished.
func (c *Client) land(key string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flights[key] == f {
		delete(c.flights, key)
	}
}

// lookup decodes a fresh cache entry into v. Read and decode failures are
// treated as misses.
func (c *Client) lookup(ctx context.Context, key, keyType string, v any) bool {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}
	if ok && err == nil {
		if err := json.Unmarshal(data, v); err == nil {
			c.logger.Debug("cache hit", "key", key)
			observability.Cache().OnCacheHit(ctx, keyType)
			return true
		}
		c.logger.Debug("discarding undecodable cache entry", "key", key)
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return false
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It does not retry or gate; use it inside a [Client.Cached] fetch.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	c.logger.Debug("upstream response", "body", truncate(body, maxLoggedBody))
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return perrors.Wrap(perrors.ErrCodeUpstream, err, "decode upstream response")
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	c.logger.Debug("upstream request", "url", redactQuery(req.URL))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", path)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, time.Now()); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "read %s", path)
	}
	return body, nil
}

// checkStatus maps an upstream status to an error. Only 429 produces a
// retryable error.
func checkStatus(resp *http.Response, now time.Time) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return &perrors.RateLimitedError{
			RetryAfter: httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), now),
		}
	case code == http.StatusNotFound:
		return perrors.Wrap(perrors.ErrCodeNotFound, ErrNotFound, "status %d", code)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return perrors.Wrap(perrors.ErrCodeUnauthorized, ErrUnauthorized, "status %d", code)
	default:
		return perrors.Wrap(perrors.ErrCodeUpstream, fmt.Errorf("%w: status %d", ErrNetwork, code), "unexpected upstream status")
	}
}

// keyTypeOf returns the request kind of a key for metric labels: "search"
// or "species" wherever it appears (scoped keys carry a prefix), else the
// leading segment.
func keyTypeOf(key string) string {
	segs := strings.Split(key, ":")
	for _, seg := range segs {
		if seg == "search" || seg == "species" {
			return seg
		}
	}
	if len(segs) > 1 && segs[0] != "" {
		return segs[0]
	}
	return "other"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
