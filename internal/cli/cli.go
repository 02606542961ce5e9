// Package cli implements the plantgate command-line interface.
package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantgate/pkg/cache"
	"github.com/matzehuels/plantgate/pkg/config"
	"github.com/matzehuels/plantgate/pkg/httputil"
	"github.com/matzehuels/plantgate/pkg/integrations"
	"github.com/matzehuels/plantgate/pkg/integrations/perenual"
	"github.com/matzehuels/plantgate/pkg/ratelimit"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "plantgate"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	return cfg, nil
}

// =============================================================================
// Lookup Stack
// =============================================================================

// stack is the wired lookup pipeline for one command run: a cache, the rate
// gate shared by every upstream call, and the Perenual client on top.
type stack struct {
	cfg    config.Config
	cache  cache.Cache
	gate   *ratelimit.Gate
	plants *perenual.Client
}

// newStack builds the lookup pipeline described by cfg. The caller must
// Close the returned stack.
func (c *CLI) newStack(ctx context.Context, cfg config.Config) (*stack, error) {
	backend, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gate := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute:  cfg.RateLimit.RequestsPerMinute,
		MaxConcurrentRequests: cfg.RateLimit.MaxConcurrent,
	}, ratelimit.WithLogger(c.Logger))

	policy := httputil.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay.Std(),
		MaxDelay:   cfg.Retry.MaxDelay.Std(),
		MaxJitter:  cfg.Retry.MaxJitter.Std(),
		Logger:     c.Logger,
	}

	opts := []integrations.Option{
		integrations.WithGate(gate),
		integrations.WithPolicy(policy),
		integrations.WithLogger(c.Logger),
		integrations.WithHTTPClient(&http.Client{Timeout: cfg.Perenual.Timeout.Std()}),
	}
	if cfg.Perenual.BaseURL != perenual.DefaultBaseURL {
		opts = append(opts, integrations.WithKeyer(cache.NewScopedKeyer(nil, cache.UpstreamScope(cfg.Perenual.BaseURL))))
	}
	plants := perenual.NewClient(cfg.Perenual.APIKey, backend, cfg.Cache.TTL.Std(), opts...).
		WithBaseURL(cfg.Perenual.BaseURL)

	return &stack{cfg: cfg, cache: backend, gate: gate, plants: plants}, nil
}

func (s *stack) Close() error {
	return s.cache.Close()
}

func newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		client, err := cache.DialRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(client, cfg.Cache.RedisPrefix), nil
	default:
		return cache.NewMemoryCache(
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithSweepInterval(cfg.Cache.SweepInterval.Std()),
		), nil
	}
}
