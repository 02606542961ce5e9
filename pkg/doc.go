// Package pkg provides the libraries behind plantgate, the species lookup
// gateway of the garden planner.
//
// # Overview
//
// Every lookup flows through the same pipeline:
//
//	cache lookup (hit: done)
//	     ↓
//	[ratelimit] gate: 30 admissions per minute, 3 in flight, FIFO queue
//	     ↓
//	[httputil] backoff: HTTP 429 retried up to 3 times, 1s·2^n capped at 30s
//	     ↓
//	[integrations/perenual] GET /species-list or /species/details/{id}
//	     ↓
//	cache write (1 hour), conversion to [plant.Plant]
//
// # Packages
//
//   - [ratelimit]: sliding-window, bounded-concurrency admission gate
//   - [httputil]: retry policy with exponential backoff and jitter
//   - [cache]: memory, Redis and null backends plus key builders
//   - [integrations]: shared HTTP client wiring cache, gate and retry
//   - [integrations/perenual]: the Perenual species API adapter
//   - [plant]: the plant record handed to the planner
//   - [config]: TOML and environment configuration
//   - [server]: the HTTP API served by "plantgate serve"
//   - [observability]: hook interfaces, with Prometheus in observability/prom
//   - [errors]: coded errors shared by the CLI and the HTTP API
//
// # Quick Start
//
//	gate := ratelimit.New(ratelimit.DefaultConfig())
//	client := perenual.NewClient(os.Getenv("PERENUAL_API_KEY"), cache.NewMemoryCache(), time.Hour,
//	    integrations.WithGate(gate))
//
//	plants, err := client.Search(ctx, "tomato", 8)
//
// Share one gate between every client that spends the same API quota.
package pkg
