// Package ratelimit provides the rate gate that every upstream call passes
// through.
//
// A [Gate] admits a call immediately when both hold:
//
//   - fewer than MaxRequestsPerMinute calls were admitted in the last Window
//   - fewer than MaxConcurrentRequests admitted calls are still running
//
// Otherwise the call waits in a FIFO queue. The queue is re-examined after
// every enqueue and every completion, 100ms after a dequeued call finishes,
// and every second while the gate stays saturated. Queued calls are admitted
// strictly in arrival order; a new call never overtakes a queued one.
//
// The gate never retries and never swallows errors: whatever the operation
// returns is returned to the caller of [Gate.Execute].
package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantgate/pkg/observability"
)

// Defaults matching the upstream quota.
const (
	DefaultMaxRequestsPerMinute  = 30
	DefaultMaxConcurrentRequests = 3
	DefaultWindow                = time.Minute
	DefaultDrainDelay            = 100 * time.Millisecond
	DefaultRecheckDelay          = time.Second
)

// Config holds the admission limits. Zero fields take their defaults.
type Config struct {
	MaxRequestsPerMinute  int           // Admissions allowed per Window
	MaxConcurrentRequests int           // Admitted calls allowed to run at once
	Window                time.Duration // Sliding window for MaxRequestsPerMinute
	DrainDelay            time.Duration // Pause before the next pass after a dequeued call finishes
	RecheckDelay          time.Duration // Pause before re-checking a saturated gate
}

// DefaultConfig returns 30 requests per minute and 3 concurrent requests.
func DefaultConfig() Config {
	return Config{
		MaxRequestsPerMinute:  DefaultMaxRequestsPerMinute,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		Window:                DefaultWindow,
		DrainDelay:            DefaultDrainDelay,
		RecheckDelay:          DefaultRecheckDelay,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRequestsPerMinute <= 0 {
		c.MaxRequestsPerMinute = d.MaxRequestsPerMinute
	}
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = d.MaxConcurrentRequests
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.DrainDelay <= 0 {
		c.DrainDelay = d.DrainDelay
	}
	if c.RecheckDelay <= 0 {
		c.RecheckDelay = d.RecheckDelay
	}
	return c
}

// Operation is a unit of work run under the gate. It receives the context
// passed to [Gate.Execute].
type Operation func(ctx context.Context) error

// Stats is a point-in-time snapshot of the gate.
type Stats struct {
	InFlight    int `json:"in_flight"`    // Admitted calls still running
	Queued      int `json:"queued"`       // Calls waiting for admission
	WindowCount int `json:"window_count"` // Admissions within the current window
}

// Gate is a bounded-rate, bounded-concurrency admission gate.
//
// A Gate is safe for concurrent use. Create one per upstream quota and
// share it between every client that spends that quota.
type Gate struct {
	cfg    Config
	logger *log.Logger
	now    func() time.Time

	mu       sync.Mutex
	calls    []time.Time // admission times, oldest first
	inFlight int
	queue    list.List // of *pending

	timer    *time.Timer
	timerAt  time.Time
	timerGen uint64
}

// pending is a queued call. admitted is closed exactly once, by the queue
// processor, when the call takes a slot.
type pending struct {
	admitted   chan struct{}
	enqueuedAt time.Time
	elem       *list.Element // nil once dequeued
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used for queueing decisions.
func WithLogger(l *log.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock replaces time.Now for window bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a Gate with the given limits.
func New(cfg Config, opts ...Option) *Gate {
	g := &Gate{
		cfg:    cfg.withDefaults(),
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective limits.
func (g *Gate) Config() Config { return g.cfg }

// Execute runs op once the admission rule allows it and returns op's error
// untouched. If ctx ends while the call is still queued, the call is removed
// from the queue and ctx.Err() is returned without running op.
//
// A nil Gate runs op directly.
func (g *Gate) Execute(ctx context.Context, op Operation) (err error) {
	if g == nil {
		return op(ctx)
	}
	release, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		release()
		observability.Gate().OnCompleted(ctx, time.Since(start), err)
	}()
	return op(ctx)
}

// Do runs op under g and returns its result.
func Do[T any](ctx context.Context, g *Gate, op func(context.Context) (T, error)) (T, error) {
	var v T
	err := g.Execute(ctx, func(ctx context.Context) error {
		var err error
		v, err = op(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Acquire blocks until a slot is granted or ctx ends. The returned release
// function must be called exactly once when the work is done; extra calls
// are ignored. Prefer [Gate.Execute], which guarantees the release.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	now := g.now()
	g.pruneLocked(now)
	if g.queue.Len() == 0 && g.admissibleLocked() {
		g.admitLocked(now)
		g.mu.Unlock()
		observability.Gate().OnAdmitted(ctx, 0)
		return g.releaser(false), nil
	}

	p := &pending{admitted: make(chan struct{}), enqueuedAt: now}
	p.elem = g.queue.PushBack(p)
	depth := g.queue.Len()
	g.processLocked()
	g.mu.Unlock()

	g.logger.Debug("request queued", "depth", depth)
	observability.Gate().OnQueued(ctx, depth)

	select {
	case <-p.admitted:
		observability.Gate().OnAdmitted(ctx, g.now().Sub(p.enqueuedAt))
		return g.releaser(true), nil
	case <-ctx.Done():
	}

	g.mu.Lock()
	if p.elem != nil {
		g.queue.Remove(p.elem)
		p.elem = nil
		g.mu.Unlock()
		observability.Gate().OnAbandoned(ctx, ctx.Err())
		return nil, ctx.Err()
	}
	g.mu.Unlock()

	// Admitted at the same moment ctx ended: hand the slot back.
	g.releaser(true)()
	observability.Gate().OnAbandoned(ctx, ctx.Err())
	return nil, ctx.Err()
}

// Stats returns a snapshot of the gate's bookkeeping.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(g.now())
	return Stats{
		InFlight:    g.inFlight,
		Queued:      g.queue.Len(),
		WindowCount: len(g.calls),
	}
}

func (g *Gate) releaser(fromQueue bool) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.inFlight--
			g.processLocked()
			if fromQueue && g.queue.Len() > 0 {
				g.scheduleLocked(g.cfg.DrainDelay)
			}
		})
	}
}

// processLocked admits the oldest queued call if the admission rule holds,
// or schedules a re-check if it does not.
func (g *Gate) processLocked() {
	if g.queue.Len() == 0 {
		return
	}
	now := g.now()
	g.pruneLocked(now)
	if !g.admissibleLocked() {
		g.scheduleLocked(g.cfg.RecheckDelay)
		return
	}

	front := g.queue.Front()
	p := g.queue.Remove(front).(*pending)
	p.elem = nil
	g.admitLocked(now)
	close(p.admitted)
}

func (g *Gate) admissibleLocked() bool {
	return len(g.calls) < g.cfg.MaxRequestsPerMinute && g.inFlight < g.cfg.MaxConcurrentRequests
}

func (g *Gate) admitLocked(now time.Time) {
	g.inFlight++
	g.calls = append(g.calls, now)
}

// pruneLocked drops call records that fell out of the window.
func (g *Gate) pruneLocked(now time.Time) {
	i := 0
	for i < len(g.calls) && now.Sub(g.calls[i]) >= g.cfg.Window {
		i++
	}
	if i > 0 {
		g.calls = append(g.calls[:0], g.calls[i:]...)
	}
}

// scheduleLocked arranges a queue pass after d unless an earlier one is
// already pending.
func (g *Gate) scheduleLocked(d time.Duration) {
	at := time.Now().Add(d)
	if g.timer != nil && !g.timerAt.After(at) {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timerGen++
	gen := g.timerGen
	g.timerAt = at
	g.timer = time.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.timerGen == gen {
			g.timer = nil
		}
		g.processLocked()
	})
}
