// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/plantgate/pkg/observability"
	"github.com/matzehuels/plantgate/pkg/ratelimit"
)

const namespace = "plantgate"

// Metrics records gate, retry, cache and HTTP events.
type Metrics struct {
	GateAdmitted   prometheus.Counter
	GateQueued     prometheus.Counter
	GateAbandoned  prometheus.Counter
	GateWait       prometheus.Histogram
	GateCallTime   prometheus.Histogram
	Retries        prometheus.Counter
	RetryDelay     prometheus.Histogram
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CacheSetBytes  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPErrors     *prometheus.CounterVec
	HTTPDurationMs *prometheus.HistogramVec

	reg prometheus.Registerer
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		GateAdmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_admitted_total",
			Help:      "Total number of upstream calls admitted by the rate gate",
		}),
		GateQueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_queued_total",
			Help:      "Total number of upstream calls that had to wait for admission",
		}),
		GateAbandoned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_abandoned_total",
			Help:      "Total number of queued calls whose context ended before admission",
		}),
		GateWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gate_wait_seconds",
			Help:      "Time spent queued before admission",
			Buckets:   []float64{0, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		GateCallTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gate_call_seconds",
			Help:      "Duration of admitted calls, retries included",
			Buckets:   prometheus.DefBuckets,
		}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retries after upstream rate limiting",
		}),
		RetryDelay: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retry_delay_seconds",
			Help:      "Backoff delay chosen before each retry",
			Buckets:   []float64{1, 2, 4, 8, 16, 30, 35},
		}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by key type",
		}, []string{"type"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by key type",
		}, []string{"type"}),
		CacheSetBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"type"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_responses_total",
			Help:      "Upstream responses by path and status code",
		}, []string{"path", "code"}),
		HTTPErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream transport failures by path",
		}, []string{"path"}),
		HTTPDurationMs: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_ms",
			Help:      "Latency of upstream responses in milliseconds",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"path"}),
	}
}

// Register installs m as the gate, retry, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetGateHooks(m)
	observability.SetRetryHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// WatchGate exports the gate's live counters as gauges.
func (m *Metrics) WatchGate(g *ratelimit.Gate) {
	f := promauto.With(m.reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gate_in_flight",
		Help:      "Admitted upstream calls currently running",
	}, func() float64 { return float64(g.Stats().InFlight) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gate_queue_depth",
		Help:      "Upstream calls waiting for admission",
	}, func() float64 { return float64(g.Stats().Queued) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gate_window_admissions",
		Help:      "Admissions within the current rate window",
	}, func() float64 { return float64(g.Stats().WindowCount) })
}

func (m *Metrics) OnAdmitted(_ context.Context, waited time.Duration) {
	m.GateAdmitted.Inc()
	m.GateWait.Observe(waited.Seconds())
}

func (m *Metrics) OnQueued(context.Context, int) { m.GateQueued.Inc() }

func (m *Metrics) OnCompleted(_ context.Context, d time.Duration, _ error) {
	m.GateCallTime.Observe(d.Seconds())
}

func (m *Metrics) OnAbandoned(context.Context, error) { m.GateAbandoned.Inc() }

func (m *Metrics) OnRetry(_ context.Context, _ int, delay time.Duration, _ error) {
	m.Retries.Inc()
	m.RetryDelay.Observe(delay.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, _, path string, statusCode int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(path, statusLabel(statusCode)).Inc()
	m.HTTPDurationMs.WithLabelValues(path).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *Metrics) OnError(_ context.Context, _, _, path string, _ error) {
	m.HTTPErrors.WithLabelValues(path).Inc()
}

func statusLabel(code int) string {
	switch {
	case code == 429:
		return "429"
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 200 && code < 300:
		return "2xx"
	default:
		return "other"
	}
}

var (
	_ observability.GateHooks  = (*Metrics)(nil)
	_ observability.RetryHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
