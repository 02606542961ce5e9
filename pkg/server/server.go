// Package server exposes plant lookups over HTTP.
//
// Routes:
//
//	GET /plants?q=<term>&limit=<n>   species search
//	GET /plants/{id}                 species detail ("1234" or "perenual-1234")
//	GET /healthz                     liveness, build info and gate state
//	GET /metrics                     Prometheus metrics, when a gatherer is set
//
// Errors are JSON objects of the form
//
//	{"error": {"code": "RATE_LIMITED", "message": "...", "request_id": "..."}}
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/integrations/perenual"
	"github.com/matzehuels/plantgate/pkg/ratelimit"
)

const shutdownTimeout = 10 * time.Second

// Lookup is the plant source behind the API. *perenual.Client satisfies it.
type Lookup interface {
	SearchResult(ctx context.Context, term string, limit int) perenual.SearchResult
	SpeciesResult(ctx context.Context, id int) perenual.SpeciesResult
}

// Options configures a Server. Zero values take defaults.
type Options struct {
	Addr           string
	Logger         *log.Logger
	Gatherer       prometheus.Gatherer // nil disables /metrics
	Gate           *ratelimit.Gate     // reported by /healthz when set
	DefaultLimit   int
	RequestTimeout time.Duration
}

// Server is the plantgate HTTP API.
type Server struct {
	router *chi.Mux
	plants Lookup
	opts   Options
	logger *log.Logger
}

// New creates a server backed by plants.
func New(plants Lookup, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = perenual.DefaultLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}

	s := &Server{
		router: chi.NewRouter(),
		plants: plants,
		opts:   opts,
		logger: opts.Logger,
	}

	r := s.router
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(Logger(s.logger))
	r.Use(Recovery(s.logger))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, perrors.New(perrors.ErrCodeNotFound, "no route for %s", req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeErrorStatus(w, req, http.StatusMethodNotAllowed, perrors.ErrCodeInvalidInput, "method not allowed")
	})

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/plants", func(r chi.Router) {
		r.Get("/", s.handleSearch)
		r.Get("/{id}", s.handleSpecies)
	})
	if s.opts.Gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
