// Package httpapi exposes plan generation and stored-plan CRUD as a REST
// API with CORS, request logging, and per-client rate limiting on the
// generation endpoint.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/harborline/wayplan/internal/planner"
	"github.com/harborline/wayplan/internal/planstore"
)

const serviceName = "wayplan"

// Default generation rate: one plan per 10 seconds per client, small burst.
const (
	defaultRPS   = rate.Limit(0.1)
	defaultBurst = 3
)

// ComponentCheck reports one dependency's readiness for /health/detailed.
type ComponentCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server wires the planning orchestrator and plan store behind the REST
// routes.
type Server struct {
	orch    planner.Orchestrator
	store   planstore.Store
	limiter *visitorLimiter
	checks  []ComponentCheck
	version string

	mu   sync.Mutex
	http *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithRateLimit sets the per-client token bucket for plan generation.
func WithRateLimit(rps rate.Limit, burst int) Option {
	return func(s *Server) { s.limiter = newVisitorLimiter(rps, burst) }
}

// WithComponent registers a dependency check reported by /health/detailed.
func WithComponent(name string, check func(ctx context.Context) error) Option {
	return func(s *Server) { s.checks = append(s.checks, ComponentCheck{Name: name, Check: check}) }
}

// WithVersion sets the version string reported by the health endpoints.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer builds a REST server over the given orchestrator and store.
func NewServer(orch planner.Orchestrator, store planstore.Store, opts ...Option) *Server {
	s := &Server{
		orch:    orch,
		store:   store,
		limiter: newVisitorLimiter(defaultRPS, defaultBurst),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full middleware stack: router, CORS, request logging.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.POST("/api/plans", s.limit(s.handleGenerate))
	router.GET("/api/plans", s.handleList)
	router.GET("/api/plans/:id", s.handleGet)
	router.PUT("/api/plans/:id", s.handleUpdate)
	router.PATCH("/api/plans/:id/status", s.handleUpdateStatus)
	router.DELETE("/api/plans/:id", s.handleDelete)
	router.GET("/health", s.handleHealth)
	router.GET("/health/detailed", s.handleHealthDetailed)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	return loggingMiddleware(corsHandler)
}

// Serve blocks, listening on addr until Stop is called or the listener
// fails. A graceful Stop yields a nil return.
func (s *Server) Serve(addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// Write timeout must outlast a full pipeline run including one
		// repair pass.
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// limit wraps a route with the per-client rate limiter.
func (s *Server) limit(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !s.limiter.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r, ps)
	}
}

// loggingMiddleware logs each request method, path, remote address, and
// duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s in %v", r.Method, r.URL.Path, clientIP(r), time.Since(start))
	})
}
