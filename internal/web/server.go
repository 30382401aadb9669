// Package web provides the JSON HTTP API for the reconciliation service.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
	appmw "github.com/JonMunkholm/recon/internal/web/middleware"
)

// errRateLimited is reported to throttled clients.
var errRateLimited = errors.New("rate limit exceeded")

// errUnauthorized is reported for a missing or wrong API key.
var errUnauthorized = errors.New("unauthorized: missing or invalid API key")

// Server is the HTTP server for the reconciliation API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	limiter *appmw.RateLimiter
	server  *http.Server
}

// NewServer creates a Server serving service with the given configuration.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if len(s.cfg.Security.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Security.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id"},
			ExposedHeaders: []string{"Location", "Retry-After"},
			MaxAge:         300,
		}))
	}

	if s.cfg.Rate.Enabled {
		s.limiter = appmw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.limiter.OnLimited = func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
		}
		s.router.Use(s.limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(appmw.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys,
			func(w http.ResponseWriter, r *http.Request, status int) {
				s.respondError(w, r, errUnauthorized, status)
			}))

		r.Post("/reconcile", s.handleReconcile)
		r.Post("/resolve", s.handleResolve)

		r.Get("/runs", s.handleListRuns)
		r.Route("/runs/{runID}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Delete("/", s.handleDeleteRun)
			r.Get("/results", s.handleResults)
			r.Post("/verify", s.handleVerify)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Message: "No such endpoint",
			Code:    "HTTP404",
		})
	})
}

// Start listens on the configured address until Shutdown is called.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunMaintenance drops idle rate limiter buckets until ctx is cancelled.
func (s *Server) RunMaintenance(ctx context.Context) {
	if s.limiter == nil {
		return
	}
	s.limiter.Run(ctx, time.Minute)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds hardening headers to every response. The API serves
// only JSON, so the CSP forbids loading anything.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}
