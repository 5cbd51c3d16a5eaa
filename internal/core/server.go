// Package core provides the API chassis for the Tenki weather application:
// a chi router with the cross-cutting middleware chain (panic recovery,
// request IDs, structured request logging, security headers), the standard
// response envelopes, and the health endpoint. Domain handlers are mounted
// onto it by the application entry point.
package core

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"tenki/internal/config"
)

// RouteRegistrar mounts one domain handler's routes onto a router group.
// The indirection keeps core free of handler imports.
type RouteRegistrar func(r chi.Router)

// Server bundles the router with its cross-cutting dependencies.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	router *chi.Mux
	probes []HealthProbe
}

// NewServer creates the API chassis. It fails fast on missing dependencies.
func NewServer(cfg *config.Config, logger *slog.Logger, probes ...HealthProbe) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		router: chi.NewRouter(),
		probes: probes,
	}, nil
}

// MountRoutes registers the global middleware chain, the health endpoint, and
// every domain registrar under /api/v1. Middleware order matters: Recoverer
// is outermost so later failures are always caught, and RequestID runs before
// the logger so every log line carries a correlation ID.
func (s *Server) MountRoutes(registrars ...RouteRegistrar) {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.logger))

	s.router.Get("/health", s.HandleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		for _, registrar := range registrars {
			registrar(r)
		}
	})
}

// Router returns the underlying chi router for serving and for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
