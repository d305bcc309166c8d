// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/edustream/internal/catalog/course"
	"github.com/taibuivan/edustream/internal/catalog/video"
	"github.com/taibuivan/edustream/internal/platform/config"
	"github.com/taibuivan/edustream/internal/platform/constants"
	"github.com/taibuivan/edustream/internal/platform/middleware"
	"github.com/taibuivan/edustream/internal/users/account"
	"github.com/taibuivan/edustream/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login, tokens and password reset.
	Auth *auth.Handler

	// Account handles the caller's profile, enrollments and user administration.
	Account *account.Handler

	// Course handles the catalog, modules and reviews.
	Course *course.Handler

	// Video handles lesson videos, uploads and progress.
	Video *video.Handler
}

// Security groups the collaborators of the authentication chain.
type Security struct {
	Verifier middleware.TokenVerifier
	Loader   middleware.PrincipalLoader
	Limiter  *middleware.RateLimiter
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, security Security, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution. Request deadlines are
	// applied per route group because video uploads need a longer one.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(security.Limiter))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.RequestSize(cfg.MaxUploadBytes))
	r.Use(chimw.CleanPath)

	// Bearer tokens are only read on routes that can act on a principal.
	// Health checks and the credential endpoints ignore a stale header.
	authenticated := []func(http.Handler) http.Handler{
		middleware.Authenticate(security.Verifier),
		middleware.LoadPrincipal(security.Loader),
	}

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(timed chi.Router) {
			timed.Use(chimw.Timeout(constants.GlobalRequestTimeout))

			timed.Mount("/auth", h.Auth.Routes())

			timed.Group(func(member chi.Router) {
				member.Use(authenticated...)
				member.Mount("/users", h.Account.Routes())
				member.Mount("/courses", h.Course.Routes())
			})
		})

		// Video routes apply their own deadlines.
		api.Group(func(member chi.Router) {
			member.Use(authenticated...)
			member.Mount("/videos", h.Video.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the root router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
