package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/schedulr/internal/config"
	"github.com/saltyorg/schedulr/internal/errs"
	"github.com/saltyorg/schedulr/internal/web/handlers"
	"github.com/saltyorg/schedulr/internal/web/middleware"
	"github.com/saltyorg/schedulr/internal/web/respond"
)

// RouteRegistrar mounts a service's endpoints on a router
type RouteRegistrar interface {
	Routes(r chi.Router)
}

// Options configures a Server
type Options struct {
	Port           int
	Bind           string
	AllowedNet     *net.IPNet
	AllowedOrigins []string
	Health         handlers.Pinger
}

// Server represents the web server of one service
type Server struct {
	opts   Options
	router *chi.Mux
}

// NewServer creates a web server serving the routes of every registrar
func NewServer(opts Options, registrars ...RouteRegistrar) *Server {
	s := &Server{
		opts:   opts,
		router: chi.NewRouter(),
	}
	s.setupRoutes(registrars)
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes
func (s *Server) setupRoutes(registrars []RouteRegistrar) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.opts.AllowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(chimiddleware.Timeout(config.GetTimeouts().Request))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, errs.NewNotFoundError("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, &errs.HTTPError{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed",
			Status:  http.StatusMethodNotAllowed,
		})
	})

	if s.opts.Health != nil {
		r.Get("/health", handlers.Health(s.opts.Health))
	}

	for _, registrar := range registrars {
		registrar.Routes(r)
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	if s.opts.Bind != "" {
		return net.JoinHostPort(s.opts.Bind, fmt.Sprint(s.opts.Port))
	}
	return fmt.Sprintf(":%d", s.opts.Port)
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	timeouts := config.GetTimeouts()
	addr := s.Addr()

	server := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: timeouts.Read,
		IdleTimeout: timeouts.Idle,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
