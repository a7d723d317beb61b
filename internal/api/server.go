package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/lovelace-strategy/internal/generator"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/config"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/logging"
)

const (
	gracefulShutdownTimeout = 10 * time.Second

	// generateTimeout bounds a generation requested over HTTP.
	generateTimeout = 2 * time.Minute
)

// HealthChecker is a component the health endpoint reports on.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds what the server needs.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Generator *generator.Service
	Version   string

	// Checks are reported by GET /health under their map key.
	Checks map[string]HealthChecker
}

// Server is the HTTP API.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	generator *generator.Service
	version   string
	checks    map[string]HealthChecker

	hub    *Hub
	server *http.Server
	cancel context.CancelFunc
}

// New validates deps and builds a server. Start begins serving.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		generator: deps.Generator,
		version:   deps.Version,
		checks:    deps.Checks,
		hub:       NewHub(deps.Logger),
	}
	deps.Generator.OnGenerated(func(r *generator.Result) {
		summary := r.Generation
		summary.Dashboard = nil
		s.hub.Broadcast(EventDashboardGenerated, summary)
	})
	return s, nil
}

// Handler returns the router. Tests serve it with httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start listens on the configured address in the background.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
		BaseContext:       func(net.Listener) context.Context { return srvCtx },
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close drains in-flight requests for up to ten seconds.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
