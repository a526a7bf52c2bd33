// Package server provides the HTTP server for the greeter bridge
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sleet-near/hello-near/bridge/handlers"
)

const (
	DefaultHTTPAddr = ":8090"
)

// Config holds server configuration
type Config struct {
	HTTPAddr string
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server represents the HTTP server
type Server struct {
	config   *Config
	echo     *echo.Echo
	greeting *handlers.GreetingHandlers
	health   *handlers.HealthChecker
}

// NewServer creates a new server instance with its routes registered.
func NewServer(config *Config, greeting *handlers.GreetingHandlers, health *handlers.HealthChecker) *Server {
	s := &Server{
		config:   config,
		echo:     echo.New(),
		greeting: greeting,
		health:   health,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Echo returns the underlying Echo instance for testing
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	addr := s.config.HTTPAddr
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// setupMiddleware configures Echo middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.RequestID())
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.health.HealthCheckHandler) // Liveness probe
	s.echo.GET("/ready", s.health.ReadinessHandler)    // Readiness probe
	if s.config.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))
	}

	api := s.echo.Group("/api/:network")
	api.GET("/accounts", s.greeting.AccountsHandler)
	api.GET("/greeting", s.greeting.GetGreetingHandler)
	api.POST("/greeting/preview", s.greeting.PreviewGreetingHandler)
	api.POST("/greeting", s.greeting.UpdateGreetingHandler)
}
