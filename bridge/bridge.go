// Package bridge serves the greeting contract over HTTP.
package bridge

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sleet-near/hello-near/bridge/handlers"
	"github.com/sleet-near/hello-near/bridge/server"
	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/keys"
)

// Service encapsulates the bridge setup and lifecycle
type Service struct {
	config     *Config
	httpServer *server.Server
	logger     log.Logger
}

// NewService wires the HTTP server to c and the configured credential
// directory. gatherer backs /metrics and may be nil.
func NewService(config *Config, c *client.Client, gatherer prometheus.Gatherer, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("module", "bridge")

	store := keys.NewStore(config.CredentialsDir, logger)
	greeting := handlers.NewGreetingHandlers(c, store, logger)
	health := handlers.NewHealthChecker(c, 0)
	httpServer := server.NewServer(&server.Config{HTTPAddr: config.Addr(), Gatherer: gatherer}, greeting, health)

	return &Service{
		config:     config,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Server returns the HTTP server.
func (s *Service) Server() *server.Server {
	return s.httpServer
}

// Run serves until ctx is done or the process receives SIGINT or SIGTERM,
// then shuts the server down gracefully.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP bridge", "addr", s.config.Addr(), "credentials", s.config.CredentialsDir)
		errCh <- s.httpServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP bridge")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
