package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sleet-near/hello-near/client/config"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthChecker answers liveness and readiness probes. Readiness requires
// every network's node to return its latest final block.
type HealthChecker struct {
	startTime time.Time
	greeter   Greeter
	networks  []config.Network
	timeout   time.Duration
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(greeter Greeter, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		startTime: time.Now(),
		greeter:   greeter,
		networks:  []config.Network{config.Primary, config.Secondary},
		timeout:   timeout,
	}
}

// checkDependencies pings every network's node concurrently.
func (hc *HealthChecker) checkDependencies(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		deps = make(map[string]string, len(hc.networks))
	)
	for _, n := range hc.networks {
		wg.Add(1)
		go func(n config.Network) {
			defer wg.Done()
			state := "healthy"
			if _, err := hc.greeter.Ping(ctx, n); err != nil {
				state = "unhealthy"
			}
			mu.Lock()
			deps["rpc_"+n.Section()] = state
			mu.Unlock()
		}(n)
	}
	wg.Wait()
	return deps
}

func (hc *HealthChecker) status(deps map[string]string) HealthStatus {
	status := "healthy"
	for _, state := range deps {
		if state != "healthy" {
			status = "unhealthy"
		}
	}
	return HealthStatus{
		Status:       status,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Uptime:       time.Since(hc.startTime).Round(time.Second).String(),
		Dependencies: deps,
	}
}

// HealthCheckHandler returns health status (liveness probe)
func (hc *HealthChecker) HealthCheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, hc.status(nil))
}

// ReadinessHandler returns readiness status (readiness probe)
func (hc *HealthChecker) ReadinessHandler(c echo.Context) error {
	status := hc.status(hc.checkDependencies(c.Request().Context()))
	if status.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}
