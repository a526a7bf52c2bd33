package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/tx"
)

const metricsNamespace = "greeter"

// Metrics records submission counts and latency.
type Metrics struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the submission metrics and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_total",
			Help:      "Function-call submissions by network and outcome",
		}, []string{"network", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from submit to terminal outcome",
			Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34},
		}, []string{"network"}),
	}
	registry.MustRegister(m.submissions, m.duration)
	return m
}

func (m *Metrics) observe(network string, out *tx.Outcome, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(network, outcomeLabel(out, err)).Inc()
	m.duration.WithLabelValues(network).Observe(elapsed.Seconds())
}

// outcomeLabel names the terminal outcome, or the error kind when there is none.
func outcomeLabel(out *tx.Outcome, err error) string {
	if out != nil {
		return string(out.Kind)
	}
	switch {
	case err == nil:
		return "unknown"
	case errors.IsConfigError(err):
		return "config_error"
	case errors.IsCredentialError(err):
		return "credential_error"
	case errors.IsTransportError(err):
		return "transport_error"
	case errors.IsTransactionError(err):
		return "transaction_error"
	default:
		return "protocol_error"
	}
}
