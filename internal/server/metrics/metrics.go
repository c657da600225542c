// Package metrics collects and exposes Prometheus metrics for the
// authentication service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for auth operations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder is the metrics interface consumed by the service and HTTP layers.
type Recorder interface {
	RecordSignup(outcome string)
	RecordLogin(outcome string)
	RecordVerificationDispatch(outcome string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector implements Recorder on a Prometheus registry.
type Collector struct {
	signups    *prometheus.CounterVec
	logins     *prometheus.CounterVec
	dispatches *prometheus.CounterVec
	httpSeen   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketauth_signup_total",
			Help: "Signup attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketauth_login_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketauth_verification_dispatch_total",
			Help: "Verification code dispatch attempts by outcome.",
		}, []string{"outcome"}),
		httpSeen: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketauth_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(c.signups, c.logins, c.dispatches, c.httpSeen)

	return c
}

func (c *Collector) RecordSignup(outcome string) {
	c.signups.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordVerificationDispatch(outcome string) {
	c.dispatches.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpSeen.WithLabelValues(method, route, statusLabel(status)).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Nop is a Recorder that discards everything. Used in tests and as a safe
// default.
type Nop struct{}

func (Nop) RecordSignup(string)                                    {}
func (Nop) RecordLogin(string)                                     {}
func (Nop) RecordVerificationDispatch(string)                      {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration)   {}
