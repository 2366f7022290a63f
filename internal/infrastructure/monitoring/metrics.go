package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the authorization server.
type Metrics struct {
	AuthorizationRequests *prometheus.CounterVec
	TokenRequests         *prometheus.CounterVec
	TokenRequestLatency   *prometheus.HistogramVec
	TokenRevocations      prometheus.Counter
	RateLimitHits         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthorizationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sso_authorization_requests_total",
				Help: "Total authorization endpoint requests by outcome.",
			},
			[]string{"result"},
		),
		TokenRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sso_token_requests_total",
				Help: "Total token endpoint requests by grant type and outcome.",
			},
			[]string{"grant_type", "result"},
		),
		TokenRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sso_token_request_latency_seconds",
				Help:    "Latency of token endpoint requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"grant_type"},
		),
		TokenRevocations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sso_token_revocations_total",
				Help: "Total token revocations.",
			},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sso_rate_limit_hits_total",
				Help: "Total requests rejected by the rate limiter.",
			},
			[]string{"endpoint"},
		),
	}
}

// RecordAuthorization records an authorization endpoint outcome.
func (m *Metrics) RecordAuthorization(result string) {
	m.AuthorizationRequests.WithLabelValues(result).Inc()
}

// RecordTokenRequest records a token endpoint outcome with latency.
func (m *Metrics) RecordTokenRequest(grantType, result string, duration time.Duration) {
	m.TokenRequests.WithLabelValues(grantType, result).Inc()
	m.TokenRequestLatency.WithLabelValues(grantType).Observe(duration.Seconds())
}

// RecordTokenRevocation records a revocation.
func (m *Metrics) RecordTokenRevocation() {
	m.TokenRevocations.Inc()
}

// RecordRateLimitHit records a rate limited request.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}
