package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// HTTP Request Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Token Metrics
	TokensIssuedTotal    *prometheus.CounterVec
	TokensRejectedTotal  *prometheus.CounterVec
	TokenValidationTotal *prometheus.CounterVec

	// Upstream and cache
	CacheLookupsTotal       *prometheus.CounterVec
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Tools and streams
	ToolCallsTotal   *prometheus.CounterVec
	StreamsActive    *prometheus.GaugeVec
	StreamEventsSent *prometheus.CounterVec
	StreamsTotal     *prometheus.CounterVec
}

// Init returns a Prometheus backed recorder when enabled and a no-op one otherwise
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}
	return New()
}

// New creates a recorder with its own registry, so several can coexist in tests
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency, streams excluded",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		TokensIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_tokens_issued_total",
				Help: "Total number of access tokens issued",
			},
			[]string{"grant_type"}, // authorization_code, refresh_token
		),
		TokensRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_token_requests_rejected_total",
				Help: "Total number of rejected token requests",
			},
			[]string{"grant_type", "reason"},
		),
		TokenValidationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_token_validation_total",
				Help: "Total number of bearer token validations",
			},
			[]string{"result"}, // valid, unauthorized, token_expired, insufficient_scope
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f1_cache_lookups_total",
				Help: "Total number of upstream response cache lookups",
			},
			[]string{"backend", "result"}, // result: hit, miss
		),
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f1_upstream_requests_total",
				Help: "Total number of requests made to the F1 data source",
			},
			[]string{"endpoint", "status"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "f1_upstream_request_duration_seconds",
				Help:    "Latency of requests to the F1 data source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f1_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "surface", "result"}, // surface: mcp, http
		),
		StreamsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "f1_streams_active",
				Help: "Current number of open season streams",
			},
			[]string{"transport"}, // sse, websocket
		),
		StreamsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f1_streams_total",
				Help: "Total number of season streams started",
			},
			[]string{"transport"},
		),
		StreamEventsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f1_stream_events_sent_total",
				Help: "Total number of season stream events delivered",
			},
			[]string{"transport"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordTokenIssued(grantType string) {
	m.TokensIssuedTotal.WithLabelValues(grantType).Inc()
}

func (m *Metrics) RecordTokenRejected(grantType, reason string) {
	m.TokensRejectedTotal.WithLabelValues(grantType, reason).Inc()
}

func (m *Metrics) RecordTokenValidation(result string) {
	m.TokenValidationTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCacheLookup(backend string, hit bool) {
	result := resultHit
	if !hit {
		result = resultMiss
	}
	m.CacheLookupsTotal.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) RecordUpstreamRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, label).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordToolCall(tool, surface string, success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.ToolCallsTotal.WithLabelValues(tool, surface, result).Inc()
}

func (m *Metrics) RecordStreamStarted(transport string) {
	m.StreamsTotal.WithLabelValues(transport).Inc()
	m.StreamsActive.WithLabelValues(transport).Inc()
}

func (m *Metrics) RecordStreamEnded(transport string, events int) {
	m.StreamsActive.WithLabelValues(transport).Dec()
	m.StreamEventsSent.WithLabelValues(transport).Add(float64(events))
}
