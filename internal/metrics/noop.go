package metrics

import (
	"net/http"
	"time"
)

// NoopMetrics discards everything; used when METRICS_ENABLED=false
type NoopMetrics struct{}

var _ Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {}
func (n *NoopMetrics) RecordTokenIssued(grantType string)                                         {}
func (n *NoopMetrics) RecordTokenRejected(grantType, reason string)                               {}
func (n *NoopMetrics) RecordTokenValidation(result string)                                        {}
func (n *NoopMetrics) RecordCacheLookup(backend string, hit bool)                                 {}
func (n *NoopMetrics) RecordUpstreamRequest(endpoint string, status int, duration time.Duration)  {}
func (n *NoopMetrics) RecordToolCall(tool, surface string, success bool)                          {}
func (n *NoopMetrics) RecordStreamStarted(transport string)                                       {}
func (n *NoopMetrics) RecordStreamEnded(transport string, events int)                             {}

func (n *NoopMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}
