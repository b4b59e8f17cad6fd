package metrics

import (
	"net/http"
	"time"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultHit     = "hit"
	resultMiss    = "miss"
)

// Recorder is the set of measurements taken by the server. Metrics records
// them in Prometheus and NoopMetrics discards them.
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordTokenIssued(grantType string)
	RecordTokenRejected(grantType, reason string)
	RecordTokenValidation(result string)
	RecordCacheLookup(backend string, hit bool)
	RecordUpstreamRequest(endpoint string, status int, duration time.Duration)
	RecordToolCall(tool, surface string, success bool)
	RecordStreamStarted(transport string)
	RecordStreamEnded(transport string, events int)

	// Handler serves the exposition format, or 404 when disabled
	Handler() http.Handler
}
