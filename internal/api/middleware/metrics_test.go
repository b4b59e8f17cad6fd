package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
)

type httpCall struct {
	method, route string
	status        int
}

type httpRecorder struct {
	metrics.NoopMetrics

	mu    sync.Mutex
	calls []httpCall
}

func (r *httpRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, httpCall{method, route, status})
}

func TestInstrument(t *testing.T) {
	recorder := &httpRecorder{}

	router := mux.NewRouter()
	router.Use(Instrument(recorder))
	router.HandleFunc("/seasons/{year}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	for _, path := range []string{"/seasons/2024", "/seasons/2023", "/teapot"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []httpCall{
		{http.MethodGet, "/seasons/{year}", http.StatusOK},
		{http.MethodGet, "/seasons/{year}", http.StatusOK},
		{http.MethodGet, "/teapot", http.StatusTeapot},
	}, recorder.calls)
}

func TestStatusRecorderFlush(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: rr}

	var w http.ResponseWriter = rec
	flusher, ok := w.(http.Flusher)
	assert.True(t, ok)
	flusher.Flush()
	assert.True(t, rr.Flushed)
}
