package connections

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// TimeoutConfig holds the keep-alive settings for WebSocket streams
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutsFor(30*time.Second, 10*time.Second)

// TimeoutsFor derives the ping period from pongWait so a ping always lands
// before the peer's read deadline.
func TimeoutsFor(pongWait, writeWait time.Duration) TimeoutConfig {
	return TimeoutConfig{
		PongWait:   pongWait,
		PingPeriod: (pongWait * 9) / 10,
		WriteWait:  writeWait,
	}
}

// Stream is one open season stream
type Stream struct {
	ID        string
	Transport string
	Year      int
	ClientID  string
	StartedAt time.Time

	events atomic.Int64
}

// RecordEvent counts one record written to the client
func (s *Stream) RecordEvent() {
	s.events.Add(1)
}

func (s *Stream) Events() int {
	return int(s.events.Load())
}

// Manager tracks open season streams across both transports
type Manager struct {
	streams  sync.Map
	timeouts TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// Open registers a new stream and returns it with a fresh ID
func (m *Manager) Open(transport string, year int, clientID string) *Stream {
	stream := &Stream{
		ID:        uuid.NewString(),
		Transport: transport,
		Year:      year,
		ClientID:  clientID,
		StartedAt: time.Now(),
	}
	m.streams.Store(stream.ID, stream)
	return stream
}

// Close removes a stream; closing an unknown ID is a no-op
func (m *Manager) Close(id string) {
	m.streams.Delete(id)
}

// Count returns the number of open streams
func (m *Manager) Count() int {
	count := 0
	m.streams.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// CountByTransport returns the open streams per transport
func (m *Manager) CountByTransport() map[string]int {
	counts := map[string]int{TransportSSE: 0, TransportWebSocket: 0}
	m.streams.Range(func(key, value interface{}) bool {
		counts[value.(*Stream).Transport]++
		return true
	})
	return counts
}

// GetTimeouts returns the keep-alive settings for WebSocket streams
func (m *Manager) GetTimeouts() TimeoutConfig {
	return m.timeouts
}
