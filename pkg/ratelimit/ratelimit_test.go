package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllow(t *testing.T) {
	now := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	l := NewLimiter(time.Minute, 3).WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "hit %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "fourth hit inside window should be rejected")
	assert.True(t, l.Allow("10.0.0.2"), "other keys are counted separately")

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "hits expire once they leave the window")
}

func TestLimiterRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	l := NewLimiter(time.Minute, 1).WithClock(func() time.Time { return now })

	assert.Equal(t, time.Duration(0), l.RetryAfter("k"))
	assert.True(t, l.Allow("k"))

	now = now.Add(20 * time.Second)
	assert.Equal(t, 40*time.Second, l.RetryAfter("k"))
}

func TestLimiterConcurrent(t *testing.T) {
	l := NewLimiter(time.Minute, 50)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
