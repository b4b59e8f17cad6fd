package auth

import (
	"testing"
	"time"
)

func TestExpiry(t *testing.T) {
	code := AuthorizationCode{ExpiresAt: testNow.Add(CodeLifetime)}

	if code.Expired(testNow.Add(CodeLifetime)) {
		t.Error("code should still be valid at exactly its expiry instant")
	}
	if !code.Expired(testNow.Add(CodeLifetime + time.Nanosecond)) {
		t.Error("code should be expired past its expiry instant")
	}
}

func TestAccessTokenExpiresIn(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"fresh token", testNow, 3600},
		{"half way", testNow.Add(30 * time.Minute), 1800},
		{"expired token", testNow.Add(2 * time.Hour), 0},
	}

	token := AccessToken{IssuedAt: testNow, ExpiresAt: testNow.Add(AccessTokenLifetime)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := token.ExpiresIn(tt.now); got != tt.want {
				t.Errorf("ExpiresIn() = %d, want %d", got, tt.want)
			}
		})
	}
}
