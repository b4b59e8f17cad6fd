package config

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns default when env not set",
			key:          "F1_TEST_KEY_1",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
		{
			name:         "returns env value when set",
			key:          "F1_TEST_KEY_2",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)

			got := GetEnvOrDefault(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetEnvOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEnvHelpers(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		t.Setenv("F1_TEST_INT", "42")
		if got := parseEnvInt("F1_TEST_INT", 7); got != 42 {
			t.Errorf("parseEnvInt() = %d, want 42", got)
		}
		t.Setenv("F1_TEST_INT", "forty-two")
		if got := parseEnvInt("F1_TEST_INT", 7); got != 7 {
			t.Errorf("parseEnvInt() with invalid value = %d, want 7", got)
		}
	})

	t.Run("duration", func(t *testing.T) {
		tests := []struct {
			value string
			want  time.Duration
		}{
			{"", time.Minute},
			{"90s", 90 * time.Second},
			{"1.5", 1500 * time.Millisecond},
			{"soon", time.Minute},
		}
		for _, tt := range tests {
			t.Setenv("F1_TEST_DURATION", tt.value)
			if got := parseEnvDuration("F1_TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("parseEnvDuration(%q) = %s, want %s", tt.value, got, tt.want)
			}
		}
	})

	t.Run("bool", func(t *testing.T) {
		t.Setenv("F1_TEST_BOOL", "true")
		if !parseEnvBool("F1_TEST_BOOL", false) {
			t.Error("parseEnvBool() = false, want true")
		}
		t.Setenv("F1_TEST_BOOL", "maybe")
		if parseEnvBool("F1_TEST_BOOL", false) {
			t.Error("parseEnvBool() with invalid value = true, want default false")
		}
	})
}

func TestJWTSecret(t *testing.T) {
	t.Run("reads JWT_SECRET on first use", func(t *testing.T) {
		restore := SetJWTSecret(nil)
		defer restore()
		t.Setenv("JWT_SECRET", "a-sufficiently-long-secret")

		assert.Equal(t, []byte("a-sufficiently-long-secret"), GetJWTSecret())
	})

	t.Run("generates a random secret when unset", func(t *testing.T) {
		restore := SetJWTSecret(nil)
		defer restore()
		t.Setenv("JWT_SECRET", "")

		first := GetJWTSecret()
		assert.Len(t, first, 32)
		assert.Equal(t, first, GetJWTSecret())
	})

	t.Run("set and restore", func(t *testing.T) {
		original := GetJWTSecret()

		restore := SetJWTSecret([]byte("test-secret"))
		assert.Equal(t, []byte("test-secret"), GetJWTSecret())

		restore()
		assert.Equal(t, original, GetJWTSecret())
	})

	t.Run("concurrent access", func(t *testing.T) {
		restore := SetJWTSecret(nil)
		defer restore()

		var wg sync.WaitGroup
		secrets := make([][]byte, 10)
		for i := range secrets {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				secrets[i] = GetJWTSecret()
			}(i)
		}
		wg.Wait()

		for _, secret := range secrets[1:] {
			assert.Equal(t, secrets[0], secret)
		}
	})
}
