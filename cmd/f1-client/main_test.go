package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Mantel/MCP-F1/internal/api/routes"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast/ergasttest"
	"github.com/Josh-Mantel/MCP-F1/internal/services"
)

const testSecret = "client-test-secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := ergasttest.NewServer(t)
	t.Setenv("ERGAST_BASE_URL", upstream.URL)
	t.Setenv("REDIS_URL", "")
	t.Setenv("F1_CLIENT_SECRET", testSecret)
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Cleanup(config.SetJWTSecret([]byte("client-jwt-secret")))

	svc, err := services.InitializeServices(false)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	server := httptest.NewServer(routes.NewRouter(svc))
	t.Cleanup(server.Close)
	return server
}

func authorizationCode(t *testing.T, opts options) string {
	t.Helper()

	noRedirect := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noRedirect.Get(oauthConfig(opts).AuthCodeURL("client-state"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return location.Query().Get("code")
}

func testOptions(server *httptest.Server) options {
	return options{
		server:       server.URL,
		clientID:     config.DefaultClientID,
		clientSecret: testSecret,
		redirectURI:  config.DefaultRedirectURI,
		year:         2024,
	}
}

func TestRunWithCodeFlag(t *testing.T) {
	server := newServer(t)
	opts := testOptions(server)
	opts.code = authorizationCode(t, opts)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, strings.NewReader(""), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "f1_data: "))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "f1_complete: "))
}

func TestRunPromptsForCode(t *testing.T) {
	server := newServer(t)
	opts := testOptions(server)
	code := authorizationCode(t, opts)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, strings.NewReader(code+"\n"), &out))

	assert.Contains(t, out.String(), server.URL+"/authorize?")
	assert.Contains(t, out.String(), "f1_complete: ")
}

func TestRunErrors(t *testing.T) {
	server := newServer(t)
	opts := testOptions(server)

	t.Run("no code entered", func(t *testing.T) {
		err := run(context.Background(), opts, strings.NewReader("\n"), &bytes.Buffer{})
		assert.EqualError(t, err, "no authorization code given")
	})

	t.Run("bad code", func(t *testing.T) {
		opts := opts
		opts.code = "not-a-code"
		err := run(context.Background(), opts, nil, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exchange code")
	})

	t.Run("season without schedule", func(t *testing.T) {
		opts := opts
		opts.year = 1990
		opts.code = authorizationCode(t, opts)
		err := run(context.Background(), opts, nil, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
