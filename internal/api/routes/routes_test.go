package routes

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast/ergasttest"
	"github.com/Josh-Mantel/MCP-F1/internal/services"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

const testSecret = "routes-test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := ergasttest.NewServer(t)
	t.Setenv("ERGAST_BASE_URL", upstream.URL)
	t.Setenv("REDIS_URL", "")
	t.Setenv("F1_CLIENT_SECRET", testSecret)
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Cleanup(config.SetJWTSecret([]byte("routes-jwt-secret")))

	svc, err := services.InitializeServices(true)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	server := httptest.NewServer(NewRouter(svc))
	t.Cleanup(server.Close)
	return server
}

// noRedirect keeps the authorization redirect visible to the test
var noRedirect = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func accessToken(t *testing.T, server *httptest.Server) string {
	t.Helper()

	query := url.Values{
		"response_type": {"code"},
		"client_id":     {config.DefaultClientID},
		"redirect_uri":  {config.DefaultRedirectURI},
		"scope":         {config.ScopeF1Read},
		"state":         {"s1"},
	}
	resp, err := noRedirect.Get(server.URL + "/authorize?" + query.Encode())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "s1", location.Query().Get("state"))

	resp, err = http.PostForm(server.URL+"/token", url.Values{
		"grant_type":    {auth.GrantTypeAuthorizationCode},
		"code":          {location.Query().Get("code")},
		"redirect_uri":  {config.DefaultRedirectURI},
		"client_id":     {config.DefaultClientID},
		"client_secret": {testSecret},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens auth.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, 3600, tokens.ExpiresIn)
	assert.Equal(t, config.ScopeF1Read, tokens.Scope)
	return tokens.AccessToken
}

func get(t *testing.T, target, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStreamRequiresAuthorization(t *testing.T) {
	server := newTestServer(t)

	resp := get(t, server.URL+"/f1/stream?year=2024", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	var body httpext.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, httpext.ErrCodeUnauthorized, body.Error)

	resp = get(t, server.URL+"/tools", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthorizedStream(t *testing.T) {
	server := newTestServer(t)
	token := accessToken(t, server)

	resp := get(t, server.URL+"/f1/stream?year=2024", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var names []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			names = append(names, name)
		}
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{"f1_data", "f1_event", "f1_event", "f1_event", "f1_complete"}, names)
}

func TestAuthorizedTools(t *testing.T) {
	server := newTestServer(t)
	token := accessToken(t, server)

	resp := get(t, server.URL+"/tools", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Tools []json.RawMessage `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Len(t, listing.Tools, 5)

	payload := `{"tool_calls":[{"id":"c1","type":"function","function":{"name":"get_driver_standings","arguments":"{\"year\":2024}"}}]}`
	req, err := http.NewRequest(http.MethodPost, server.URL+"/tools/call", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	callResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer callResp.Body.Close()
	require.Equal(t, http.StatusOK, callResp.StatusCode)

	var result struct {
		Messages []struct {
			Role       string `json:"role"`
			ToolCallID string `json:"tool_call_id"`
			Content    string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(callResp.Body).Decode(&result))
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "tool", result.Messages[0].Role)
	assert.Equal(t, "c1", result.Messages[0].ToolCallID)
	assert.True(t, strings.HasPrefix(result.Messages[0].Content, "F1 2024 Driver Standings (after Round 2):"))
}

func TestOperationalRoutes(t *testing.T) {
	server := newTestServer(t)

	resp := get(t, server.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status        string `json:"status"`
		ActiveStreams int    `json:"active_streams"`
		Cache         string `json:"cache"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 0, health.ActiveStreams)
	assert.Equal(t, "memory", health.Cache)

	resp = get(t, server.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/healthz",status="200"} 1`)

	resp = get(t, server.URL+"/callback?code=abc&state=s1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/healthz", nil)
	require.NoError(t, err)
	postResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	postResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, postResp.StatusCode)
}
