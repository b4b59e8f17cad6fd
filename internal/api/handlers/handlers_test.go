package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/connections"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast/ergasttest"
	"github.com/Josh-Mantel/MCP-F1/internal/services/cache"
	"github.com/Josh-Mantel/MCP-F1/internal/services/f1"
	"github.com/Josh-Mantel/MCP-F1/internal/services/oauth"
	"github.com/Josh-Mantel/MCP-F1/internal/services/tools"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

func newTestExecutor(t *testing.T) *tools.ToolExecutor {
	t.Helper()

	upstream := ergasttest.NewServer(t)
	source := ergast.NewService(config.ErgastConfig{
		BaseURL:  upstream.URL,
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	}, nil, nil)
	return tools.NewToolExecutor(f1.NewService(source, 0), nil, nil)
}

func TestHandleListTools(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleListTools(tools.NewService(nil), rr, httptest.NewRequest(http.MethodGet, "/tools", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Tools []struct {
			Type     string `json:"type"`
			Function struct {
				Name       string          `json:"name"`
				Parameters json.RawMessage `json:"parameters"`
			} `json:"function"`
		} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Tools, 5)
	assert.Equal(t, "function", body.Tools[0].Type)
	assert.Equal(t, "get_race_schedule", body.Tools[0].Function.Name)
	assert.Contains(t, string(body.Tools[0].Function.Parameters), `"minimum":1950`)
}

func TestHandleToolCalls(t *testing.T) {
	executor := newTestExecutor(t)

	t.Run("runs each call in order", func(t *testing.T) {
		payload := `{"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"get_race_schedule","arguments":"{\"year\":2024}"}},
			{"id":"call_2","type":"function","function":{"name":"get_session_results","arguments":"{\"year\":2024,\"round_number\":1,\"session\":\"FP2\"}"}},
			{"id":"call_3","type":"function","function":{"name":"get_weather","arguments":"{}"}}
		]}`

		rr := httptest.NewRecorder()
		HandleToolCalls(executor, rr, httptest.NewRequest(http.MethodPost, "/tools/call", strings.NewReader(payload)))
		require.Equal(t, http.StatusOK, rr.Code)

		var body ToolCallResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		require.Len(t, body.Messages, 3)

		for i, msg := range body.Messages {
			assert.Equal(t, openai.ChatMessageRoleTool, msg.Role)
			assert.Equal(t, []string{"call_1", "call_2", "call_3"}[i], msg.ToolCallID)
		}
		assert.True(t, strings.HasPrefix(body.Messages[0].Content, "F1 2024 Race Schedule:\n\n"))
		assert.True(t, strings.HasPrefix(body.Messages[1].Content, "Error: data unavailable"))
		assert.Equal(t, "Unknown tool: get_weather", body.Messages[2].Content)
	})

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed body", `{"tool_calls":`},
		{"no calls", `{"tool_calls":[]}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HandleToolCalls(executor, rr, httptest.NewRequest(http.MethodPost, "/tools/call", strings.NewReader(tt.payload)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var body httpext.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, httpext.ErrCodeInvalidRequest, body.Error)
		})
	}
}

func TestHandleHealthz(t *testing.T) {
	manager := connections.NewManager(connections.DefaultTimeouts)
	manager.Open(connections.TransportSSE, 2024, "client")
	manager.Open(connections.TransportWebSocket, 2024, "client")
	cacheService := cache.NewServiceWithStore(cache.NewMemoryStore(), time.Minute, nil)

	oauthService, err := oauth.NewService(auth.NewTokenStore(), config.ClientConfig{
		ID:          config.DefaultClientID,
		Secret:      "health-secret",
		RedirectURI: config.DefaultRedirectURI,
		Scopes:      []string{config.ScopeF1Read},
	})
	require.NoError(t, err)
	_, err = oauthService.Authorize(auth.AuthorizeRequest{
		ResponseType: auth.ResponseTypeCode,
		ClientID:     config.DefaultClientID,
		RedirectURI:  config.DefaultRedirectURI,
		Scope:        config.ScopeF1Read,
		State:        "s1",
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	HandleHealthz(manager, cacheService, oauthService, rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, HealthResponse{
		Status:        "ok",
		ActiveStreams: 2,
		Streams:       map[string]int{connections.TransportSSE: 1, connections.TransportWebSocket: 1},
		Tokens:        auth.StoreStats{Codes: 1},
		Cache:         "memory",
	}, body)
}
