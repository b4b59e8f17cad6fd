package handlers

import (
	"net/http"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/connections"
	"github.com/Josh-Mantel/MCP-F1/internal/services/cache"
	"github.com/Josh-Mantel/MCP-F1/internal/services/oauth"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

type HealthResponse struct {
	Status        string          `json:"status"`
	ActiveStreams int             `json:"active_streams"`
	Streams       map[string]int  `json:"streams"`
	Tokens        auth.StoreStats `json:"tokens"`
	Cache         string          `json:"cache"`
}

func HandleHealthz(manager *connections.Manager, cacheService *cache.Service, oauthService *oauth.Service, w http.ResponseWriter, r *http.Request) {
	streams := manager.CountByTransport()
	active := 0
	for _, n := range streams {
		active += n
	}

	w.Header().Set("Cache-Control", "no-store")
	httpext.JsonResponse(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		ActiveStreams: active,
		Streams:       streams,
		Tokens:        oauthService.Stats(),
		Cache:         cacheService.Backend(),
	})
}
