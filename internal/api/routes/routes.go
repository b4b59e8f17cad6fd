package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Josh-Mantel/MCP-F1/internal/api/handlers"
	oauthhandlers "github.com/Josh-Mantel/MCP-F1/internal/api/handlers/oauth"
	"github.com/Josh-Mantel/MCP-F1/internal/api/handlers/stream"
	"github.com/Josh-Mantel/MCP-F1/internal/api/middleware"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/services"
)

// NewRouter builds the HTTP surface with request instrumentation installed
func NewRouter(services *services.Services) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Instrument(services.GetMetrics()))
	RegisterRoutes(router, services)
	return router
}

func RegisterRoutes(router *mux.Router, services *services.Services) {
	recorder := services.GetMetrics()

	// Operational routes
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleHealthz(services.GetConnectionManager(), services.GetCacheService(), services.GetOAuthService(), w, r)
	}).Methods("GET")
	router.Handle("/metrics", recorder.Handler()).Methods("GET")

	// OAuth routes (no auth required)
	router.Handle("/authorize", middleware.RateLimit(config.LimitAuthorize)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oauthhandlers.HandleAuthorize(services.GetOAuthService(), w, r)
	}))).Methods("GET")
	router.Handle("/token", middleware.RateLimit(config.LimitToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oauthhandlers.HandleToken(services.GetOAuthService(), recorder, w, r)
	}))).Methods("POST")
	router.HandleFunc("/callback", oauthhandlers.HandleCallback).Methods("GET")

	// Protected routes (require a token carrying f1:read)
	protectedRouter := router.NewRoute().Subrouter()
	protectedRouter.Use(middleware.RequireAuth(services.GetOAuthService(), recorder))
	protectedRouter.Use(middleware.RequireScope(config.ScopeF1Read))

	f1Router := protectedRouter.PathPrefix("/f1").Subrouter()
	f1Router.Handle("/stream", middleware.RateLimit(config.LimitStream)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream.HandleSeasonStream(services.GetF1Service(), services.GetConnectionManager(), recorder, w, r)
	}))).Methods("GET")
	f1Router.Handle("/ws", middleware.RateLimit(config.LimitStream)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream.HandleSeasonWebSocket(services.GetF1Service(), services.GetConnectionManager(), recorder, w, r)
	}))).Methods("GET")

	protectedRouter.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleListTools(services.GetToolService(), w, r)
	}).Methods("GET")
	protectedRouter.Handle("/tools/call", middleware.RateLimit(config.LimitTools)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleToolCalls(services.GetToolExecutor(), w, r)
	}))).Methods("POST")
}
