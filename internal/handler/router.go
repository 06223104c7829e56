/*
Package handler provides the HTTP handlers and routing setup for the Adda Chat Server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to the WebSocket handler and
the static frontend.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/asif-git-hub/adda-chat-app/internal/pkg/limiter"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/logx"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/resp"
)

const (
	// ConnectRate limits how often a single IP may open new websocket connections.
	ConnectRate = 0.5

	// ConnectBurst allows short bursts of reconnects, e.g. after a network blip.
	ConnectBurst = 5

	// RequestRate limits plain HTTP requests (health, static frontend) per IP.
	RequestRate = 20

	// RequestBurst covers the burst of asset fetches a first page load produces.
	RequestBurst = 40
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes the per-IP connection rate limiter, configures CORS, and applies
// global middleware before mounting the health check, the websocket endpoint, and
// the static chat frontend.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	requestLimiter := limiter.NewIPRateLimiter(rate.Limit(RequestRate), RequestBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(requestLimiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":  "ok",
			"service": "Adda Chat Server",
			"users":   deps.Registry.Len(),
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	// static chat frontend
	r.Handle("/*", http.FileServer(http.Dir(deps.Config.StaticDir)))

	return r
}
