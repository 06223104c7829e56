/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, upgrading the HTTP connection to WebSocket, assigning the opaque connection
identity, and starting the client lifecycle. Joining a room happens afterwards over
the event protocol, not at upgrade time.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/asif-git-hub/adda-chat-app/internal/app/chat"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/errs"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/limiter"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/logx"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/randx"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		session := chat.NewSession(connID, deps.Registry, deps.Broadcasts, deps.IsOffensive)
		client := chat.NewClient(conn, session)

		// attach before the read pump so the welcome message and acks are deliverable
		deps.Broadcasts.Attach(connID, client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "connection_id", connID)

		client.ReadPump()
	}
}
