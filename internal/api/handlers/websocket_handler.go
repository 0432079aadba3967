package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/auth"
	"github.com/roomshare/roomshare-be/internal/services"
	"github.com/roomshare/roomshare-be/internal/websocket"
)

// WebsocketHandler upgrades connections to the live group activity feed.
type WebsocketHandler struct {
	hub      *websocket.Hub
	security services.SecurityServiceProvider
	upgrader gws.Upgrader
}

// NewWebsocketHandler creates a new WebsocketHandler.
func NewWebsocketHandler(hub *websocket.Hub, security services.SecurityServiceProvider, allowedOrigin string) *WebsocketHandler {
	return &WebsocketHandler{
		hub:      hub,
		security: security,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Serve subscribes the caller to a group's activity feed. The caller
// must be a member of the group; the membership check runs before the
// upgrade so rejections are plain HTTP errors.
func (h *WebsocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")

	if err := h.security.VerifyMember(groupID, claims.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := websocket.NewClient(h.hub, conn, groupID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
