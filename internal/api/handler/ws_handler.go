package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/peerrent/rental-system/internal/realtime"
)

// WSHandler upgrades HTTP requests to websocket connections and hands them to
// the realtime hub.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler builds the handler. When allowedOrigin is non-empty only that
// origin may connect; an empty value accepts any origin.
func NewWSHandler(hub *realtime.Hub, allowedOrigin string) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Connect handles GET /ws.
func (h *WSHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}
	h.hub.Serve(c.Request().Context(), conn)
	return nil
}
