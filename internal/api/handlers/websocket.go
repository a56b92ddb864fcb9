package handlers

import (
	"classroom-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WebSocketHandler struct {
	hub     *websocket.Hub
	resolve websocket.TokenResolver
}

func NewWebSocketHandler(hub *websocket.Hub, resolve websocket.TokenResolver) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     hub,
		resolve: resolve,
	}
}

// Connect godoc
// @Summary Open the notification socket
// @Description Upgrade to WebSocket. The JWT travels as a token query
// parameter; a bad token closes the socket with code 1008.
// @Tags websocket
// @Param token query string true "JWT access token"
// @Router /ws [get]
func (h *WebSocketHandler) Connect(c *gin.Context) {
	websocket.ServeWS(h.hub, h.resolve, c.Writer, c.Request)
}
