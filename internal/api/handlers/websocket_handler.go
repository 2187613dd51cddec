package handlers

import (
	"job-portal/internal/infrastructure/websocket"
	"net/http"
)

type WebSocketHandlers struct {
	wsHandler *websocket.WebSocketHandler
}

func NewWebSocketHandlers(wsHandler *websocket.WebSocketHandler) *WebSocketHandlers {
	return &WebSocketHandlers{
		wsHandler: wsHandler,
	}
}

func (h *WebSocketHandlers) HandleConnection(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}
