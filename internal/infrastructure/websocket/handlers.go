package websocket

import (
	"context"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type HandlerOptions struct {
	ReadBufferSize  int
	WriteBufferSize int
	AllowedOrigins  []string
	Connection      ConnectionOptions
}

// WebSocketHandler upgrades requests and runs one session per socket. Sockets
// are anonymous until they send an auth frame.
type WebSocketHandler struct {
	ctx         context.Context
	upgrader    websocket.Upgrader
	connManager *ConnectionManager
	verifier    domain.IdentityVerifier
	pending     domain.PendingStore
	actions     domain.NotificationActions
	opts        HandlerOptions
	log         logger.Logger
}

// NewWebSocketHandler builds the upgrade handler. ctx bounds every session:
// cancelling it closes all sockets opened through this handler.
func NewWebSocketHandler(ctx context.Context, connManager *ConnectionManager,
	verifier domain.IdentityVerifier, pending domain.PendingStore,
	actions domain.NotificationActions, opts HandlerOptions, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		ctx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		connManager: connManager,
		verifier:    verifier,
		pending:     pending,
		actions:     actions,
		opts:        opts,
		log:         log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	wsConn := NewWebSocketConnection(uuid.NewString(), conn, h.opts.Connection, h.log)
	session := NewSession(wsConn, SessionDeps{
		Registry:   h.connManager,
		Dispatcher: h.connManager,
		Verifier:   h.verifier,
		Pending:    h.pending,
		Actions:    h.actions,
		Log:        h.log,
	})

	h.connManager.Track(wsConn)
	h.log.Info("Connection opened", "connection_id", wsConn.ID(), "remote_addr", r.RemoteAddr)

	go wsConn.writePump()
	go h.handleMessages(wsConn, session)
	go func() {
		select {
		case <-h.ctx.Done():
			_ = wsConn.Close()
		case <-wsConn.Done():
		}
	}()
}

func (h *WebSocketHandler) handleMessages(conn *WebSocketConnection, session *Session) {
	defer func() {
		session.Close()
		h.connManager.Untrack(conn)
		h.log.Info("Connection closed", "connection_id", conn.ID(), "user_id", session.UserID())
	}()

	conn.readPump(func(data []byte) {
		session.HandleMessage(h.ctx, data)
	})
}
