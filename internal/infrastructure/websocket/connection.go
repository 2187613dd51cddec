package websocket

import (
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type ConnectionOptions struct {
	SendBuffer     int
	WriteWait      time.Duration
	MaxMessageSize int64
}

func (o ConnectionOptions) withDefaults() ConnectionOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	return o
}

// WebSocketConnection adapts a gorilla connection to domain.Connection. All
// data frames go through a single writer goroutine fed by a bounded queue.
type WebSocketConnection struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	open      atomic.Bool
	closeOnce sync.Once
	opts      ConnectionOptions
	log       logger.Logger
}

func NewWebSocketConnection(id string, conn *websocket.Conn, opts ConnectionOptions, log logger.Logger) *WebSocketConnection {
	opts = opts.withDefaults()
	c := &WebSocketConnection{
		id:   id,
		conn: conn,
		send: make(chan []byte, opts.SendBuffer),
		done: make(chan struct{}),
		opts: opts,
		log:  log,
	}
	c.open.Store(true)
	return c
}

func (wsc *WebSocketConnection) ID() string {
	return wsc.id
}

func (wsc *WebSocketConnection) IsOpen() bool {
	return wsc.open.Load()
}

// Send queues data for the writer. It never blocks.
func (wsc *WebSocketConnection) Send(data []byte) error {
	if !wsc.open.Load() {
		return domain.ErrConnectionClosed
	}
	select {
	case <-wsc.done:
		return domain.ErrConnectionClosed
	case wsc.send <- data:
		return nil
	default:
		return domain.ErrSendBufferFull
	}
}

// Done is closed once the connection has been closed.
func (wsc *WebSocketConnection) Done() <-chan struct{} {
	return wsc.done
}

func (wsc *WebSocketConnection) Close() error {
	var err error
	wsc.closeOnce.Do(func() {
		wsc.open.Store(false)
		close(wsc.done)
		_ = wsc.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(wsc.opts.WriteWait))
		err = wsc.conn.Close()
	})
	return err
}

func (wsc *WebSocketConnection) writePump() {
	defer wsc.Close()

	for {
		select {
		case message := <-wsc.send:
			_ = wsc.conn.SetWriteDeadline(time.Now().Add(wsc.opts.WriteWait))
			if err := wsc.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				wsc.log.Warn("Failed to write message", "connection_id", wsc.id, "error", err)
				return
			}
		case <-wsc.done:
			return
		}
	}
}

// readPump feeds every inbound message to handle, in arrival order, until the
// transport fails or the peer closes.
func (wsc *WebSocketConnection) readPump(handle func(data []byte)) {
	wsc.conn.SetReadLimit(wsc.opts.MaxMessageSize)

	for {
		_, data, err := wsc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				wsc.log.Error("Failed to read message", "connection_id", wsc.id, "error", err)
			} else {
				wsc.log.Debug("Connection closed by peer", "connection_id", wsc.id, "error", err)
			}
			return
		}
		handle(data)
	}
}
