package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxMessageSize = 1024
	sendBufferSize = 32
)

// client is one live connection: the socket plus a buffered outbound queue.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.send)
	})
}

// readPump - reads inbound messages until the socket dies, then reports
// the disconnect.
func (that *client) readPump(server *Server) {
	log := server.logger.With("method", "readPump", "connID", that.id)

	defer func() {
		server.hub.remove(that.id)
		server.router.HandleDisconnect(that.id)

		if err := that.conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}

		log.Info("connection closed")
	}()

	that.conn.SetReadLimit(maxMessageSize)

	if err := that.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}

	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("read error", "error", err)
			}
			return
		}

		if messageType == websocket.TextMessage {
			server.handleMessage(that.id, raw)
		}
	}
}

// writePump - drains the send queue to the socket and keeps the
// connection alive with periodic pings.
func (that *client) writePump(logger *slog.Logger) {
	log := logger.With("method", "writePump", "connID", that.id)

	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := that.conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	for {
		select {
		case raw, ok := <-that.send:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
				return
			}

			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
