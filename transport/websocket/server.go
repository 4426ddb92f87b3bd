package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gridrooms/tictactoe-server/internal/apperror"
	"github.com/gridrooms/tictactoe-server/internal/router"
)

// Inbound message actions.
const (
	actionNewGame  = "game:new"
	actionJoinGame = "game:join"
	actionGameTurn = "game:turn"
)

type connRouter interface {
	HandleCreate(connID string)
	HandleJoin(connID, matchID string)
	HandleMove(connID, matchID string, row, col int, mark string)
	HandleDisconnect(connID string)
}

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	router   connRouter
	upgrader websocket.Upgrader

	handlers map[string]func(connID string, payload json.RawMessage)
}

func New(logger *slog.Logger, hub *Hub, connRouter connRouter) *Server {
	server := &Server{
		logger: logger,
		hub:    hub,
		router: connRouter,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]func(string, json.RawMessage)),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionGameTurn] = server.handleGameTurn

	return server
}

// Start - starts the WebSocket server and shuts it down when the context
// is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.HandleWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// HandleWS - upgrades the connection and starts its read and write pumps.
func (that *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HandleWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(uuid.NewString(), conn)
	that.hub.add(c)

	log.Info("WebSocket connection established", "connID", c.id)

	go c.writePump(that.logger)
	go c.readPump(that)
}

// handleMessage - decodes the envelope and dispatches on the action.
// Malformed input is answered with an error event, never a dropped
// connection.
func (that *Server) handleMessage(connID string, raw []byte) {
	log := that.logger.With("method", "handleMessage", "connID", connID)

	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		log.Debug("failed to unmarshal message", "error", err)
		that.emitInvalidRequest(connID)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Debug("unknown action", "action", message.Action)
		that.emitInvalidRequest(connID)
		return
	}

	handler(connID, message.Payload)
}

func (that *Server) emitInvalidRequest(connID string) {
	that.hub.Emit(connID, router.ActionError, router.ErrorPayload{Message: apperror.ErrInvalidRequest.Error()})
}
