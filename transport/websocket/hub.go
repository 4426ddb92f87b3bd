package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub tracks live clients by connection id and delivers outbound events.
// Delivery is fire-and-forget: events for connections that are gone or
// backed up are dropped rather than blocking the caller.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		clients: make(map[string]*client),
	}
}

// Emit - marshals the event and queues it for one connection. The read
// lock is held through the send: remove closes the client's channel
// under the write lock, so a queued send can never hit a closed channel.
func (that *Hub) Emit(connID, action string, payload any) {
	raw, err := marshalMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal event", "action", action, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	c, ok := that.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- raw:
	default:
		that.logger.Warn("send buffer full, dropping event", "connID", connID, "action", action)
	}
}

func (that *Hub) add(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.id] = c
}

// remove - forgets the client and closes its send queue, which also
// stops its write pump.
func (that *Hub) remove(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if c, ok := that.clients[connID]; ok {
		delete(that.clients, connID)
		c.close()
	}
}

func marshalMessage(action string, payload any) ([]byte, error) {
	message := Message{Action: action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		message.Payload = raw
	}

	return json.Marshal(message)
}
