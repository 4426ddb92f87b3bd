package router

import (
	"log/slog"
	"sync"

	"github.com/gridrooms/tictactoe-server/internal/apperror"
	"github.com/gridrooms/tictactoe-server/internal/registry"
)

// Outbound event actions.
const (
	ActionGameCreated        = "game:created"
	ActionPlayerAssigned     = "player:assigned"
	ActionGameState          = "game:state"
	ActionPlayerDisconnected = "player:disconnected"
	ActionError              = "error"
)

type GameCreatedPayload struct {
	ID string `json:"id"`
}

type PlayerAssignedPayload struct {
	Mark string `json:"symbol"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// emitter delivers one event to one connection; the transport owns the
// actual socket and may drop events for connections that are gone.
type emitter interface {
	Emit(connID, action string, payload any)
}

// Router bridges per-connection events to registry and match operations
// and fans the results back out. It owns the connection-to-room
// membership; all errors are reported to the requesting connection only
// and never disturb match state or other connections.
type Router struct {
	logger   *slog.Logger
	registry *registry.Registry
	emitter  emitter

	mu     sync.RWMutex
	rooms  map[string]map[string]struct{} // match id -> connection ids
	joined map[string]map[string]struct{} // connection id -> match ids
}

func New(logger *slog.Logger, reg *registry.Registry, emitter emitter) *Router {
	return &Router{
		logger:   logger.With("component", "router"),
		registry: reg,
		emitter:  emitter,

		rooms:  make(map[string]map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
	}
}

// HandleCreate - creates a match, joins the creator to its room and
// returns the new identifier to the creator only.
func (that *Router) HandleCreate(connID string) {
	match := that.registry.Create()
	that.joinRoom(connID, match.ID())

	that.emitter.Emit(connID, ActionGameCreated, GameCreatedPayload{ID: match.ID()})

	that.logger.Info("match created", "matchID", match.ID(), "connID", connID)
}

// HandleJoin - joins the connection to the match's room and assigns it a
// seat, observer when both seats are taken. Once both seats are bound the
// whole room receives the current state.
func (that *Router) HandleJoin(connID, matchID string) {
	match, err := that.registry.Get(matchID)
	if err != nil {
		that.emitError(connID, err)
		return
	}

	that.joinRoom(connID, matchID)
	mark := match.AssignSeat(connID)

	that.emitter.Emit(connID, ActionPlayerAssigned, PlayerAssignedPayload{Mark: mark})

	that.logger.Info("connection joined match", "matchID", matchID, "connID", connID, "mark", mark)

	if match.BothSeatsTaken() {
		that.broadcast(matchID, ActionGameState, match.Snapshot())
	}
}

// HandleMove - validates that the requesting connection owns the claimed
// seat and applies the move. An accepted move is broadcast to the room; a
// rejected one is reported to the requester only.
func (that *Router) HandleMove(connID, matchID string, row, col int, mark string) {
	match, err := that.registry.Get(matchID)
	if err != nil {
		that.emitError(connID, err)
		return
	}

	holder, ok := match.SeatHolder(mark)
	if !ok || holder != connID {
		that.emitError(connID, apperror.ErrForbidden)
		return
	}

	if err = match.AttemptMove(row, col, mark); err != nil {
		that.emitError(connID, err)
		return
	}

	that.broadcast(matchID, ActionGameState, match.Snapshot())

	that.logger.Debug("move accepted", "matchID", matchID, "connID", connID, "mark", mark, "row", row, "col", col)
}

// HandleDisconnect - notifies every room where the connection held a
// seat, vacates those seats, leaves all rooms and deletes matches whose
// rooms are now empty.
func (that *Router) HandleDisconnect(connID string) {
	seated := that.registry.SeatedMatches(connID)
	for _, match := range seated {
		match.VacateSeats(connID)
	}

	emptied := that.leaveAll(connID)

	for _, match := range seated {
		that.broadcast(match.ID(), ActionPlayerDisconnected, nil)
	}

	for _, matchID := range emptied {
		that.registry.Remove(matchID)
		that.logger.Info("match removed, room is empty", "matchID", matchID)
	}
}

// joinRoom - adds the connection to the match's broadcast group.
func (that *Router) joinRoom(connID, matchID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[matchID] == nil {
		that.rooms[matchID] = make(map[string]struct{})
	}
	that.rooms[matchID][connID] = struct{}{}

	if that.joined[connID] == nil {
		that.joined[connID] = make(map[string]struct{})
	}
	that.joined[connID][matchID] = struct{}{}
}

// leaveAll - removes the connection from every room it joined and
// returns the identifiers of rooms left without members.
func (that *Router) leaveAll(connID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var emptied []string
	for matchID := range that.joined[connID] {
		delete(that.rooms[matchID], connID)

		if len(that.rooms[matchID]) == 0 {
			delete(that.rooms, matchID)
			emptied = append(emptied, matchID)
		}
	}

	delete(that.joined, connID)

	return emptied
}

// broadcast - fans an event out to every connection in the room.
func (that *Router) broadcast(matchID, action string, payload any) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for connID := range that.rooms[matchID] {
		that.emitter.Emit(connID, action, payload)
	}
}

func (that *Router) emitError(connID string, err error) {
	that.emitter.Emit(connID, ActionError, ErrorPayload{Message: err.Error()})
}
