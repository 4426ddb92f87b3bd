package websocket

import "encoding/json"

func (that *Server) handleNewGame(connID string, _ json.RawMessage) {
	that.router.HandleCreate(connID)
}

func (that *Server) handleJoinGame(connID string, payload json.RawMessage) {
	var req JoinGamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.MatchID == "" {
		that.emitInvalidRequest(connID)
		return
	}

	that.router.HandleJoin(connID, req.MatchID)
}

func (that *Server) handleGameTurn(connID string, payload json.RawMessage) {
	var req MakeTurnPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.MatchID == "" || req.Row == nil || req.Col == nil || req.Mark == "" {
		that.emitInvalidRequest(connID)
		return
	}

	that.router.HandleMove(connID, req.MatchID, *req.Row, *req.Col, req.Mark)
}
