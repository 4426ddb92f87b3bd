package websocket

import "encoding/json"

// Message is the wire envelope: an action name plus an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinGamePayload struct {
	MatchID string `json:"match_id"`
}

type MakeTurnPayload struct {
	MatchID string `json:"match_id"`
	Row     *int   `json:"row"`
	Col     *int   `json:"col"`
	Mark    string `json:"symbol"`
}
