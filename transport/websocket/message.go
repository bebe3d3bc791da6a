package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

const (
	actionMatchState  = "match:state"
	actionStonePlaced = "stone:placed"
	actionTurnAwait   = "turn:await"
	actionMatchOver   = "match:over"
	actionBoardSelect = "board:select"
	actionError       = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type StatePayload struct {
	Match    json.RawMessage `json:"match,omitempty"`
	Awaiting entity.Color    `json:"awaiting,omitempty"`
}

type StonePayload struct {
	Stone entity.Stone `json:"stone"`
	Turn  entity.Color `json:"turn"`
}

type TurnPayload struct {
	Color entity.Color `json:"color"`
}

type OverPayload struct {
	Result *entity.Result `json:"result"`
	Steps  int            `json:"steps"`
}

type SelectPayload struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func encodeMessage(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
