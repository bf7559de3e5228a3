package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type Kind string

const (
	KindAssignSymbol Kind = "ASSIGN_SYMBOL"
	KindRoomFull     Kind = "ROOM_FULL"
	KindUserCount    Kind = "USER_COUNT"
	KindSetPlayer    Kind = "SET_PLAYER"
	KindMove         Kind = "MOVE"
	KindReset        Kind = "RESET"
)

// Message is the envelope of every frame exchanged with the relay.
type Message struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeMove builds {"type":"MOVE","payload":<state>}.
func EncodeMove(state entity.GameState) ([]byte, error) {
	return encode(KindMove, state)
}

// EncodeReset builds {"type":"RESET"}.
func EncodeReset() ([]byte, error) {
	return encode(KindReset, nil)
}

// EncodeSetPlayer builds {"type":"SET_PLAYER","payload":{"playerId":..,"symbol":..}}.
func EncodeSetPlayer(playerID string, symbol entity.Symbol) ([]byte, error) {
	return encode(KindSetPlayer, entity.PlayerBinding{PlayerID: playerID, Symbol: symbol})
}

// EncodeAssignSymbol, EncodeRoomFull and EncodeUserCount build the relay side frames.
func EncodeAssignSymbol(symbol entity.Symbol) ([]byte, error) {
	return encode(KindAssignSymbol, symbol)
}

func EncodeRoomFull() ([]byte, error) {
	return encode(KindRoomFull, nil)
}

func EncodeUserCount(count int) ([]byte, error) {
	return encode(KindUserCount, count)
}

func encode(kind Kind, payload any) ([]byte, error) {
	message := Message{Type: kind}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
		}
		message.Payload = data
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", kind, err)
	}

	return data, nil
}
