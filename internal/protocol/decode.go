package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Inbound is one decoded relay frame: SymbolAssigned, RoomFull, UserCount or Snapshot.
type Inbound interface {
	Kind() Kind
}

type SymbolAssigned struct {
	Symbol entity.Symbol
}

type RoomFull struct{}

type UserCount struct {
	Count int
}

// Origin tells how a snapshot was tagged on the wire.
type Origin int

const (
	// OriginBare is a frame without a type field.
	OriginBare Origin = iota + 1
	// OriginTagged is a MOVE frame carrying the state in its payload.
	OriginTagged
)

func (that Origin) String() string {
	switch that {
	case OriginBare:
		return "bare"
	case OriginTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

type Snapshot struct {
	State  entity.GameState
	Origin Origin
}

func (SymbolAssigned) Kind() Kind { return KindAssignSymbol }
func (RoomFull) Kind() Kind       { return KindRoomFull }
func (UserCount) Kind() Kind      { return KindUserCount }
func (Snapshot) Kind() Kind       { return KindMove }

// Decode parses a relay frame. Errors wrap apperror.ErrMalformedMessage or apperror.ErrUnknownKind;
// the frame should then be dropped.
func Decode(frame []byte) (Inbound, error) {
	var envelope struct {
		Type    *Kind           `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	if envelope.Type == nil {
		return decodeSnapshot(frame, OriginBare)
	}

	switch *envelope.Type {
	case KindAssignSymbol:
		data, err := payloadOf(KindAssignSymbol, envelope.Payload)
		if err != nil {
			return nil, err
		}

		var symbol entity.Symbol
		if err := json.Unmarshal(data, &symbol); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %w", apperror.ErrMalformedMessage, KindAssignSymbol, err)
		}

		if !symbol.IsPlayer() {
			return nil, fmt.Errorf("%w: %s payload %q", apperror.ErrMalformedMessage, KindAssignSymbol, symbol)
		}

		return SymbolAssigned{Symbol: symbol}, nil

	case KindRoomFull:
		return RoomFull{}, nil

	case KindUserCount:
		data, err := payloadOf(KindUserCount, envelope.Payload)
		if err != nil {
			return nil, err
		}

		var count int
		if err := json.Unmarshal(data, &count); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %w", apperror.ErrMalformedMessage, KindUserCount, err)
		}

		if count < 0 {
			return nil, fmt.Errorf("%w: %s payload %d", apperror.ErrMalformedMessage, KindUserCount, count)
		}

		return UserCount{Count: count}, nil

	case KindMove:
		data, err := payloadOf(KindMove, envelope.Payload)
		if err != nil {
			return nil, err
		}

		return decodeSnapshot(data, OriginTagged)

	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, *envelope.Type)
	}
}

// payloadOf rejects a missing or null payload; json.Unmarshal would leave the target at its zero value.
func payloadOf(kind Kind, raw json.RawMessage) ([]byte, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: %s payload is missing", apperror.ErrMalformedMessage, kind)
	}

	return data, nil
}

func decodeSnapshot(data []byte, origin Origin) (Inbound, error) {
	var state entity.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s snapshot: %w", apperror.ErrMalformedMessage, origin, err)
	}

	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s snapshot: %w", apperror.ErrMalformedMessage, origin, err)
	}

	return Snapshot{State: state, Origin: origin}, nil
}
