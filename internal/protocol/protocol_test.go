package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

func TestEncode(t *testing.T) {
	t.Run("RESET has no payload field", func(t *testing.T) {
		data, err := EncodeReset()

		require.NoError(t, err)
		assert.Equal(t, `{"type":"RESET"}`, string(data))
	})

	t.Run("SET_PLAYER carries the binding", func(t *testing.T) {
		data, err := EncodeSetPlayer("p-1", entity.PlayerO)

		require.NoError(t, err)
		assert.Equal(t, `{"type":"SET_PLAYER","payload":{"playerId":"p-1","symbol":"O"}}`, string(data))
	})

	t.Run("MOVE wraps the full state", func(t *testing.T) {
		// Given: a state after X played the center
		state := entity.NewGameState()
		state.Board[4] = entity.PlayerX
		state.CurrentPlayer = entity.PlayerO
		state.Players.Set("a", entity.PlayerX)

		// When: encoding the move
		data, err := EncodeMove(state)

		// Then: the frame is the state under the MOVE type
		require.NoError(t, err)
		assert.Equal(t,
			`{"type":"MOVE","payload":{"board":["","","","","X","","","",""],"currentPlayer":"O","players":{"a":"X"}}}`,
			string(data))
	})
}

func TestDecode(t *testing.T) {
	t.Run("ASSIGN_SYMBOL", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"ASSIGN_SYMBOL","payload":"O"}`))

		require.NoError(t, err)
		assert.Equal(t, SymbolAssigned{Symbol: entity.PlayerO}, msg)
	})

	t.Run("ASSIGN_SYMBOL with an unknown mark is malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"ASSIGN_SYMBOL","payload":"Q"}`))

		require.ErrorIs(t, err, apperror.ErrMalformedMessage)
	})

	t.Run("ROOM_FULL", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"ROOM_FULL"}`))

		require.NoError(t, err)
		assert.Equal(t, RoomFull{}, msg)
	})

	t.Run("USER_COUNT", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"USER_COUNT","payload":2}`))

		require.NoError(t, err)
		assert.Equal(t, UserCount{Count: 2}, msg)
	})

	t.Run("USER_COUNT with a non-numeric payload is malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"USER_COUNT","payload":"two"}`))

		require.ErrorIs(t, err, apperror.ErrMalformedMessage)
	})

	t.Run("USER_COUNT without payload is malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"USER_COUNT"}`))

		require.ErrorIs(t, err, apperror.ErrMalformedMessage)
	})

	t.Run("A null payload is malformed for every kind that needs one", func(t *testing.T) {
		// Given: frames whose payload is an explicit null
		frames := []string{
			`{"type":"USER_COUNT","payload":null}`,
			`{"type":"ASSIGN_SYMBOL","payload":null}`,
			`{"type":"MOVE","payload":null}`,
			`{"type":"USER_COUNT","payload": null }`,
		}

		for _, frame := range frames {
			// When: decoding
			msg, err := Decode([]byte(frame))

			// Then: the frame is dropped instead of read as a zero value
			require.ErrorIs(t, err, apperror.ErrMalformedMessage, frame)
			assert.Nil(t, msg, frame)
		}
	})

	t.Run("Untyped frame is a bare snapshot", func(t *testing.T) {
		// Given: a frame without a type field
		frame := `{"board":["X","","","","","","","",""],"currentPlayer":"O","players":{"a":"X","b":"O"},"scores":{"a":1}}`

		// When: decoding it
		msg, err := Decode([]byte(frame))

		// Then: it is a snapshot tagged as bare
		require.NoError(t, err)
		snapshot, ok := msg.(Snapshot)
		require.True(t, ok)
		assert.Equal(t, OriginBare, snapshot.Origin)
		assert.Equal(t, entity.PlayerX, snapshot.State.Board[0])
		assert.Equal(t, entity.PlayerO, snapshot.State.SymbolOf("b"))
		assert.Equal(t, 1, snapshot.State.Scores["a"])
	})

	t.Run("MOVE from the relay is a tagged snapshot", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"MOVE","payload":{"board":["","","","","","","","",""],"currentPlayer":"X","players":{}}}`))

		require.NoError(t, err)
		snapshot, ok := msg.(Snapshot)
		require.True(t, ok)
		assert.Equal(t, OriginTagged, snapshot.Origin)
		assert.Equal(t, KindMove, snapshot.Kind())
	})

	t.Run("Snapshot with a short board is malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"board":["X"],"currentPlayer":"O","players":{}}`))

		require.ErrorIs(t, err, apperror.ErrMalformedMessage)
	})

	t.Run("Snapshot with duplicate symbols is malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"board":["","","","","","","","",""],"currentPlayer":"X","players":{"a":"X","b":"X"}}`))

		require.ErrorIs(t, err, apperror.ErrMalformedMessage)
	})

	t.Run("Unknown type", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"CHAT","payload":"hi"}`))

		require.ErrorIs(t, err, apperror.ErrUnknownKind)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":`))

		require.ErrorIs(t, err, apperror.ErrMalformedMessage)
	})
}
