package websocket

import (
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
)

// Send writes frame if and only if the transport is open. Otherwise the frame is
// counted as rejected and logged; the caller only sees false.
func (that *Client) Send(frame []byte) bool {
	log := that.logger.With("method", "Send")

	that.mu.Lock()
	conn := that.conn
	state := that.state
	that.mu.Unlock()

	if state != StateOpen || conn == nil {
		that.rejected.Add(1)
		log.Debug("frame not sent", "state", state, "error", apperror.ErrNotConnected)

		return false
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(gorilla.TextMessage, frame); err != nil {
		that.rejected.Add(1)
		log.Warn("failed to write frame", "error", err)

		return false
	}

	that.sent.Add(1)

	return true
}

// SendMove sends the full post-move state under MOVE.
func (that *Client) SendMove(state entity.GameState) bool {
	frame, err := protocol.EncodeMove(state)
	if err != nil {
		that.rejected.Add(1)
		that.logger.Error("failed to encode move", "error", err)

		return false
	}

	return that.Send(frame)
}

// SendReset asks the relay to clear the room's board, turn and scores.
func (that *Client) SendReset() bool {
	frame, err := protocol.EncodeReset()
	if err != nil {
		that.rejected.Add(1)
		that.logger.Error("failed to encode reset", "error", err)

		return false
	}

	return that.Send(frame)
}

// SetPlayer asks the relay to bind playerID to symbol.
func (that *Client) SetPlayer(playerID string, symbol entity.Symbol) bool {
	frame, err := protocol.EncodeSetPlayer(playerID, symbol)
	if err != nil {
		that.rejected.Add(1)
		that.logger.Error("failed to encode player binding", "error", err)

		return false
	}

	return that.Send(frame)
}

func (that *Client) dispatch(data []byte) {
	log := that.logger.With("method", "dispatch")

	defer func() {
		if err := recover(); err != nil {
			that.dropped.Add(1)
			log.Error("recovered while dispatching frame", "error", err)
		}
	}()

	message, err := protocol.Decode(data)
	if err != nil {
		that.dropped.Add(1)
		log.Warn("dropped frame", "error", err)

		return
	}

	that.events.Publish(message)

	switch msg := message.(type) {
	case protocol.SymbolAssigned:
		that.symbols.Publish(msg.Symbol)
	case protocol.RoomFull:
		that.roomFull.Publish(struct{}{})
	case protocol.UserCount:
		that.userCount.Publish(msg.Count)
	case protocol.Snapshot:
		that.snapshots.Publish(msg)
	default:
		log.Warn("no typed topic for message", "type", message.Kind())
	}
}
