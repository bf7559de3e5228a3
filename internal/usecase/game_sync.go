package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-client/internal/pubsub"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
)

type eventSource interface {
	Events() *pubsub.Topic[protocol.Inbound]
	States() *pubsub.Topic[websocket.State]
}

type gameSession interface {
	ApplyGameState(state entity.GameState) []session.Notice
	ApplySymbolAssignment(symbol entity.Symbol) []session.Notice
	ApplyRoomFull() []session.Notice
	ApplyUserCount(count int) []session.Notice
	ApplyDisconnected() []session.Notice
	Teardown()
}

// ConnectionChanged tells the player about a transport state transition.
type ConnectionChanged struct {
	State websocket.State
}

func (that ConnectionChanged) Text() string {
	switch that.State {
	case websocket.StateConnecting:
		return "Connecting to the relay..."
	case websocket.StateOpen:
		return "Connected"
	case websocket.StateClosed:
		return "Disconnected from the relay"
	default:
		return fmt.Sprintf("Connection %s", that.State)
	}
}

// StateUpdated follows every applied relay event so views know to redraw. It has no text.
type StateUpdated struct{}

func (StateUpdated) Text() string {
	return ""
}

// GameSync is the only writer of the session. It applies relay events in arrival order
// and republishes the resulting notices.
type GameSync struct {
	logger  *slog.Logger
	session gameSession

	events  *pubsub.Subscription[protocol.Inbound]
	states  *pubsub.Subscription[websocket.State]
	notices *pubsub.Topic[session.Notice]
}

// NewGameSync subscribes to source right away, so nothing published after it returns is missed.
func NewGameSync(logger *slog.Logger, game gameSession, source eventSource) *GameSync {
	return &GameSync{
		logger:  logger.With("component", "sync"),
		session: game,
		events:  source.Events().Subscribe(),
		states:  source.States().Subscribe(),
		notices: pubsub.NewTopic[session.Notice](),
	}
}

func (that *GameSync) Notices() *pubsub.Topic[session.Notice] {
	return that.notices
}

// Run applies events until ctx is done or the source shuts down, then tears the session down.
func (that *GameSync) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	defer func() {
		that.events.Close()
		that.states.Close()
		that.session.Teardown()
		that.notices.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-that.events.C():
			if !ok {
				log.Info("event source closed")
				return nil
			}

			that.publish(append(that.apply(event), StateUpdated{}))

		case state, ok := <-that.states.C():
			if !ok {
				log.Info("connection state source closed")
				return nil
			}

			var notices []session.Notice
			if state == websocket.StateClosed {
				notices = that.session.ApplyDisconnected()
			}

			that.publish(append(notices, ConnectionChanged{State: state}))
		}
	}
}

func (that *GameSync) apply(event protocol.Inbound) []session.Notice {
	switch msg := event.(type) {
	case protocol.SymbolAssigned:
		return that.session.ApplySymbolAssignment(msg.Symbol)
	case protocol.RoomFull:
		return that.session.ApplyRoomFull()
	case protocol.UserCount:
		return that.session.ApplyUserCount(msg.Count)
	case protocol.Snapshot:
		that.logger.Debug("snapshot received", "origin", msg.Origin)
		return that.session.ApplyGameState(msg.State)
	default:
		that.logger.Warn("unhandled event", "type", event.Kind())
		return nil
	}
}

func (that *GameSync) publish(notices []session.Notice) {
	for _, notice := range notices {
		that.notices.Publish(notice)
	}
}
