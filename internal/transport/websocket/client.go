package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-client/internal/pubsub"
)

const (
	// Time allowed to write a frame to the relay.
	writeWait = 10 * time.Second

	handshakeTimeout = 10 * time.Second
)

// ErrSuperseded is returned by Connect when a later Connect or Close replaced the dial in flight.
var ErrSuperseded = errors.New("connection attempt superseded")

// Client owns the single transport to the relay and fans inbound frames out to typed topics.
// It never reconnects on its own.
type Client struct {
	logger *slog.Logger
	dialer *gorilla.Dialer

	mu    sync.Mutex
	conn  *gorilla.Conn
	gen   uint64
	state State

	writeMu sync.Mutex

	sent     atomic.Uint64
	rejected atomic.Uint64
	received atomic.Uint64
	dropped  atomic.Uint64

	events    *pubsub.Topic[protocol.Inbound]
	symbols   *pubsub.Topic[entity.Symbol]
	roomFull  *pubsub.Topic[struct{}]
	userCount *pubsub.Topic[int]
	snapshots *pubsub.Topic[protocol.Snapshot]
	states    *pubsub.Topic[State]
}

type Option func(*Client)

func WithDialer(dialer *gorilla.Dialer) Option {
	return func(that *Client) {
		that.dialer = dialer
	}
}

func New(logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		logger: logger.With("component", "connection"),
		dialer: &gorilla.Dialer{HandshakeTimeout: handshakeTimeout},
		state:  StateIdle,

		events:    pubsub.NewTopic[protocol.Inbound](),
		symbols:   pubsub.NewTopic[entity.Symbol](),
		roomFull:  pubsub.NewTopic[struct{}](),
		userCount: pubsub.NewTopic[int](),
		snapshots: pubsub.NewTopic[protocol.Snapshot](),
		states:    pubsub.NewTopic[State](),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Events delivers every decoded message, whatever its kind, in arrival order.
func (that *Client) Events() *pubsub.Topic[protocol.Inbound] {
	return that.events
}

func (that *Client) Symbols() *pubsub.Topic[entity.Symbol] {
	return that.symbols
}

func (that *Client) RoomFull() *pubsub.Topic[struct{}] {
	return that.roomFull
}

func (that *Client) UserCounts() *pubsub.Topic[int] {
	return that.userCount
}

func (that *Client) GameStates() *pubsub.Topic[protocol.Snapshot] {
	return that.snapshots
}

func (that *Client) States() *pubsub.Topic[State] {
	return that.states
}

func (that *Client) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

func (that *Client) Stats() Stats {
	return Stats{
		Sent:     that.sent.Load(),
		Rejected: that.rejected.Load(),
		Received: that.received.Load(),
		Dropped:  that.dropped.Load(),
	}
}

// Connect dials endpoint. A transport opened by an earlier call is closed and replaced;
// its late events are ignored. A failed dial leaves the client Closed.
func (that *Client) Connect(ctx context.Context, endpoint string) error {
	log := that.logger.With("method", "Connect", "endpoint", endpoint)

	that.mu.Lock()
	that.gen++
	gen := that.gen
	previous := that.conn
	that.conn = nil
	that.setState(StateConnecting)
	that.mu.Unlock()

	if previous != nil {
		that.closeConn(previous)
		log.Info("replaced previous connection")
	}

	conn, _, err := that.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		that.mu.Lock()
		if that.gen == gen {
			that.setState(StateClosed)
		}
		that.mu.Unlock()

		log.Warn("failed to connect", "error", err)

		return fmt.Errorf("failed to dial relay: %w", err)
	}

	that.mu.Lock()
	if that.gen != gen {
		that.mu.Unlock()
		conn.Close()

		return ErrSuperseded
	}

	that.conn = conn
	that.setState(StateOpen)
	that.mu.Unlock()

	log.Info("connected to relay")

	go that.readLoop(gen, conn)

	return nil
}

// Close tears the transport down. Further sends are rejected until the next Connect.
func (that *Client) Close() {
	that.mu.Lock()
	that.gen++
	conn := that.conn
	that.conn = nil
	if that.state == StateOpen || that.state == StateConnecting {
		that.setState(StateClosed)
	}
	that.mu.Unlock()

	if conn != nil {
		that.closeConn(conn)
		that.logger.Info("connection closed by client")
	}
}

// Shutdown closes the transport and ends every topic subscription.
func (that *Client) Shutdown() {
	that.Close()

	that.events.Close()
	that.symbols.Close()
	that.roomFull.Close()
	that.userCount.Close()
	that.snapshots.Close()
	that.states.Close()
}

// setState records the transition and publishes it. Callers hold mu.
func (that *Client) setState(state State) {
	if that.state == state {
		return
	}

	that.logger.Debug("connection state changed", "from", that.state, "to", state)
	that.state = state
	that.states.Publish(state)
}

func (that *Client) current(gen uint64) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gen == gen
}

func (that *Client) closeConn(conn *gorilla.Conn) {
	that.writeMu.Lock()
	_ = conn.WriteControl(
		gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	that.writeMu.Unlock()

	conn.Close()
}

func (that *Client) readLoop(gen uint64, conn *gorilla.Conn) {
	log := that.logger.With("method", "readLoop")

	defer func() {
		conn.Close()

		that.mu.Lock()
		if that.gen == gen {
			that.conn = nil
			that.setState(StateClosed)
		}
		that.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
				log.Warn("connection lost", "error", err)
			} else {
				log.Info("connection closed", "error", err)
			}
			return
		}

		if !that.current(gen) {
			return
		}

		that.received.Add(1)
		that.dispatch(data)
	}
}
