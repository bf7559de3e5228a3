package websocket

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-client/internal/pubsub"
	"github.com/rocketscienceinc/tictactoe-client/testing/relay"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newClient(t *testing.T) *Client {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	client := New(logger)
	t.Cleanup(client.Shutdown)

	return client
}

func next[T any](t *testing.T, sub *pubsub.Subscription[T]) T {
	t.Helper()

	select {
	case value, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return value
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for event")
	}

	var zero T
	return zero
}

func TestClient_Send(t *testing.T) {
	t.Run("Rejects sends before Connect", func(t *testing.T) {
		// Given: a client that never connected
		client := newClient(t)

		// When: sending a reset
		sent := client.SendReset()

		// Then: nothing is sent and the rejection is counted
		assert.False(t, sent)
		assert.Equal(t, StateIdle, client.State())
		assert.Equal(t, uint64(1), client.Stats().Rejected)
	})

	t.Run("Writes RESET as a bare frame", func(t *testing.T) {
		// Given: a connected client
		server := relay.New(t)
		client := newClient(t)
		require.NoError(t, client.Connect(context.Background(), server.URL()))

		// When: sending a reset
		sent := client.SendReset()

		// Then: the relay receives exactly {"type":"RESET"}
		require.True(t, sent)
		require.Eventually(t, func() bool { return len(server.Received()) == 1 }, waitFor, tick)
		assert.Equal(t, `{"type":"RESET"}`, string(server.Received()[0]))
	})

	t.Run("Rejects sends after Close", func(t *testing.T) {
		server := relay.New(t)
		client := newClient(t)
		require.NoError(t, client.Connect(context.Background(), server.URL()))

		client.Close()

		assert.Equal(t, StateClosed, client.State())
		assert.False(t, client.SetPlayer("p-1", entity.PlayerX))
	})
}

func TestClient_Connect(t *testing.T) {
	t.Run("Publishes assignment, occupancy and state changes", func(t *testing.T) {
		// Given: a client subscribed before connecting
		server := relay.New(t)
		client := newClient(t)
		states := client.States().Subscribe()
		symbols := client.Symbols().Subscribe()
		counts := client.UserCounts().Subscribe()

		// When: it connects to an empty room
		err := client.Connect(context.Background(), server.URL())

		// Then: it goes CONNECTING -> OPEN and receives X and a count of 1
		require.NoError(t, err)
		assert.Equal(t, StateConnecting, next(t, states))
		assert.Equal(t, StateOpen, next(t, states))
		assert.Equal(t, entity.PlayerX, next(t, symbols))
		assert.Equal(t, 1, next(t, counts))
	})

	t.Run("A second Connect replaces the first transport", func(t *testing.T) {
		// Given: a connected client
		server := relay.New(t)
		client := newClient(t)
		require.NoError(t, client.Connect(context.Background(), server.URL()))
		require.Eventually(t, func() bool { return server.Members() == 1 }, waitFor, tick)

		// When: it connects again
		require.NoError(t, client.Connect(context.Background(), server.URL()))

		// Then: the relay ends up with a single member and the client is open
		require.Eventually(t, func() bool { return server.Members() == 1 }, waitFor, tick)
		assert.Equal(t, StateOpen, client.State())
		assert.True(t, client.SendReset())
	})

	t.Run("A failed dial leaves the client closed", func(t *testing.T) {
		client := newClient(t)

		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()

		err := client.Connect(ctx, "ws://127.0.0.1:1/unreachable")

		require.Error(t, err)
		assert.Equal(t, StateClosed, client.State())
	})

	t.Run("A third client is told the room is full", func(t *testing.T) {
		server := relay.New(t)
		first, second, third := newClient(t), newClient(t), newClient(t)
		full := third.RoomFull().Subscribe()

		require.NoError(t, first.Connect(context.Background(), server.URL()))
		require.NoError(t, second.Connect(context.Background(), server.URL()))
		require.Eventually(t, func() bool { return server.Members() == 2 }, waitFor, tick)
		require.NoError(t, third.Connect(context.Background(), server.URL()))

		next(t, full)
		assert.Equal(t, 2, server.Members())
	})
}

func TestClient_Dispatch(t *testing.T) {
	t.Run("Drops malformed frames and keeps delivering", func(t *testing.T) {
		// Given: a connected client that saw the initial count
		server := relay.New(t)
		client := newClient(t)
		counts := client.UserCounts().Subscribe()
		require.NoError(t, client.Connect(context.Background(), server.URL()))
		require.Equal(t, 1, next(t, counts))

		// When: the relay sends garbage, an unknown type, a bad count and then a good count
		server.Broadcast([]byte(`not json`))
		server.Broadcast([]byte(`{"type":"CHAT","payload":"hi"}`))
		server.Broadcast([]byte(`{"type":"USER_COUNT","payload":"many"}`))
		server.Broadcast([]byte(`{"type":"USER_COUNT","payload":7}`))

		// Then: only the good count is delivered
		assert.Equal(t, 7, next(t, counts))
		assert.Equal(t, uint64(3), client.Stats().Dropped)
		assert.Equal(t, StateOpen, client.State())
	})

	t.Run("Publishes relay snapshots", func(t *testing.T) {
		server := relay.New(t)
		client := newClient(t)
		snapshots := client.GameStates().Subscribe()
		require.NoError(t, client.Connect(context.Background(), server.URL()))

		server.Broadcast([]byte(`{"type":"MOVE","payload":{"board":["X","","","","","","","",""],"currentPlayer":"O","players":{}}}`))

		snapshot := next(t, snapshots)
		assert.Equal(t, entity.PlayerX, snapshot.State.Board[0])
		assert.Equal(t, entity.PlayerO, snapshot.State.CurrentPlayer)
	})

	t.Run("Events keep arrival order across kinds", func(t *testing.T) {
		// Given: a client subscribed to every event
		server := relay.New(t)
		client := newClient(t)
		events := client.Events().Subscribe()

		// When: it joins the room
		require.NoError(t, client.Connect(context.Background(), server.URL()))

		// Then: the assignment comes before the count, as the relay sent them
		assert.Equal(t, protocol.SymbolAssigned{Symbol: entity.PlayerX}, next(t, events))
		assert.Equal(t, protocol.UserCount{Count: 1}, next(t, events))
	})
}
