// Package relay runs an in-process relay for tests. It follows the relay contract the
// client expects: symbols in join order, USER_COUNT on occupancy change, ROOM_FULL for a
// third client, MOVE rebroadcast as a bare snapshot and RESET clearing board, turn and scores.
package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

type Relay struct {
	*testing.T
	logger *slog.Logger
	server *httptest.Server

	mu          sync.Mutex
	members     []*peer
	state       entity.GameState
	received    [][]byte
	rejectMoves bool
}

type peer struct {
	conn    *websocket.Conn
	symbol  entity.Symbol
	writeMu sync.Mutex
}

// New starts a relay that is shut down when the test ends.
func New(t *testing.T) *Relay {
	t.Helper()

	that := &Relay{
		T:      t,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("component", "relay"),
		state:  entity.NewGameState(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", that.serveWS)
	that.server = httptest.NewServer(mux)

	t.Cleanup(that.server.Close)

	return that
}

// URL returns the ws:// endpoint of the relay.
func (that *Relay) URL() string {
	return "ws" + strings.TrimPrefix(that.server.URL, "http")
}

// RejectMoves makes the relay answer every MOVE with the unchanged state.
func (that *Relay) RejectMoves(reject bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rejectMoves = reject
}

// Received returns a copy of every frame the relay got from clients.
func (that *Relay) Received() [][]byte {
	that.mu.Lock()
	defer that.mu.Unlock()

	frames := make([][]byte, len(that.received))
	copy(frames, that.received)

	return frames
}

// Members returns the number of clients holding a symbol.
func (that *Relay) Members() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.members)
}

// Broadcast sends a raw frame to every member.
func (that *Relay) Broadcast(frame []byte) {
	that.mu.Lock()
	members := append([]*peer(nil), that.members...)
	that.mu.Unlock()

	for _, member := range members {
		that.write(member, frame)
	}
}

func (that *Relay) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := &peer{conn: conn}
	defer func() {
		that.leave(client)
		conn.Close()
	}()

	that.join(client)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info("client disconnected", "symbol", client.symbol)
			return
		}

		that.handle(data)
	}
}

func (that *Relay) join(client *peer) {
	that.mu.Lock()

	if len(that.members) >= 2 {
		that.mu.Unlock()
		that.write(client, mustEncode(protocol.EncodeRoomFull()))
		return
	}

	client.symbol = entity.PlayerX
	for _, member := range that.members {
		if member.symbol == entity.PlayerX {
			client.symbol = entity.PlayerO
		}
	}

	that.members = append(that.members, client)
	count := len(that.members)
	members := append([]*peer(nil), that.members...)
	that.mu.Unlock()

	that.write(client, mustEncode(protocol.EncodeAssignSymbol(client.symbol)))

	for _, member := range members {
		that.write(member, mustEncode(protocol.EncodeUserCount(count)))
	}
}

func (that *Relay) leave(client *peer) {
	that.mu.Lock()

	index := -1
	for i, member := range that.members {
		if member == client {
			index = i
		}
	}

	if index < 0 {
		that.mu.Unlock()
		return
	}

	that.members = append(that.members[:index], that.members[index+1:]...)
	count := len(that.members)
	members := append([]*peer(nil), that.members...)
	that.mu.Unlock()

	for _, member := range members {
		that.write(member, mustEncode(protocol.EncodeUserCount(count)))
	}
}

func (that *Relay) handle(data []byte) {
	log := that.logger.With("method", "handle")

	var message protocol.Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Error("failed to unmarshal message", "error", err)
		return
	}

	that.mu.Lock()
	that.received = append(that.received, append([]byte(nil), data...))

	switch message.Type {
	case protocol.KindMove:
		var proposed entity.GameState
		if err := json.Unmarshal(message.Payload, &proposed); err != nil {
			that.mu.Unlock()
			log.Error("failed to unmarshal move", "error", err)
			return
		}

		if !that.rejectMoves {
			that.applyMove(proposed)
		}

	case protocol.KindSetPlayer:
		var binding entity.PlayerBinding
		if err := json.Unmarshal(message.Payload, &binding); err != nil {
			that.mu.Unlock()
			log.Error("failed to unmarshal binding", "error", err)
			return
		}

		that.state.Players.Set(binding.PlayerID, binding.Symbol)

	case protocol.KindReset:
		players := that.state.Players
		that.state = entity.NewGameState()
		that.state.Players = players

	default:
		that.mu.Unlock()
		log.Error("unknown message type", "type", message.Type)
		return
	}

	snapshot, err := json.Marshal(that.state)
	that.mu.Unlock()

	if err != nil {
		log.Error("failed to marshal state", "error", err)
		return
	}

	that.Broadcast(snapshot)
}

// applyMove takes the proposed board and awards a point when it holds a line. Callers hold mu.
func (that *Relay) applyMove(proposed entity.GameState) {
	that.state.Board = proposed.Board
	that.state.CurrentPlayer = proposed.CurrentPlayer

	for pair := proposed.Players.Oldest(); pair != nil; pair = pair.Next() {
		that.state.Players.Set(pair.Key, pair.Value)
	}

	winner := that.state.Board.Outcome()
	if !winner.IsPlayer() {
		return
	}

	for pair := that.state.Players.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == winner {
			that.state.Scores[pair.Key]++
		}
	}
}

func (that *Relay) write(client *peer, frame []byte) {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()

	_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		that.logger.Warn("failed to write frame", "error", err)
	}
}

func mustEncode(frame []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return frame
}
