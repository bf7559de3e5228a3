// Package session folds relay events into the client's view of the game.
//
// The Session keeps two game states apart: the last snapshot confirmed by the relay and,
// while a local move is in flight, the proposal built by the move controller. Board and
// CurrentPlayer show the proposal until the next snapshot replaces it. Apply* methods
// return the notices the player should see; they are meant to be called from a single
// goroutine, while the accessors may be used from any goroutine.
package session

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// ReadinessPolicy selects which signals decide ReadyToPlay.
type ReadinessPolicy string

const (
	// ReadinessLastSignal lets snapshots, symbol assignment and user counts each set
	// readiness; the last one applied wins.
	ReadinessLastSignal ReadinessPolicy = "last-signal"
	// ReadinessOccupancy only counts players bound in snapshots.
	ReadinessOccupancy ReadinessPolicy = "occupancy"
	// ReadinessConnections only counts connected users.
	ReadinessConnections ReadinessPolicy = "connections"
)

func (that ReadinessPolicy) Valid() bool {
	switch that {
	case ReadinessLastSignal, ReadinessOccupancy, ReadinessConnections:
		return true
	default:
		return false
	}
}

type proposal struct {
	state  entity.GameState
	cell   int
	symbol entity.Symbol
}

type Session struct {
	logger   *slog.Logger
	playerID string
	policy   ReadinessPolicy

	mu              sync.RWMutex
	playerSymbol    entity.Symbol
	userCount       int
	readyToPlay     bool
	confirmed       entity.GameState
	proposed        *proposal
	symbols         []entity.Symbol
	displayScores   map[entity.Symbol]int
	previousScores  map[entity.Symbol]int
	assignedMessage string
	roomFullMessage string
}

type Option func(*Session)

func WithReadinessPolicy(policy ReadinessPolicy) Option {
	return func(that *Session) {
		if policy.Valid() {
			that.policy = policy
		}
	}
}

// New creates a session for playerID. The id is fixed for the session's lifetime.
func New(logger *slog.Logger, playerID string, opts ...Option) *Session {
	session := &Session{
		logger:   logger.With("component", "session", "playerID", playerID),
		playerID: playerID,
		policy:   ReadinessLastSignal,
	}

	session.reset()

	for _, opt := range opts {
		opt(session)
	}

	return session
}

func (that *Session) reset() {
	that.playerSymbol = entity.EmptyCell
	that.userCount = 0
	that.readyToPlay = false
	that.confirmed = entity.NewGameState()
	that.proposed = nil
	that.symbols = nil
	that.displayScores = zeroScores()
	that.previousScores = zeroScores()
	that.assignedMessage = ""
	that.roomFullMessage = ""
}

// ApplyGameState replaces the confirmed state with a relay snapshot and re-derives
// symbol, readiness and scores. A pending local move is settled against it.
func (that *Session) ApplyGameState(state entity.GameState) []Notice {
	log := that.logger.With("method", "ApplyGameState")

	state = state.Clone()

	that.mu.Lock()
	defer that.mu.Unlock()

	var notices []Notice

	if that.proposed != nil {
		if state.Board[that.proposed.cell] != that.proposed.symbol {
			log.Warn("local move was not kept by the relay", "cell", that.proposed.cell)
			notices = append(notices, MoveRejected{
				Cell:      that.proposed.cell,
				Symbol:    that.proposed.symbol,
				Confirmed: state.Board,
			})
		}
		that.proposed = nil
	}

	that.confirmed = state

	if symbol := state.SymbolOf(that.playerID); symbol != entity.EmptyCell {
		that.playerSymbol = symbol
	}

	if that.policy != ReadinessConnections {
		that.readyToPlay = state.PlayerCount() == 2
	}

	that.symbols = DeriveSymbols(state.Players)
	that.displayScores = DeriveDisplayScores(state.Players, state.Scores)

	for _, symbol := range []entity.Symbol{entity.PlayerX, entity.PlayerO} {
		if winner, ok := that.detectWinner(symbol); ok {
			notices = append(notices, winner)
		}
	}

	log.Debug("applied snapshot", "turn", state.CurrentPlayer, "players", state.PlayerCount(), "ready", that.readyToPlay)

	return notices
}

// ApplySymbolAssignment records the symbol the relay gave this client.
func (that *Session) ApplySymbolAssignment(symbol entity.Symbol) []Notice {
	that.mu.Lock()
	defer that.mu.Unlock()

	notice := Assigned{Symbol: symbol}

	that.playerSymbol = symbol
	that.assignedMessage = notice.Text()

	if that.policy == ReadinessLastSignal {
		that.readyToPlay = true
	}

	that.logger.Debug("symbol assigned", "symbol", symbol, "ready", that.readyToPlay)

	return []Notice{notice}
}

// ApplyRoomFull records that the relay turned this client away. Readiness is untouched.
func (that *Session) ApplyRoomFull() []Notice {
	that.mu.Lock()
	defer that.mu.Unlock()

	notice := RoomFull{}
	that.roomFullMessage = notice.Text()

	return []Notice{notice}
}

// ApplyUserCount records room occupancy. Fewer than two users always clears readiness.
func (that *Session) ApplyUserCount(count int) []Notice {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.userCount = count

	if that.policy != ReadinessOccupancy {
		that.readyToPlay = count >= 2
	}

	that.logger.Debug("user count changed", "count", count, "ready", that.readyToPlay)

	return nil
}

// ApplyDisconnected drops what only held while the transport was up: the pending proposal,
// readiness and the user count. The confirmed state stays on screen until the next snapshot.
func (that *Session) ApplyDisconnected() []Notice {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.proposed != nil {
		that.logger.Info("dropping unconfirmed move", "cell", that.proposed.cell)
		that.proposed = nil
	}

	that.readyToPlay = false
	that.userCount = 0

	return nil
}

// DetectWinner reports a win for symbol when its display score rose above the last one seen.
func (that *Session) DetectWinner(symbol entity.Symbol) (Winner, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.detectWinner(symbol)
}

func (that *Session) detectWinner(symbol entity.Symbol) (Winner, bool) {
	score, ok := that.displayScores[symbol]
	if !ok {
		return Winner{}, false
	}

	if score <= that.previousScores[symbol] {
		return Winner{}, false
	}

	that.previousScores[symbol] = score

	return Winner{Symbol: symbol}, true
}

// Propose shows a local move until the relay answers with a snapshot.
func (that *Session) Propose(state entity.GameState, cell int, symbol entity.Symbol) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.proposed = &proposal{
		state:  state.Clone(),
		cell:   cell,
		symbol: symbol,
	}
}

// ResetScores zeroes the scores used for winner detection.
func (that *Session) ResetScores() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.previousScores = zeroScores()
}

// Teardown returns the session to its initial values. The player id is kept.
func (that *Session) Teardown() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.reset()
	that.logger.Debug("session torn down")
}
