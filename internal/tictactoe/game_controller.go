package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type sender interface {
	SendMove(state entity.GameState) bool
	SendReset() bool
	SetPlayer(playerID string, symbol entity.Symbol) bool
}

type gameSession interface {
	PlayerID() string
	PlayerSymbol() entity.Symbol
	Current() entity.GameState
	Propose(state entity.GameState, cell int, symbol entity.Symbol)
	ResetScores()
}

// GameController turns player input into relay messages. It checks moves against the
// local state only; the relay decides what is legal.
type GameController struct {
	logger  *slog.Logger
	session gameSession
	sender  sender

	eagerReset bool
}

type Option func(*GameController)

// WithEagerReset zeroes the winner detection scores as soon as a reset is requested.
func WithEagerReset() Option {
	return func(that *GameController) {
		that.eagerReset = true
	}
}

func NewGameController(logger *slog.Logger, session gameSession, sender sender, opts ...Option) *GameController {
	controller := &GameController{
		logger:  logger.With("component", "controller"),
		session: session,
		sender:  sender,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// AttemptMove places the current player's mark at cell and sends the resulting state.
// An invalid move changes nothing and returns false.
func (that *GameController) AttemptMove(cell int) bool {
	log := that.logger.With("method", "AttemptMove", "cell", cell)

	current := that.session.Current()
	symbol := that.session.PlayerSymbol()

	if err := validateMove(current, symbol, cell); err != nil {
		log.Debug("move ignored", "error", err)
		return false
	}

	next := current.Clone()
	next.Board[cell] = current.CurrentPlayer
	next.CurrentPlayer = entity.ToggleMark(current.CurrentPlayer)
	next.Players.Set(that.session.PlayerID(), symbol)

	that.session.Propose(next, cell, current.CurrentPlayer)

	if !that.sender.SendMove(next) {
		log.Warn("move kept locally but not sent")
	}

	return true
}

// RequestReset asks the relay for a new game. Local state changes only when the relay answers.
func (that *GameController) RequestReset() bool {
	sent := that.sender.SendReset()

	if that.eagerReset {
		that.session.ResetScores()
	}

	return sent
}

// ClaimSymbol asks the relay to bind this player to symbol.
func (that *GameController) ClaimSymbol(symbol entity.Symbol) bool {
	if !symbol.IsPlayer() {
		that.logger.Debug("claim ignored", "symbol", symbol)
		return false
	}

	return that.sender.SetPlayer(that.session.PlayerID(), symbol)
}

// validateMove - checks if the move is valid.
func validateMove(state entity.GameState, playerSymbol entity.Symbol, cell int) error {
	if cell < 0 || cell >= len(state.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if state.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if playerSymbol != state.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}

	return nil
}
