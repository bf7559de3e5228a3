package session

import "github.com/rocketscienceinc/tictactoe-client/internal/entity"

// View is a copy of everything a presentation layer renders.
type View struct {
	PlayerID        string
	PlayerSymbol    entity.Symbol
	UserCount       int
	ReadyToPlay     bool
	Board           entity.Board
	CurrentPlayer   entity.Symbol
	Pending         bool
	Outcome         entity.Symbol
	Symbols         []entity.Symbol
	DisplayScores   map[entity.Symbol]int
	AssignedMessage string
	RoomFullMessage string
}

func (that *Session) View() View {
	that.mu.RLock()
	defer that.mu.RUnlock()

	board, turn := that.board()

	return View{
		PlayerID:        that.playerID,
		PlayerSymbol:    that.playerSymbol,
		UserCount:       that.userCount,
		ReadyToPlay:     that.readyToPlay,
		Board:           board,
		CurrentPlayer:   turn,
		Pending:         that.proposed != nil,
		Outcome:         board.Outcome(),
		Symbols:         append([]entity.Symbol(nil), that.symbols...),
		DisplayScores:   copyScores(that.displayScores),
		AssignedMessage: that.assignedMessage,
		RoomFullMessage: that.roomFullMessage,
	}
}

func (that *Session) PlayerID() string {
	return that.playerID
}

func (that *Session) PlayerSymbol() entity.Symbol {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.playerSymbol
}

func (that *Session) UserCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.userCount
}

func (that *Session) ReadyToPlay() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.readyToPlay
}

// Board returns the proposed board while a local move is pending, else the confirmed one.
func (that *Session) Board() entity.Board {
	that.mu.RLock()
	defer that.mu.RUnlock()

	board, _ := that.board()

	return board
}

// CurrentPlayer follows the same rule as Board.
func (that *Session) CurrentPlayer() entity.Symbol {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, turn := that.board()

	return turn
}

// Confirmed returns a copy of the last snapshot from the relay.
func (that *Session) Confirmed() entity.GameState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.confirmed.Clone()
}

// Proposed returns a copy of the pending local move, if any.
func (that *Session) Proposed() (entity.GameState, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.proposed == nil {
		return entity.GameState{}, false
	}

	return that.proposed.state.Clone(), true
}

// Current returns the state a new move should build on: the proposal if one is pending.
func (that *Session) Current() entity.GameState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.proposed != nil {
		return that.proposed.state.Clone()
	}

	return that.confirmed.Clone()
}

func (that *Session) Symbols() []entity.Symbol {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return append([]entity.Symbol(nil), that.symbols...)
}

func (that *Session) DisplayScores() map[entity.Symbol]int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return copyScores(that.displayScores)
}

func (that *Session) PreviousScores() map[entity.Symbol]int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return copyScores(that.previousScores)
}

func (that *Session) AssignedMessage() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.assignedMessage
}

func (that *Session) RoomFullMessage() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.roomFullMessage
}

func (that *Session) board() (entity.Board, entity.Symbol) {
	if that.proposed != nil {
		return that.proposed.state.Board, that.proposed.state.CurrentPlayer
	}

	return that.confirmed.Board, that.confirmed.CurrentPlayer
}
