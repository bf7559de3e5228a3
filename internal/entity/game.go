package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	PlayerX   Symbol = "X"
	PlayerO   Symbol = "O"
	PlayerTie Symbol = "-"

	EmptyCell Symbol = ""
)

const BoardSize = 9

var (
	ErrInvalidBoard = errors.New("invalid board")
	ErrInvalidState = errors.New("invalid game state")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Symbol is a player's mark. The empty symbol marks an empty cell or an unknown binding.
type Symbol string

func (that Symbol) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// ToggleMark returns the opponent's mark.
func ToggleMark(currentMark Symbol) Symbol {
	if currentMark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Players maps a player id to its symbol, keeping the order in which ids were received.
type Players = orderedmap.OrderedMap[string, Symbol]

func NewPlayers() *Players {
	return orderedmap.New[string, Symbol]()
}

// Board holds the nine cells in row-major order.
type Board [BoardSize]Symbol

func (that *Board) UnmarshalJSON(data []byte) error {
	var cells []*string
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	if len(cells) != BoardSize {
		return fmt.Errorf("%w: %d cells", ErrInvalidBoard, len(cells))
	}

	var board Board
	for i, cell := range cells {
		if cell == nil {
			continue
		}

		mark := Symbol(*cell)
		if mark != EmptyCell && !mark.IsPlayer() {
			return fmt.Errorf("%w: cell %d holds %q", ErrInvalidBoard, i, *cell)
		}

		board[i] = mark
	}

	*that = board

	return nil
}

func (that Board) IsEmpty(cell int) bool {
	return cell >= 0 && cell < BoardSize && that[cell] == EmptyCell
}

// Outcome returns the winning mark, PlayerTie for a full board, or EmptyCell while the game goes on.
func (that Board) Outcome() Symbol {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return PlayerTie
}

// GameState is a full snapshot of one game. A received snapshot is never mutated; use Clone.
type GameState struct {
	Board         Board
	CurrentPlayer Symbol
	Players       *Players
	Scores        map[string]int
}

type gameStateJSON struct {
	Board         *Board         `json:"board"`
	CurrentPlayer Symbol         `json:"currentPlayer"`
	Players       *Players       `json:"players"`
	Scores        map[string]int `json:"scores,omitempty"`
}

func NewGameState() GameState {
	return GameState{
		CurrentPlayer: PlayerX,
		Players:       NewPlayers(),
		Scores:        map[string]int{},
	}
}

func (that GameState) MarshalJSON() ([]byte, error) {
	players := that.Players
	if players == nil {
		players = NewPlayers()
	}

	board := that.Board

	return json.Marshal(gameStateJSON{
		Board:         &board,
		CurrentPlayer: that.CurrentPlayer,
		Players:       players,
		Scores:        that.Scores,
	})
}

func (that *GameState) UnmarshalJSON(data []byte) error {
	var raw gameStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Board == nil {
		return fmt.Errorf("%w: board is missing", ErrInvalidBoard)
	}

	if raw.Players == nil {
		raw.Players = NewPlayers()
	}

	if raw.Scores == nil {
		raw.Scores = map[string]int{}
	}

	*that = GameState{
		Board:         *raw.Board,
		CurrentPlayer: raw.CurrentPlayer,
		Players:       raw.Players,
		Scores:        raw.Scores,
	}

	return nil
}

// Validate checks the invariants a snapshot must hold before it is applied.
func (that GameState) Validate() error {
	if !that.CurrentPlayer.IsPlayer() {
		return fmt.Errorf("%w: current player %q", ErrInvalidState, that.CurrentPlayer)
	}

	if that.PlayerCount() > 2 {
		return fmt.Errorf("%w: %d players", ErrInvalidState, that.PlayerCount())
	}

	seen := make(map[Symbol]string, 2)
	for pair := that.playersOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.IsPlayer() {
			return fmt.Errorf("%w: player %s bound to %q", ErrInvalidState, pair.Key, pair.Value)
		}

		if other, ok := seen[pair.Value]; ok {
			return fmt.Errorf("%w: players %s and %s share %s", ErrInvalidState, other, pair.Key, pair.Value)
		}

		seen[pair.Value] = pair.Key
	}

	for playerID, score := range that.Scores {
		if score < 0 {
			return fmt.Errorf("%w: negative score for %s", ErrInvalidState, playerID)
		}
	}

	return nil
}

func (that GameState) PlayerCount() int {
	if that.Players == nil {
		return 0
	}
	return that.Players.Len()
}

// SymbolOf returns the symbol bound to playerID, or EmptyCell.
func (that GameState) SymbolOf(playerID string) Symbol {
	symbol, _ := that.playersOrEmpty().Get(playerID)
	return symbol
}

// Clone returns a deep copy that shares nothing with the receiver.
func (that GameState) Clone() GameState {
	clone := GameState{
		Board:         that.Board,
		CurrentPlayer: that.CurrentPlayer,
		Players:       ClonePlayers(that.Players),
		Scores:        make(map[string]int, len(that.Scores)),
	}

	for playerID, score := range that.Scores {
		clone.Scores[playerID] = score
	}

	return clone
}

func (that GameState) playersOrEmpty() *Players {
	if that.Players == nil {
		return NewPlayers()
	}
	return that.Players
}

func ClonePlayers(players *Players) *Players {
	clone := NewPlayers()
	if players == nil {
		return clone
	}

	for pair := players.Oldest(); pair != nil; pair = pair.Next() {
		clone.Set(pair.Key, pair.Value)
	}

	return clone
}
