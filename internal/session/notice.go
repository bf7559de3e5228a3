package session

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Notice is something the player should be told about. Text is presentation only.
type Notice interface {
	Text() string
}

type Assigned struct {
	Symbol entity.Symbol
}

type RoomFull struct{}

type Winner struct {
	Symbol entity.Symbol
}

// MoveRejected reports a local move the relay's next snapshot did not keep.
type MoveRejected struct {
	Cell      int
	Symbol    entity.Symbol
	Confirmed entity.Board
}

func (that Assigned) Text() string {
	return fmt.Sprintf("You were assigned the symbol %s", that.Symbol)
}

func (RoomFull) Text() string {
	return "The room is full. Try again later."
}

func (that Winner) Text() string {
	return fmt.Sprintf("%s is the winner", that.Symbol)
}

func (that MoveRejected) Text() string {
	return fmt.Sprintf("Your %s at cell %d was not accepted", that.Symbol, that.Cell)
}
