package tictactoe

import (
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// PickCell returns a random empty cell of board.
func PickCell(board entity.Board) (int, error) {
	availableCells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			availableCells = append(availableCells, i)
		}
	}

	if len(availableCells) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	return availableCells[rand.IntN(len(availableCells))], nil //nolint: gosec // it's ok
}

// AutoMove plays a random empty cell for the player.
func (that *GameController) AutoMove() bool {
	cell, err := PickCell(that.session.Current().Board)
	if err != nil {
		that.logger.Debug("auto move ignored", "error", err)
		return false
	}

	return that.AttemptMove(cell)
}
