package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandMove
	CommandAuto
	CommandReset
	CommandClaim
	CommandHelp
	CommandQuit
)

type Command struct {
	Kind   CommandKind
	Cell   int
	Symbol entity.Symbol
}

// ParseCommand reads one input line. A bare cell number is a move.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: CommandNone}, nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]

	if cell, err := strconv.Atoi(name); err == nil && len(args) == 0 {
		return Command{Kind: CommandMove, Cell: cell}, nil
	}

	switch name {
	case "move", "m":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: move takes one cell number", apperror.ErrInvalidArgument)
		}

		cell, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q is not a cell number", apperror.ErrInvalidArgument, args[0])
		}

		return Command{Kind: CommandMove, Cell: cell}, nil

	case "claim", "c":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: claim takes X or O", apperror.ErrInvalidArgument)
		}

		symbol := entity.Symbol(strings.ToUpper(args[0]))
		if !symbol.IsPlayer() {
			return Command{}, fmt.Errorf("%w: %q is not X or O", apperror.ErrInvalidArgument, args[0])
		}

		return Command{Kind: CommandClaim, Symbol: symbol}, nil

	case "auto", "a":
		return Command{Kind: CommandAuto}, nil
	case "reset", "r":
		return Command{Kind: CommandReset}, nil
	case "help", "h", "?":
		return Command{Kind: CommandHelp}, nil
	case "quit", "q", "exit":
		return Command{Kind: CommandQuit}, nil
	default:
		return Command{}, fmt.Errorf("%w: %s", apperror.ErrUnknownCommand, name)
	}
}
