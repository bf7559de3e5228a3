package console

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) AttemptMove(cell int) bool {
	return m.Called(cell).Bool(0)
}

func (m *mockController) AutoMove() bool {
	return m.Called().Bool(0)
}

func (m *mockController) RequestReset() bool {
	return m.Called().Bool(0)
}

func (m *mockController) ClaimSymbol(symbol entity.Symbol) bool {
	return m.Called(symbol).Bool(0)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func newConsole(t *testing.T, in string, controller controller) (*Console, *session.Session, *bytes.Buffer) {
	t.Helper()

	game := session.New(newLogger(), "player-a")
	out := &bytes.Buffer{}

	return New(newLogger(), strings.NewReader(in), out, controller, game), game, out
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{line: "move 4", want: Command{Kind: CommandMove, Cell: 4}},
		{line: "  m 0 ", want: Command{Kind: CommandMove, Cell: 0}},
		{line: "8", want: Command{Kind: CommandMove, Cell: 8}},
		{line: "claim o", want: Command{Kind: CommandClaim, Symbol: entity.PlayerO}},
		{line: "RESET", want: Command{Kind: CommandReset}},
		{line: "auto", want: Command{Kind: CommandAuto}},
		{line: "?", want: Command{Kind: CommandHelp}},
		{line: "quit", want: Command{Kind: CommandQuit}},
		{line: "", want: Command{Kind: CommandNone}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			command, err := ParseCommand(tt.line)

			require.NoError(t, err)
			assert.Equal(t, tt.want, command)
		})
	}

	t.Run("Rejects bad input", func(t *testing.T) {
		_, err := ParseCommand("dance")
		require.ErrorIs(t, err, apperror.ErrUnknownCommand)

		_, err = ParseCommand("move")
		require.ErrorIs(t, err, apperror.ErrInvalidArgument)

		_, err = ParseCommand("move four")
		require.ErrorIs(t, err, apperror.ErrInvalidArgument)

		_, err = ParseCommand("claim Z")
		require.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})
}

func TestConsole_Render(t *testing.T) {
	t.Run("Draws marks, free cells and status", func(t *testing.T) {
		// Given: a session with X in the center and both players ready
		view, game, out := newConsole(t, "", &mockController{})
		game.ApplySymbolAssignment(entity.PlayerO)
		game.ApplyUserCount(2)
		state := entity.NewGameState()
		state.Board[4] = entity.PlayerX
		state.CurrentPlayer = entity.PlayerO
		state.Players.Set("player-b", entity.PlayerX)
		state.Players.Set("player-a", entity.PlayerO)
		state.Scores["player-b"] = 1
		game.ApplyGameState(state)

		// When: rendering
		view.Render()

		// Then: the board and the status lines are shown
		text := out.String()
		assert.Contains(t, text, " 0 | 1 | 2")
		assert.Contains(t, text, " 3 | X | 5")
		assert.Contains(t, text, "You: O  Users: 2  ready")
		assert.Contains(t, text, "Turn: O")
		assert.Contains(t, text, "Scores: X 1")
	})

	t.Run("Shows a finished game", func(t *testing.T) {
		view, game, out := newConsole(t, "", &mockController{})
		state := entity.NewGameState()
		state.Board = entity.Board{entity.PlayerX, entity.PlayerX, entity.PlayerX}

		game.ApplyGameState(state)
		view.Render()

		assert.Contains(t, out.String(), "X has a line")
	})
}

func TestConsole_Handle(t *testing.T) {
	t.Run("Moves go to the controller", func(t *testing.T) {
		controller := &mockController{}
		controller.On("AttemptMove", 4).Return(true).Once()
		view, _, _ := newConsole(t, "", controller)

		assert.False(t, view.Handle("move 4"))
		controller.AssertExpectations(t)
	})

	t.Run("A refused move is reported", func(t *testing.T) {
		controller := &mockController{}
		controller.On("AttemptMove", 9).Return(false).Once()
		view, _, out := newConsole(t, "", controller)

		view.Handle("9")

		assert.Contains(t, out.String(), "not possible")
	})

	t.Run("Reset, auto and claim go to the controller", func(t *testing.T) {
		controller := &mockController{}
		controller.On("AutoMove").Return(true).Once()
		controller.On("RequestReset").Return(true).Once()
		controller.On("ClaimSymbol", entity.PlayerX).Return(false).Once()
		view, _, out := newConsole(t, "", controller)

		view.Handle("auto")
		view.Handle("reset")
		view.Handle("claim x")

		controller.AssertExpectations(t)
		assert.Contains(t, out.String(), "claim was not sent")
	})

	t.Run("Unknown commands print help", func(t *testing.T) {
		view, _, out := newConsole(t, "", &mockController{})

		assert.False(t, view.Handle("dance"))
		assert.Contains(t, out.String(), "unknown command")
		assert.Contains(t, out.String(), "Commands:")
	})

	t.Run("Quit ends the loop", func(t *testing.T) {
		view, _, _ := newConsole(t, "", &mockController{})

		assert.True(t, view.Handle("q"))
	})
}

func TestConsole_Run(t *testing.T) {
	t.Run("Runs commands until quit", func(t *testing.T) {
		// Given: input with a move and quit
		controller := &mockController{}
		controller.On("AttemptMove", 2).Return(true).Once()
		view, _, _ := newConsole(t, "move 2\nquit\nmove 3\n", controller)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		// When: running
		err := view.Run(ctx, make(chan session.Notice))

		// Then: the move was made and the line after quit was not
		require.NoError(t, err)
		controller.AssertExpectations(t)
	})

	t.Run("Stops at the end of input", func(t *testing.T) {
		view, _, _ := newConsole(t, "help\n", &mockController{})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		require.NoError(t, view.Run(ctx, nil))
	})

	t.Run("Prints notice text", func(t *testing.T) {
		view, _, out := newConsole(t, "", &mockController{})

		view.showNotice(session.Winner{Symbol: entity.PlayerO})
		view.showNotice(session.RoomFull{})

		assert.Contains(t, out.String(), "O is the winner")
		assert.Contains(t, out.String(), "The room is full")
	})
}
