// Package console is a line based terminal view of the game session.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
)

const helpText = `Commands:
  move N | N     place your mark in cell N (0-8)
  auto           place your mark in a random free cell
  reset          start a new game
  claim X|O      ask the relay to bind you to a symbol
  help           show this text
  quit           leave`

type controller interface {
	AttemptMove(cell int) bool
	AutoMove() bool
	RequestReset() bool
	ClaimSymbol(symbol entity.Symbol) bool
}

type viewer interface {
	View() session.View
}

type styles struct {
	x      lipgloss.Style
	o      lipgloss.Style
	empty  lipgloss.Style
	header lipgloss.Style
	footer lipgloss.Style
	notice lipgloss.Style
	warn   lipgloss.Style
}

type Console struct {
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
	controller controller
	viewer     viewer
	styles     styles
}

func New(logger *slog.Logger, in io.Reader, out io.Writer, controller controller, viewer viewer) *Console {
	renderer := lipgloss.NewRenderer(out)

	return &Console{
		logger:     logger.With("component", "console"),
		in:         in,
		out:        out,
		controller: controller,
		viewer:     viewer,
		styles: styles{
			x:      renderer.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Bold(true),
			o:      renderer.NewStyle().Foreground(lipgloss.Color("#FF79C6")).Bold(true),
			empty:  renderer.NewStyle().Foreground(lipgloss.Color("#6272A4")),
			header: renderer.NewStyle().Foreground(lipgloss.Color("#F1FA8C")).Bold(true),
			footer: renderer.NewStyle().Foreground(lipgloss.Color("#6272A4")),
			notice: renderer.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
			warn:   renderer.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
		},
	}
}

// Run reads commands and shows notices until quit, end of input or ctx is done.
// All writes to out happen on the calling goroutine.
func (that *Console) Run(ctx context.Context, notices <-chan session.Notice) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go that.scan(ctx, lines, scanErr)

	that.Render()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case notice, ok := <-notices:
			if !ok {
				notices = nil
				continue
			}

			that.showNotice(notice)

		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}

			if quit := that.Handle(line); quit {
				return nil
			}
		}
	}
}

func (that *Console) scan(ctx context.Context, lines chan<- string, scanErr chan<- error) {
	scanner := bufio.NewScanner(that.in)

	defer func() {
		scanErr <- scanner.Err()
		close(lines)
	}()

	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// Handle runs one input line and reports whether the player asked to quit.
func (that *Console) Handle(line string) bool {
	command, err := ParseCommand(line)
	if err != nil {
		that.println(that.styles.warn.Render(err.Error()))
		that.println(helpText)

		return false
	}

	switch command.Kind {
	case CommandNone:
	case CommandMove:
		if !that.controller.AttemptMove(command.Cell) {
			that.println(that.styles.warn.Render("That move is not possible right now"))
			return false
		}
	case CommandAuto:
		if !that.controller.AutoMove() {
			that.println(that.styles.warn.Render("That move is not possible right now"))
			return false
		}
	case CommandReset:
		if !that.controller.RequestReset() {
			that.println(that.styles.warn.Render("Not connected, reset was not sent"))
		}
	case CommandClaim:
		if !that.controller.ClaimSymbol(command.Symbol) {
			that.println(that.styles.warn.Render("Not connected, claim was not sent"))
		}
	case CommandHelp:
		that.println(helpText)
		return false
	case CommandQuit:
		return true
	}

	that.Render()

	return false
}

// Render draws the board and the status lines.
func (that *Console) Render() {
	view := that.viewer.View()

	var builder strings.Builder

	builder.WriteString(that.styles.header.Render("Tic-tac-toe"))
	builder.WriteString("\n\n")

	for row := range 3 {
		cells := make([]string, 0, 3)
		for col := range 3 {
			cells = append(cells, that.cell(view.Board, row*3+col))
		}

		builder.WriteString(" " + strings.Join(cells, " | ") + "\n")
		if row < 2 {
			builder.WriteString("---+---+---\n")
		}
	}

	builder.WriteString("\n")
	builder.WriteString(that.styles.footer.Render(that.status(view)))
	builder.WriteString("\n")

	that.println(builder.String())
}

func (that *Console) cell(board entity.Board, index int) string {
	switch board[index] {
	case entity.PlayerX:
		return that.styles.x.Render(string(entity.PlayerX))
	case entity.PlayerO:
		return that.styles.o.Render(string(entity.PlayerO))
	default:
		return that.styles.empty.Render(strconv.Itoa(index))
	}
}

func (that *Console) status(view session.View) string {
	you := "-"
	if view.PlayerSymbol != entity.EmptyCell {
		you = string(view.PlayerSymbol)
	}

	ready := "waiting for an opponent"
	if view.ReadyToPlay {
		ready = "ready"
	}

	lines := []string{
		fmt.Sprintf("You: %s  Users: %d  %s", you, view.UserCount, ready),
	}

	switch view.Outcome {
	case entity.PlayerX, entity.PlayerO:
		lines = append(lines, fmt.Sprintf("%s has a line, type reset for a new game", view.Outcome))
	case entity.PlayerTie:
		lines = append(lines, "Draw, type reset for a new game")
	default:
		turn := fmt.Sprintf("Turn: %s", view.CurrentPlayer)
		if view.Pending {
			turn += " (waiting for the relay)"
		}
		lines = append(lines, turn)
	}

	scores := make([]string, 0, 2)
	for _, symbol := range []entity.Symbol{entity.PlayerX, entity.PlayerO} {
		if score, ok := view.DisplayScores[symbol]; ok {
			scores = append(scores, fmt.Sprintf("%s %d", symbol, score))
		}
	}

	if len(scores) > 0 {
		lines = append(lines, "Scores: "+strings.Join(scores, "  "))
	}

	return strings.Join(lines, "\n")
}

func (that *Console) showNotice(notice session.Notice) {
	text := notice.Text()
	if text != "" {
		that.println(that.styles.notice.Render(text))
	}

	that.Render()
}

func (that *Console) println(text string) {
	if _, err := fmt.Fprintln(that.out, text); err != nil {
		that.logger.Error("failed to write to console", "error", err)
	}
}
