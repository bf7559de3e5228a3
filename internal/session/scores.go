package session

import "github.com/rocketscienceinc/tictactoe-client/internal/entity"

// DeriveSymbols lists the bound symbols in the order the players were received.
func DeriveSymbols(players *entity.Players) []entity.Symbol {
	symbols := make([]entity.Symbol, 0, 2)
	if players == nil {
		return symbols
	}

	for pair := players.Oldest(); pair != nil; pair = pair.Next() {
		symbols = append(symbols, pair.Value)
	}

	return symbols
}

// DeriveDisplayScores re-keys scores from player id to symbol. A player without a score
// leaves its symbol absent; when two ids share a symbol the later one wins.
func DeriveDisplayScores(players *entity.Players, scores map[string]int) map[entity.Symbol]int {
	display := make(map[entity.Symbol]int, 2)
	if players == nil {
		return display
	}

	for pair := players.Oldest(); pair != nil; pair = pair.Next() {
		score, ok := scores[pair.Key]
		if !ok {
			delete(display, pair.Value)
			continue
		}

		display[pair.Value] = score
	}

	return display
}

func zeroScores() map[entity.Symbol]int {
	return map[entity.Symbol]int{entity.PlayerX: 0, entity.PlayerO: 0}
}

func copyScores(scores map[entity.Symbol]int) map[entity.Symbol]int {
	clone := make(map[entity.Symbol]int, len(scores))
	for symbol, score := range scores {
		clone[symbol] = score
	}

	return clone
}
