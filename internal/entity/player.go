package entity

// Identity is what a client keeps between runs so the relay sees the same player id.
type Identity struct {
	Profile    string         `json:"profile"`
	PlayerID   string         `json:"player_id"`
	LastScores map[Symbol]int `json:"last_scores,omitempty"`
}

// PlayerBinding is the SET_PLAYER payload.
type PlayerBinding struct {
	PlayerID string `json:"playerId"`
	Symbol   Symbol `json:"symbol"`
}
