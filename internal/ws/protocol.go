package ws

import (
	"encoding/json"
	"fmt"

	"snipe-holdem/internal/game"
)

// IntentMessage is the inbound wire envelope, one intent per message.
type IntentMessage struct {
	Type         string `json:"type"`
	PlayerID     string `json:"player_id,omitempty"`
	Amount       int    `json:"amount,omitempty"`
	TargetRank   string `json:"target_rank,omitempty"`
	TargetNumber int    `json:"target_number,omitempty"`
}

// parseIntent validates the envelope and maps it onto an engine intent.
// Anything it rejects is a protocol error: the caller closes the connection.
func parseIntent(raw []byte) (game.Intent, error) {
	var msg IntentMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return game.Intent{}, fmt.Errorf("parse intent: %w", err)
	}

	in := game.Intent{
		Type:     game.IntentType(msg.Type),
		PlayerID: msg.PlayerID,
		Amount:   msg.Amount,
	}
	switch in.Type {
	case game.IntentJoin:
		if msg.PlayerID == "" {
			return game.Intent{}, fmt.Errorf("join without player_id")
		}
	case game.IntentStartGame, game.IntentCheck, game.IntentCall, game.IntentFold, game.IntentSnipePass:
	case game.IntentRaise:
		if msg.Amount < 1 {
			return game.Intent{}, fmt.Errorf("raise amount %d", msg.Amount)
		}
	case game.IntentSnipe:
		rank, err := game.ParseCategory(msg.TargetRank)
		if err != nil {
			return game.Intent{}, err
		}
		in.TargetRank = rank
		in.TargetNumber = game.Card(msg.TargetNumber)
	default:
		return game.Intent{}, fmt.Errorf("unknown intent type %q", msg.Type)
	}
	return in, nil
}
