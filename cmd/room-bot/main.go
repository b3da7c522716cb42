// room-bot is a naive table filler for manual testing and load generation.
// It joins a room, optionally kicks the game off, and on every phase update
// blindly tries a legal-looking move. Rejected intents are no-ops server
// side, so firing out of turn is harmless.
package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type diff struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Value   string `json:"value,omitempty"`
}

type intent struct {
	Type         string `json:"type"`
	PlayerID     string `json:"player_id,omitempty"`
	Amount       int    `json:"amount,omitempty"`
	TargetRank   string `json:"target_rank,omitempty"`
	TargetNumber int    `json:"target_number,omitempty"`
}

func main() {
	wsURL := getenv("WS_URL", "ws://localhost:8080/rooms/lobby/ws")
	playerID := getenv("PLAYER_ID", "bot")
	start := getenv("START_GAME", "") != ""

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	send(conn, intent{Type: "JOIN", PlayerID: playerID})
	if start {
		// give the other seats a moment to fill
		time.Sleep(2 * time.Second)
		send(conn, intent{Type: "START_GAME"})
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var d diff
		if err := json.Unmarshal(data, &d); err != nil {
			continue
		}
		if d.Type != "STATE" {
			continue
		}
		for _, in := range decide(rnd, d.Value) {
			send(conn, in)
		}
	}
}

// decide fires candidate moves for the phase. Only the one that is legal on
// the bot's turn sticks; the rest are silently dropped by the engine.
func decide(rnd *rand.Rand, phase string) []intent {
	switch phase {
	case "bet_round1", "bet_round2":
		if rnd.Intn(4) == 0 {
			return []intent{{Type: "RAISE", Amount: 1 + rnd.Intn(3)}, {Type: "CALL"}, {Type: "CHECK"}}
		}
		return []intent{{Type: "CALL"}, {Type: "CHECK"}}
	case "snipe_phase":
		if rnd.Intn(3) == 0 {
			return []intent{{Type: "SNIPE", TargetRank: "PAIR", TargetNumber: 1 + rnd.Intn(10)}, {Type: "SNIPE_PASS"}}
		}
		return []intent{{Type: "SNIPE_PASS"}}
	default:
		return nil
	}
}

func send(conn *websocket.Conn, in intent) {
	payload, err := json.Marshal(in)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
