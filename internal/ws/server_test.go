package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"snipe-holdem/internal/game"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(ctx, nil, time.Hour, time.Hour)
	srv := NewServer(hub)
	r := chi.NewRouter()
	r.Get("/rooms/{roomID}/ws", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, hub
}

func dial(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rooms/" + room + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readDiff(t *testing.T, conn *websocket.Conn) game.Diff {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var d game.Diff
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("decode diff: %v", err)
	}
	return d
}

// waitState drains diffs until a STATE diff for the wanted phase arrives.
func waitState(t *testing.T, conn *websocket.Conn, want game.Phase) game.Diff {
	t.Helper()
	for i := 0; i < 50; i++ {
		d := readDiff(t, conn)
		if d.Type == game.DiffState && d.Value == want {
			return d
		}
	}
	t.Fatalf("never saw STATE %s", want)
	return game.Diff{}
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestTwoPlayerGameReachesBetting(t *testing.T) {
	ts, _ := newTestServer(t)

	alice := dial(t, ts, "r1")
	bob := dial(t, ts, "r1")

	// greeting diffs carry the current version
	if d := readDiff(t, alice); d.Type != game.DiffState || d.Value != game.PhaseWaiting {
		t.Fatalf("expected waiting greeting, got %+v", d)
	}
	if d := readDiff(t, bob); d.Type != game.DiffState {
		t.Fatalf("expected greeting for bob, got %+v", d)
	}

	send(t, alice, `{"type":"JOIN","player_id":"alice"}`)
	send(t, bob, `{"type":"JOIN","player_id":"bob"}`)
	waitState(t, alice, game.PhaseWaiting)
	waitState(t, alice, game.PhaseWaiting)

	send(t, alice, `{"type":"START_GAME"}`)
	d := waitState(t, bob, game.PhaseBetRound1)
	if d.Version == 0 {
		t.Fatalf("deal diff should carry a version")
	}
}

func TestDiffsFanOutToAllSubscribers(t *testing.T) {
	ts, _ := newTestServer(t)

	alice := dial(t, ts, "r2")
	viewer := dial(t, ts, "r2")
	readDiff(t, alice)
	readDiff(t, viewer)

	send(t, alice, `{"type":"JOIN","player_id":"alice"}`)
	got := waitState(t, viewer, game.PhaseWaiting)
	if got.Version != 1 {
		t.Fatalf("viewer should see the join at version 1, got %d", got.Version)
	}
}

func TestMalformedPayloadClosesOnlyThatConnection(t *testing.T) {
	ts, _ := newTestServer(t)

	bad := dial(t, ts, "r3")
	good := dial(t, ts, "r3")
	readDiff(t, bad)
	readDiff(t, good)

	send(t, bad, `this is not json`)
	_ = bad.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := bad.ReadMessage()
	if err == nil {
		t.Fatalf("expected close after malformed payload")
	}
	if !websocket.IsCloseError(err, websocket.CloseUnsupportedData) {
		t.Fatalf("expected close code 1003, got %v", err)
	}

	// the room stays up for everyone else
	send(t, good, `{"type":"JOIN","player_id":"carol"}`)
	waitState(t, good, game.PhaseWaiting)
}

func TestRejectedIntentProducesNoDiff(t *testing.T) {
	ts, _ := newTestServer(t)

	conn := dial(t, ts, "r4")
	readDiff(t, conn)

	send(t, conn, `{"type":"START_GAME"}`) // no players seated
	send(t, conn, `{"type":"JOIN","player_id":"dave"}`)
	d := waitState(t, conn, game.PhaseWaiting)
	if d.Version != 1 {
		t.Fatalf("rejected start must not burn a version, got %d", d.Version)
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	ts, hub := newTestServer(t)

	a := dial(t, ts, "left")
	b := dial(t, ts, "right")
	readDiff(t, a)
	readDiff(t, b)
	if hub.Open() != 2 {
		t.Fatalf("expected 2 rooms, got %d", hub.Open())
	}

	send(t, a, `{"type":"JOIN","player_id":"alice"}`)
	waitState(t, a, game.PhaseWaiting)

	// the other room must not have heard anything
	_ = b.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := b.ReadMessage(); err == nil {
		t.Fatalf("cross-room diff leaked")
	}
}
