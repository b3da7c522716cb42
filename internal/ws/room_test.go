package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"snipe-holdem/internal/game"
	"snipe-holdem/internal/store"
	"snipe-holdem/internal/testutil"
)

func newPersistentServer(t *testing.T, st *store.Store, snapshotEvery, snapshotRetry time.Duration) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(ctx, st, snapshotEvery, snapshotRetry)
	srv := NewServer(hub)
	r := chi.NewRouter()
	r.Get("/rooms/{roomID}/ws", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func TestRoomRestoresFromSnapshot(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	state := game.NewGameState()
	state.Version = 7
	state.Players = []*game.Player{{ID: "alice"}, {ID: "bob"}}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	if err := st.UpsertSnapshot(ctx, "r1", state.Version, data); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	ts := newPersistentServer(t, st, time.Hour, time.Hour)
	conn := dial(t, ts, "r1")

	// the greeting must already reflect the restored state
	if d := readDiff(t, conn); d.Version != 7 || d.Value != game.PhaseWaiting {
		t.Fatalf("greeting %+v, want restored version 7 in waiting", d)
	}

	// intents apply on top of the restored state, not a fresh room
	send(t, conn, `{"type":"JOIN","player_id":"carol"}`)
	if d := waitState(t, conn, game.PhaseWaiting); d.Version != 8 {
		t.Fatalf("join landed at version %d, want 8", d.Version)
	}
}

func TestIntentsAreJournaled(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ts := newPersistentServer(t, st, time.Hour, time.Hour)
	conn := dial(t, ts, "r1")
	readDiff(t, conn)

	send(t, conn, `{"type":"JOIN","player_id":"alice"}`)
	waitState(t, conn, game.PhaseWaiting)
	// rejected intents are journaled too: the log is receipt order, not
	// accepted order
	send(t, conn, `{"type":"START_GAME"}`)

	var events []store.Event
	deadline := time.Now().Add(2 * time.Second)
	for {
		var err error
		events, err = st.GetEvents(ctx, "r1", 0)
		if err != nil {
			t.Fatalf("get events: %v", err)
		}
		if len(events) >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(events) != 2 {
		t.Fatalf("got %d journal rows, want 2", len(events))
	}

	var first, second struct {
		Type     string `json:"type"`
		PlayerID string `json:"player_id"`
	}
	if err := json.Unmarshal(events[0].Payload, &first); err != nil {
		t.Fatalf("decode first event: %v", err)
	}
	if err := json.Unmarshal(events[1].Payload, &second); err != nil {
		t.Fatalf("decode second event: %v", err)
	}
	// stamped with the version at receipt: 0 before the join landed, 1 after
	if events[0].Version != 0 || first.Type != "JOIN" || first.PlayerID != "alice" {
		t.Fatalf("first row %+v at version %d", first, events[0].Version)
	}
	if events[1].Version != 1 || second.Type != "START_GAME" {
		t.Fatalf("second row %+v at version %d", second, events[1].Version)
	}
}

func TestSnapshotTimerPersistsState(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ts := newPersistentServer(t, st, 50*time.Millisecond, 20*time.Millisecond)
	conn := dial(t, ts, "r1")
	readDiff(t, conn)

	send(t, conn, `{"type":"JOIN","player_id":"alice"}`)
	waitState(t, conn, game.PhaseWaiting)

	var snap *store.Snapshot
	deadline := time.Now().Add(2 * time.Second)
	for {
		var err error
		snap, err = st.GetLatestSnapshot(ctx, "r1")
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("get snapshot: %v", err)
		}
		if (snap != nil && snap.Version >= 1) || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if snap == nil || snap.Version != 1 {
		t.Fatalf("snapshot never caught up to version 1: %+v", snap)
	}

	state := game.NewGameState()
	if err := json.Unmarshal(snap.Data, state); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if state.Phase != game.PhaseWaiting || len(state.Players) != 1 || state.Players[0].ID != "alice" {
		t.Fatalf("snapshot state %+v does not match the live room", state)
	}
}
