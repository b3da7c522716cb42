package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"snipe-holdem/internal/game"
	"snipe-holdem/internal/store"
)

// Room is one table's actor: a single goroutine owns the engine and applies
// intents strictly in receipt order, so the game state needs no locks.
// Everything reaches the loop through channels.
type Room struct {
	id     string
	engine *game.Engine
	store  *store.Store // nil disables journaling and snapshots

	intents    chan game.Intent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	subscribers map[*Client]bool

	snapshotEvery time.Duration
	snapshotRetry time.Duration
}

func newRoom(id string, st *store.Store, snapshotEvery, snapshotRetry time.Duration) *Room {
	return &Room{
		id:            id,
		engine:        game.NewEngine(time.Now().UnixNano()),
		store:         st,
		intents:       make(chan game.Intent, 16),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		subscribers:   map[*Client]bool{},
		snapshotEvery: snapshotEvery,
		snapshotRetry: snapshotRetry,
	}
}

func (r *Room) run(ctx context.Context) {
	r.restore(ctx)

	timer := time.NewTimer(r.snapshotEvery)
	defer timer.Stop()

	for {
		select {
		case c := <-r.register:
			r.subscribers[c] = true
			// greet the new subscriber with the current version so it can
			// detect gaps and fall back to the snapshot endpoint
			r.send(c, game.Diff{Type: game.DiffState, Version: r.engine.State.Version, Value: r.engine.State.Phase})
		case c := <-r.unregister:
			r.drop(c)
		case in := <-r.intents:
			r.apply(ctx, in)
		case <-timer.C:
			if err := r.snapshot(ctx); err != nil {
				log.Error().Err(err).Str("room", r.id).Msg("snapshot failed")
				timer.Reset(r.snapshotRetry)
			} else {
				timer.Reset(r.snapshotEvery)
			}
		case <-ctx.Done():
			close(r.done)
			return
		}
	}
}

// apply journals the intent best-effort, runs it through the engine and fans
// the resulting diffs out to every subscriber.
func (r *Room) apply(ctx context.Context, in game.Intent) {
	if r.store != nil {
		payload, err := json.Marshal(in)
		if err == nil {
			err = r.store.AppendEvent(ctx, r.id, r.engine.State.Version, payload)
		}
		if err != nil {
			// audit trail only, never blocks gameplay
			log.Warn().Err(err).Str("room", r.id).Msg("journal append failed")
		}
	}

	diffs := r.engine.Apply(in)
	if len(diffs) == 0 {
		log.Debug().Str("room", r.id).Str("intent", string(in.Type)).Msg("intent rejected")
		return
	}
	for _, d := range diffs {
		r.broadcast(d)
	}
}

func (r *Room) broadcast(d game.Diff) {
	msg, err := json.Marshal(d)
	if err != nil {
		return
	}
	for c := range r.subscribers {
		if !c.trySend(msg) {
			r.drop(c)
		}
	}
}

func (r *Room) send(c *Client, d game.Diff) {
	msg, err := json.Marshal(d)
	if err != nil {
		return
	}
	if !c.trySend(msg) {
		r.drop(c)
	}
}

func (r *Room) drop(c *Client) {
	if r.subscribers[c] {
		delete(r.subscribers, c)
		c.closeSend()
	}
}

func (r *Room) snapshot(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	state := r.engine.State
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.store.UpsertSnapshot(ctx, r.id, state.Version, data)
}

// restore loads the latest snapshot before the room accepts any intents.
// No snapshot means a fresh room in the waiting state.
func (r *Room) restore(ctx context.Context) {
	if r.store == nil {
		return
	}
	snap, err := r.store.GetLatestSnapshot(ctx, r.id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("room", r.id).Msg("snapshot load failed")
		}
		return
	}
	state := game.NewGameState()
	if err := json.Unmarshal(snap.Data, state); err != nil {
		log.Error().Err(err).Str("room", r.id).Msg("snapshot decode failed")
		return
	}
	r.engine.Restore(state)
	log.Info().Str("room", r.id).Int("version", state.Version).Msg("room restored from snapshot")
}
