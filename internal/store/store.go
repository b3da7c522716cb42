package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

var ErrNotFound = errors.New("not found")

// eventIDs mints ULIDs for journal rows. Monotonic entropy keeps ids
// sortable in insertion order within the process, which GetEvents relies on
// to tiebreak rows sharing a version.
type eventIDs struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newEventIDs(entropy io.Reader) *eventIDs {
	return &eventIDs{entropy: entropy}
}

func (g *eventIDs) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

var journalIDs = newEventIDs(ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0))

// Store wraps DB access for the room journal and snapshots.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the journal and snapshot tables. The journal is
// append-only; snapshots keep one row per room, latest wins.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS room_events (
			id         TEXT PRIMARY KEY,
			room_id    TEXT NOT NULL,
			version    BIGINT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS room_events_room_version ON room_events (room_id, version);
		CREATE TABLE IF NOT EXISTS room_snapshots (
			room_id    TEXT PRIMARY KEY,
			version    BIGINT NOT NULL,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// Event is one journal row: the intent payload as received, stamped with
// the room's version at receipt.
type Event struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"room_id"`
	Version   int             `json:"version"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Snapshot is the latest serialized state of one room.
type Snapshot struct {
	RoomID    string          `json:"room_id"`
	Version   int             `json:"version"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AppendEvent journals one intent. Insert only: journal rows are never
// updated or deleted.
func (s *Store) AppendEvent(ctx context.Context, roomID string, version int, payload []byte) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO room_events (id, room_id, version, payload) VALUES ($1, $2, $3, $4)`,
		journalIDs.next(), roomID, version, payload)
	return err
}

// GetEvents returns a room's journal from fromVersion on, ordered by version
// then insertion. ULID ids are time-ordered, so the id tiebreak preserves
// receipt order within a version.
func (s *Store) GetEvents(ctx context.Context, roomID string, fromVersion int) ([]Event, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, room_id, version, payload, created_at
		 FROM room_events WHERE room_id = $1 AND version >= $2
		 ORDER BY version ASC, id ASC`,
		roomID, fromVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.RoomID, &ev.Version, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// UpsertSnapshot stores the room's latest serialized state.
func (s *Store) UpsertSnapshot(ctx context.Context, roomID string, version int, data []byte) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO room_snapshots (room_id, version, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (room_id) DO UPDATE
		 SET version = EXCLUDED.version, data = EXCLUDED.data, updated_at = now()`,
		roomID, version, data)
	return err
}

// GetLatestSnapshot returns the room's current snapshot, or ErrNotFound.
func (s *Store) GetLatestSnapshot(ctx context.Context, roomID string) (*Snapshot, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT room_id, version, data, updated_at FROM room_snapshots WHERE room_id = $1`,
		roomID)
	var snap Snapshot
	if err := row.Scan(&snap.RoomID, &snap.Version, &snap.Data, &snap.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}
