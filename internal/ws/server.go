package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"snipe-holdem/internal/game"
	"snipe-holdem/internal/store"
)

// Client is one subscriber connection. The write side runs on its own
// goroutine draining send; the room actor never blocks on a slow socket.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string

	closeOnce sync.Once
}

func (c *Client) trySend(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub owns the room actors. Rooms are created on first address and are
// independent of each other; only the map itself is shared.
type Hub struct {
	store *store.Store

	snapshotEvery time.Duration
	snapshotRetry time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
	ctx   context.Context
}

func NewHub(ctx context.Context, st *store.Store, snapshotEvery, snapshotRetry time.Duration) *Hub {
	return &Hub{
		store:         st,
		snapshotEvery: snapshotEvery,
		snapshotRetry: snapshotRetry,
		rooms:         map[string]*Room{},
		ctx:           ctx,
	}
}

// Room returns the actor for roomID, starting it on first use.
func (h *Hub) Room(roomID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r := newRoom(roomID, h.store, h.snapshotEvery, h.snapshotRetry)
	h.rooms[roomID] = r
	go r.run(h.ctx)
	log.Info().Str("room", roomID).Msg("room started")
	return r
}

// Open reports the number of live rooms.
func (h *Hub) Open() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Server upgrades connections and pumps messages between sockets and room
// actors.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub) *Server {
	return &Server{
		hub:      hub,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	room := s.hub.Room(roomID)
	client := &Client{conn: conn, send: make(chan []byte, 32)}

	room.register <- client
	go client.writeLoop()
	s.readLoop(room, client)
}

func (s *Server) readLoop(room *Room, c *Client) {
	defer func() {
		select {
		case room.unregister <- c:
		case <-room.done:
		}
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		intent, err := parseIntent(raw)
		if err != nil {
			// malformed payloads kill only this connection
			log.Debug().Err(err).Str("room", room.id).Msg("protocol error")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "protocol error"),
				time.Now().Add(time.Second))
			return
		}

		// the first JOIN pins the connection to a seat; later intents act
		// as that player no matter what the payload claims
		if intent.Type == game.IntentJoin && c.playerID == "" {
			c.playerID = intent.PlayerID
		} else if c.playerID != "" {
			intent.PlayerID = c.playerID
		}

		select {
		case room.intents <- intent:
		case <-room.done:
			return
		}
	}
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
