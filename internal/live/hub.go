// Package live pushes tournament events to websocket subscribers, one room per tournament.
package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Message is the frame written to subscribers.
type Message struct {
	Type         string `json:"type"`
	TournamentID int64  `json:"tournamentId"`
	Payload      any    `json:"payload"`
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	room      int64
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

type Hub struct {
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	rooms  map[int64]map[*client]struct{}
	closed bool
}

// NewHub creates a hub. The feed is read-only, so any origin may subscribe.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		rooms: make(map[int64]map[*client]struct{}),
	}
}

// Notify broadcasts an event to the tournament's room. Slow subscribers miss messages
// instead of blocking the caller.
func (h *Hub) Notify(tournamentID int64, event string, payload any) {
	data, err := sonic.Marshal(Message{Type: event, TournamentID: tournamentID, Payload: payload})
	if err != nil {
		logging.Default().Error("failed to encode live event", "event", event, "tournament_id", tournamentID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[tournamentID] {
		select {
		case c.send <- data:
		default:
			logging.Default().Warn("live subscriber lagging, dropping event", "event", event, "tournament_id", tournamentID)
		}
	}
}

// Subscribers returns the number of open connections for a tournament.
func (h *Hub) Subscribers(tournamentID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}

// ServeWS upgrades the request and subscribes the connection to the tournament's room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tournamentID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		logging.Default().WarnContext(r.Context(), "websocket upgrade failed", "tournament_id", tournamentID, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), room: tournamentID}
	if !h.register(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go h.readPump(c)
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for room, clients := range h.rooms {
		for c := range clients {
			c.close()
		}
		delete(h.rooms, room)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.rooms[c.room] == nil {
		h.rooms[c.room] = make(map[*client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}
	logging.Default().Debug("live subscriber joined", "tournament_id", c.room, "subscribers", len(h.rooms[c.room]))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	c.close()
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
}

// readPump only handles control frames; anything a client sends is discarded.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Default().Warn("live subscriber disconnected", "tournament_id", c.room, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
