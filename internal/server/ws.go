package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/logger"
	"github.com/ayusman/janken/internal/server/api"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Event types sent to websocket clients.
const (
	EventState     = "state"
	EventHand      = "hand"
	EventStatus    = "status"
	EventCountdown = "countdown"
	EventReveal    = "reveal"
	EventReset     = "reset"
	EventError     = "error"
)

// Message types accepted from websocket clients.
const (
	MessageFrame     = "frame"
	MessagePlayAgain = "play_again"
	MessageNewGame   = "new_game"
)

// Game is the session surface the websocket drives.
type Game interface {
	api.Game
	SubmitPoints(points []detector.Point3D) bool
}

// Event is one server-to-client message. Only the fields for its type are set.
type Event struct {
	Type      string           `json:"type"`
	Timestamp int64            `json:"timestamp"`
	Visible   *bool            `json:"visible,omitempty"`
	Status    *game.Status     `json:"status,omitempty"`
	Remaining *int             `json:"remaining,omitempty"`
	Result    *game.Result     `json:"result,omitempty"`
	Reason    game.ResetReason `json:"reason,omitempty"`
	State     *game.Snapshot   `json:"state,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type wireHand struct {
	Points     []detector.Point3D `json:"points"`
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
}

type clientMessage struct {
	Type  string     `json:"type"`
	Hands []wireHand `json:"hands"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// GameSocket accepts landmark frames and commands from browsers and
// broadcasts round events back to every connected client. It implements
// game.Listener.
type GameSocket struct {
	game     Game
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewGameSocket(g Game) *GameSocket {
	return &GameSocket{
		game: g,
		log:  logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local app, any origin
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *GameSocket) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection, sends the current state and then
// serves the client until it disconnects.
func (h *GameSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade error", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	snap := h.game.Snapshot()
	if msg, err := json.Marshal(Event{Type: EventState, Timestamp: now(), State: &snap}); err == nil {
		c.send <- msg
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("client connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	h.log.Debug("client disconnected", "remote", r.RemoteAddr)
}

func (h *GameSocket) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", "error", err)
			}
			return
		}
		h.handleMessage(c, data)
	}
}

func (h *GameSocket) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

func (h *GameSocket) handleMessage(c *client, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.reply(c, Event{Type: EventError, Error: "invalid JSON"})
		return
	}

	switch msg.Type {
	case MessageFrame:
		var points []detector.Point3D
		if len(msg.Hands) > 0 {
			points = msg.Hands[0].Points
			if points == nil {
				points = []detector.Point3D{}
			}
		}
		h.game.SubmitPoints(points)
	case MessagePlayAgain:
		h.game.PlayAgain()
	case MessageNewGame:
		h.game.NewGame()
	default:
		h.reply(c, Event{Type: EventError, Error: "unknown message type: " + msg.Type})
	}
}

// reply sends an event to one client. Caller is the client's read loop, so
// the send channel is still open.
func (h *GameSocket) reply(c *client, ev Event) {
	ev.Timestamp = now()
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// broadcast queues ev for every client. Clients whose buffer is full miss it.
func (h *GameSocket) broadcast(ev Event) {
	ev.Timestamp = now()
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Debug("client too slow, event dropped", "type", ev.Type)
		}
	}
}

func (h *GameSocket) HandPresence(visible bool) {
	h.broadcast(Event{Type: EventHand, Visible: &visible})
}

func (h *GameSocket) Status(s game.Status) {
	h.broadcast(Event{Type: EventStatus, Status: &s})
}

func (h *GameSocket) Countdown(remaining int) {
	h.broadcast(Event{Type: EventCountdown, Remaining: &remaining})
}

func (h *GameSocket) Reveal(r game.Result) {
	h.broadcast(Event{Type: EventReveal, Result: &r})
}

func (h *GameSocket) Reset(reason game.ResetReason) {
	h.broadcast(Event{Type: EventReset, Reason: reason})
}

func now() int64 {
	return time.Now().UnixMilli()
}
