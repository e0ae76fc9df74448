package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send pongs and close frames.
	maxMessageSize = 512

	clientBuffer    = 32
	broadcastBuffer = 64
)

type LiveEventType string

const (
	LiveCheckin      LiveEventType = "checkin"
	LiveLifeUsed     LiveEventType = "life_used"
	LiveMessage      LiveEventType = "message"
	LiveMemberJoined LiveEventType = "member_joined"
	LiveMemberOut    LiveEventType = "member_out"
)

// LiveEvent is pushed to every open challenge room socket.
type LiveEvent struct {
	Type        LiveEventType `json:"type"`
	ChallengeID uuid.UUID     `json:"challenge_id"`
	UserID      uuid.UUID     `json:"user_id"`
	Data        any           `json:"data,omitempty"`
	At          time.Time     `json:"at"`
}

// Broadcaster fans challenge events out to connected clients.
type Broadcaster interface {
	Publish(ev LiveEvent)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(LiveEvent) {}

// room owns the client set of one challenge. Only run touches clients;
// refs is guarded by the hub mutex and counts attached sockets.
type room struct {
	challengeID uuid.UUID
	hub         *LiveHub
	refs        int
	clients     map[*LiveClient]bool
	broadcast   chan []byte
	register    chan *LiveClient
	unregister  chan *LiveClient
}

func (r *room) run() {
	for {
		select {
		case c := <-r.register:
			r.clients[c] = true
			logger.Log.Debug("live client connected",
				zap.Stringer("challenge_id", r.challengeID),
				zap.Int("clients", len(r.clients)))

		case c := <-r.unregister:
			if _, ok := r.clients[c]; ok {
				delete(r.clients, c)
				close(c.send)
			}
			if r.hub.release(r) {
				return
			}

		case msg := <-r.broadcast:
			for c := range r.clients {
				select {
				case c.send <- msg:
				default:
					// Slow reader; drop it rather than stall the room.
					close(c.send)
					delete(r.clients, c)
				}
			}
		}
	}
}

// LiveHub keeps one room per challenge with at least one open socket.
type LiveHub struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*room
}

func NewLiveHub() *LiveHub {
	return &LiveHub{rooms: make(map[uuid.UUID]*room)}
}

var _ Broadcaster = (*LiveHub)(nil)

func (h *LiveHub) roomFor(challengeID uuid.UUID) *room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.rooms[challengeID]; ok {
		r.refs++
		return r
	}
	r := &room{
		refs:        1,
		challengeID: challengeID,
		hub:         h,
		clients:     make(map[*LiveClient]bool),
		broadcast:   make(chan []byte, broadcastBuffer),
		register:    make(chan *LiveClient),
		unregister:  make(chan *LiveClient),
	}
	h.rooms[challengeID] = r
	go r.run()
	return r
}

// release drops one socket from r and retires the room after the last one.
func (h *LiveHub) release(r *room) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	r.refs--
	if r.refs > 0 {
		return false
	}
	delete(h.rooms, r.challengeID)
	return true
}

// Rooms reports how many challenges currently have open sockets.
func (h *LiveHub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Publish never blocks; events for challenges nobody is watching are dropped.
func (h *LiveHub) Publish(ev LiveEvent) {
	h.mu.Lock()
	r, ok := h.rooms[ev.ChallengeID]
	h.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("failed to encode live event", zap.Error(err))
		return
	}
	select {
	case r.broadcast <- data:
	default:
		logger.Log.Warn("live room backlog full, event dropped",
			zap.Stringer("challenge_id", ev.ChallengeID),
			zap.String("type", string(ev.Type)))
	}
}

// LiveClient sits between one websocket and its room.
type LiveClient struct {
	room   *room
	conn   *websocket.Conn
	send   chan []byte
	UserID uuid.UUID
}

// Attach registers conn in the challenge room and starts its pumps. The
// hub owns conn from here on.
func (h *LiveHub) Attach(challengeID, userID uuid.UUID, conn *websocket.Conn) *LiveClient {
	c := &LiveClient{
		room:   h.roomFor(challengeID),
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
		UserID: userID,
	}
	c.room.register <- c
	go c.writePump()
	go c.readPump()
	return c
}

// readPump only exists to process control frames and notice disconnects.
func (c *LiveClient) readPump() {
	defer func() {
		c.room.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debug("live client read failed", zap.Error(err))
			}
			return
		}
	}
}

func (c *LiveClient) writePump() {
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
				// The room closed the channel.
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
