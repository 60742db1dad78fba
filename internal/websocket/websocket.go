package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/votely/votely/internal/logger"
	"github.com/votely/votely/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// TallyProvider supplies the current tally snapshot for a poll, sent to
// observers when they join a room.
type TallyProvider interface {
	PollTally(ctx context.Context, pollID string) (*models.Tally, error)
}

// Hub maintains per-poll rooms of observers and pushes tally updates to them.
// Membership is process-local; a single run loop owns all membership changes
// and fan-out, so pushes within one room are delivered in a fixed order.
type Hub struct {
	log        logger.Logger
	rooms      map[string]map[string]*Client // pollID -> observerID -> client
	lastTotal  map[string]int                // pollID -> highest totalVotes pushed
	register   chan *Client
	unregister chan *Client
	broadcast  chan tallyEvent
	seed       chan seedEvent
	mutex      sync.RWMutex
	tallies    TallyProvider
}

type tallyEvent struct {
	pollID string
	tally  *models.Tally
}

type seedEvent struct {
	client *Client
	tally  *models.Tally
}

// Client is a middleman between one websocket connection and the hub
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	pollID     string
	observerID string
	send       chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, tallies TallyProvider) *Hub {
	return &Hub{
		log:        log,
		rooms:      make(map[string]map[string]*Client),
		lastTotal:  make(map[string]int),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan tallyEvent, 64),
		seed:       make(chan seedEvent),
		tallies:    tallies,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles room joins/leaves and tally fan-out
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.joinRoom(client)

		case client := <-h.unregister:
			h.leaveRoom(client)

		case event := <-h.broadcast:
			h.pushTally(event)

		case s := <-h.seed:
			h.deliverSeed(s)
		}
	}
}

// joinRoom adds a client to its poll's room. Joining is idempotent per
// observer: a second connection for the same observer replaces the first.
func (h *Hub) joinRoom(client *Client) {
	h.mutex.Lock()
	room := h.rooms[client.pollID]
	if room == nil {
		room = make(map[string]*Client)
		h.rooms[client.pollID] = room
	}
	previous := room[client.observerID]
	room[client.observerID] = client
	size := len(room)
	h.mutex.Unlock()

	if previous != nil && previous != client {
		close(previous.send)
	}
	h.log.Debug("Observer joined room", "poll_id", client.pollID, "observer_id", client.observerID, "room_size", size)

	// Seed the new observer with the current tally so it converges
	// immediately instead of waiting for the next accepted ballot. Only the
	// read happens out here; delivery goes back through the run loop so it
	// serializes with leaves, replacements, and pushes.
	go func() {
		tally, err := h.tallies.PollTally(context.Background(), client.pollID)
		if err != nil {
			h.log.Debug("Tally snapshot unavailable", "poll_id", client.pollID, "error", err)
			return
		}
		h.seed <- seedEvent{client: client, tally: tally}
	}()
}

// deliverSeed hands a join-time snapshot to a single observer. The send is
// skipped when the observer has already left or been replaced, and when a
// newer tally was pushed while the snapshot read was in flight.
func (h *Hub) deliverSeed(s seedEvent) {
	h.mutex.RLock()
	member := h.rooms[s.client.pollID][s.client.observerID]
	last := h.lastTotal[s.client.pollID]
	h.mutex.RUnlock()

	if member != s.client || s.tally.TotalVotes < last {
		return
	}
	s.client.trySend(models.WSMessage{Type: "tally", Payload: s.tally})
}

// leaveRoom removes a client; a no-op when the client is not joined
func (h *Hub) leaveRoom(client *Client) {
	h.mutex.Lock()
	room, ok := h.rooms[client.pollID]
	if ok {
		if member, joined := room[client.observerID]; joined && member == client {
			delete(room, client.observerID)
			close(client.send)
			if len(room) == 0 {
				delete(h.rooms, client.pollID)
				delete(h.lastTotal, client.pollID)
			}
		}
	}
	h.mutex.Unlock()
	h.log.Debug("Observer left room", "poll_id", client.pollID, "observer_id", client.observerID)
}

// pushTally fans a tally update out to every member of the poll's room.
// Updates that would regress totalVotes are discarded, so every observer
// sees a monotonic tally sequence even when submissions race.
func (h *Hub) pushTally(event tallyEvent) {
	h.mutex.Lock()
	if event.tally.TotalVotes <= h.lastTotal[event.pollID] {
		h.mutex.Unlock()
		return
	}
	h.lastTotal[event.pollID] = event.tally.TotalVotes

	room := h.rooms[event.pollID]
	members := make([]*Client, 0, len(room))
	for _, client := range room {
		members = append(members, client)
	}
	h.mutex.Unlock()

	message := models.WSMessage{Type: "tally", Payload: event.tally}
	for _, client := range members {
		client.trySend(message)
	}
}

// trySend queues a message without blocking; a client that cannot keep up
// is dropped so one slow observer never stalls the others
func (c *Client) trySend(message models.WSMessage) {
	select {
	case c.send <- message:
	default:
		go func() {
			c.hub.unregister <- c
		}()
	}
}

// TallyChanged implements services.Broadcaster. Called once per accepted
// ballot with the full post-update tally, after the vote is durable.
func (h *Hub) TallyChanged(pollID string, tally *models.Tally) {
	select {
	case h.broadcast <- tallyEvent{pollID: pollID, tally: tally}:
	default:
		// Broadcast backlog full; the next push carries the full state
		// anyway, so dropping here only delays convergence
		h.log.Warn("Broadcast queue full, dropping tally push", "poll_id", pollID)
	}
}

// RoomSize implements services.RoomCounter
func (h *Hub) RoomSize(pollID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[pollID])
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// Observers only listen; inbound frames are drained for control flow
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades an observer connection and joins it to the poll's room.
// Disconnecting, for any reason, is an implicit leave.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, pollID, observerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:        h,
		conn:       conn,
		pollID:     pollID,
		observerID: observerID,
		send:       make(chan models.WSMessage, 256),
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
