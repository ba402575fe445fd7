// Package realtime implements the websocket room layer. Room membership is
// process-local and lost on restart; cross-instance fanout goes through the
// Redis room bus, so a publish on any instance reaches subscribers on all of
// them. Events are a convenience for live UIs, never a source of truth.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/peerrent/rental-system/internal/api/metrics"
	"github.com/peerrent/rental-system/internal/core/ports"
	redisbus "github.com/peerrent/rental-system/internal/infrastructure/db/redis"
)

const (
	// EventBookingChanged is broadcast to a room after any booking mutation.
	EventBookingChanged = "booking-changed"
	// EventJoinRoom subscribes the sending client to a room.
	EventJoinRoom = "join-room"
	// EventBookingUpdate lets a client publish a booking change to a room.
	EventBookingUpdate = "booking-update"

	sendBuffer = 16
)

// Envelope is the wire format for every realtime message, inbound and out.
type Envelope struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one connected websocket peer.
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{}
}

// Hub tracks room membership for this instance and bridges it to the bus.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	bus     *redisbus.RoomBus
	log     zerolog.Logger
}

func NewHub(bus *redisbus.RoomBus, log zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		bus:     bus,
		log:     log,
	}
}

// Run consumes the bus and forwards each room message to the local members of
// that room. It blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for msg := range h.bus.Subscribe(ctx) {
		h.deliver(msg.Room, msg.Payload)
	}
}

// NotifyBookingChanged implements ports.Notifier: it publishes a
// booking-changed envelope to the room through the bus, which loops back to
// deliver for local members and reaches every other instance too.
func (h *Hub) NotifyBookingChanged(ctx context.Context, room string, event ports.BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(Envelope{Event: EventBookingChanged, Room: room, Data: data})
	if err != nil {
		return err
	}
	return h.bus.Publish(ctx, room, payload)
}

// Serve owns one websocket connection: registers the client, pumps outbound
// messages, and reads inbound join-room / booking-update envelopes until the
// peer disconnects.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) {
	client := &Client{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		rooms: make(map[string]struct{}),
	}

	h.register(client)
	defer h.unregister(client)

	go client.writePump()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}

		switch env.Event {
		case EventJoinRoom:
			h.join(client, env.Room)
		case EventBookingUpdate:
			if env.Room == "" {
				continue
			}
			payload, err := json.Marshal(Envelope{Event: EventBookingChanged, Room: env.Room, Data: env.Data})
			if err != nil {
				continue
			}
			if err := h.bus.Publish(ctx, env.Room, payload); err != nil {
				h.log.Warn().Err(err).Str("room", env.Room).Msg("room publish failed")
			}
		default:
			h.log.Debug().Str("event", env.Event).Msg("unknown realtime event ignored")
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.RealtimeConnections.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()
	close(c.send)
	metrics.RealtimeConnections.Dec()
}

func (h *Hub) join(c *Client, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// deliver pushes payload to every local member of room. Slow clients are
// skipped rather than blocking the hub.
func (h *Hub) deliver(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.conn.Close()
}
