package ws

import (
	"context"
	"encoding/json"

	"go-supplychain-router/internal/logger"
	"go-supplychain-router/internal/model"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans product lifecycle events out to every connected WebSocket client.
type Hub struct {
	clients    map[Conn]bool
	Register   chan Conn
	Unregister chan Conn
	Broadcast  chan []byte
	log        *logger.Logger

	// done is closed when Run returns.
	done chan struct{}
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		Register:   make(chan Conn),
		Unregister: make(chan Conn),
		Broadcast:  make(chan []byte, 64),
		log:        log,
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			return

		case conn := <-h.Register:
			h.clients[conn] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("ws client connected")

		case conn := <-h.Unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}

		case message := <-h.Broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
		}
	}
}

// Publish queues ev for broadcast. It never blocks the request path: when
// the buffer is full the event is dropped.
func (h *Hub) Publish(ev model.ProductEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal product event")
		return
	}

	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn().Uint64("productId", ev.ProductID).Str("action", string(ev.Action)).Msg("ws broadcast buffer full, event dropped")
	}
}

// Serve registers c and blocks until the client goes away.
func (h *Hub) Serve(c *websocket.Conn) {
	if !h.register(c) {
		return
	}
	defer h.unregister(c)

	for {
		// Keep alive loop
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// register hands c to Run. After shutdown c is closed and false is returned.
func (h *Hub) register(c Conn) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		c.Close()
		return false
	}
}

func (h *Hub) unregister(c Conn) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
