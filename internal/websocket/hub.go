package websocket

import (
	"encoding/json"
	"sync"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/transfer"
)

// Hub fans transfer events out to connected websocket clients. Events are
// serialized once and broadcast in occurrence order; a slow client drops
// messages rather than stalling the rest.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	log     *logger.Logger

	unsubscribe func()
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: map[*Client]struct{}{},
		log:     log,
	}
}

// Attach subscribes the hub to a tracker. Call Detach on shutdown.
func (h *Hub) Attach(tracker *transfer.Tracker) {
	h.unsubscribe = tracker.Subscribe(func(event transfer.Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		h.broadcast(payload)
	})
}

func (h *Hub) Detach() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// broadcast runs inside the tracker's emit path: enqueue only, never
// block on a socket here.
func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.enqueue(payload)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.Detach()

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = map[*Client]struct{}{}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}
