package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/lich2000117/Frigate-SimpleUI/internal/service"
)

// client is one connected SSE subscriber
type client struct {
	id     string
	events chan []byte
}

// Hub fans config and scan events out to connected SSE clients so the
// UI can refresh without polling.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan service.Event
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan service.Event, 256),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			log.Printf("SSE client connected: %s (total: %d)", c.id, h.ClientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.events)
			}
			h.mu.Unlock()
			log.Printf("SSE client disconnected: %s (total: %d)", c.id, h.ClientCount())

		case event := <-h.broadcast:
			msg, err := formatEvent(event)
			if err != nil {
				log.Printf("Failed to marshal event %s: %v", event.Type, err)
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.events <- msg:
				default:
					// Slow client, drop the message rather than block
					log.Printf("SSE client %s is slow, skipping message", c.id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues an event for delivery to all clients
func (h *Hub) Broadcast(event service.Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Println("Broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatEvent renders an event as a named SSE message so the UI can
// addEventListener per event type.
func formatEvent(event service.Event) ([]byte, error) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data)), nil
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	id, err := uuid.NewV4()
	if err != nil {
		http.Error(w, "Failed to allocate client ID", http.StatusInternalServerError)
		return
	}
	c := &client{
		id:     id.String(),
		events: make(chan []byte, 64),
	}

	h.register <- c
	defer func() {
		h.unregister <- c
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
