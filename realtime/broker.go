package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
)

// client is one SSE subscriber, optionally scoped to a single tenant.
// An empty tenantID receives every tenant's events (operator dashboards).
type client struct {
	ch       chan []byte
	tenantID string
}

// Broker fans funnel events out to Server-Sent Events subscribers.
// Dashboards use it to watch impressions, clicks and conversions live.
type Broker struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan message
	mu         sync.RWMutex
}

type message struct {
	tenantID string
	payload  []byte
}

// NewBroker creates a new SSE broker
func NewBroker() *Broker {
	return &Broker{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, 1000),
	}
}

// Run starts the broker loop
func (b *Broker) Run() {
	for {
		select {
		case c := <-b.register:
			b.mu.Lock()
			b.clients[c] = true
			b.mu.Unlock()
			log.Printf("SSE client connected (tenant %q). Total: %d", c.tenantID, len(b.clients))

		case c := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.ch)
				log.Printf("SSE client disconnected. Total: %d", len(b.clients))
			}
			b.mu.Unlock()

		case msg := <-b.broadcast:
			b.mu.RLock()
			for c := range b.clients {
				if c.tenantID != "" && c.tenantID != msg.tenantID {
					continue
				}
				select {
				case c.ch <- msg.payload:
				default:
					// Slow client, drop rather than block the loop
				}
			}
			b.mu.RUnlock()
		}
	}
}

// ServeHTTP handles the SSE endpoint. A tenant_id query parameter scopes
// the stream to one tenant; without it the client sees all tenants.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	c := &client{
		ch:       make(chan []byte, 10),
		tenantID: r.URL.Query().Get("tenant_id"),
	}
	b.register <- c

	notify := r.Context().Done()

	for {
		select {
		case <-notify:
			b.unregister <- c
			return
		case msg := <-c.ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Broadcast sends an event to every subscriber watching the tenant
func (b *Broker) Broadcast(tenantID, event string, payload interface{}) {
	data := map[string]interface{}{
		"tenant_id": tenantID,
		"event":     event,
		"payload":   payload,
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshalling broadcast message: %v", err)
		return
	}

	select {
	case b.broadcast <- message{tenantID: tenantID, payload: jsonBytes}:
	default:
		// Drop if broadcast buffer full
	}
}
