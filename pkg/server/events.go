package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// EventType represents the type of SSE event
type EventType string

const (
	EventConfigReloaded EventType = "config-reloaded"
	EventServerError    EventType = "server-error"
)

// heartbeatInterval keeps idle SSE connections open through proxies
var heartbeatInterval = 30 * time.Second

// Event represents a server-sent event
type Event struct {
	ID   uint64                 `json:"id"`
	Type EventType              `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventBroker fans events out to the connected SSE clients
type EventBroker struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	nextID  uint64
	logger  *slog.Logger
}

// NewEventBroker creates a new event broker
func NewEventBroker(logger *slog.Logger) *EventBroker {
	return &EventBroker{
		clients: make(map[chan Event]struct{}),
		logger:  logger,
	}
}

// Subscribe adds a new client to receive events
func (b *EventBroker) Subscribe() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	client := make(chan Event, 10)
	b.clients[client] = struct{}{}
	b.logger.Debug("client subscribed to events", "total_clients", len(b.clients))
	return client
}

// Unsubscribe removes a client from receiving events
func (b *EventBroker) Unsubscribe(client chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.clients, client)
	close(client)
	b.logger.Debug("client unsubscribed from events", "total_clients", len(b.clients))
}

// Broadcast numbers the event and queues it for every client. Clients whose
// queue is full miss it.
func (b *EventBroker) Broadcast(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	event.ID = b.nextID
	b.logger.Debug("broadcasting event", "type", event.Type, "clients", len(b.clients))

	for client := range b.clients {
		select {
		case client <- event:
		default:
			b.logger.Warn("client not reading events, skipping", "type", event.Type)
		}
	}
}

// ClientCount returns the number of active clients
func (b *EventBroker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// eventsHandler streams broker events until the client goes away
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodGet) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.eventBroker.Subscribe()
	defer s.eventBroker.Unsubscribe(events)

	fmt.Fprintf(w, "event: connected\ndata: {\"message\":\"connected\"}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("client disconnected")
			return

		case event := <-events:
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to marshal event", "err", err)
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
			flusher.Flush()

		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
