// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/PMacajol/Agro-MAGU/internal/metrics"
)

const broadcastBuffer = 64

// Message is the envelope pushed to dashboard clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of active dashboard clients and broadcasts alerts and
// readings to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			metrics.WebsocketClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			metrics.WebsocketClients.Set(float64(len(h.clients)))
			h.mu.Unlock()
			log.Printf("WebSocket client registered: %s", client.addr())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Printf("WebSocket client unregistered: %s", client.addr())
			}
			metrics.WebsocketClients.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					log.Printf("WebSocket client %s send buffer full, removing", client.addr())
					close(client.Send)
					delete(h.clients, client)
				}
			}
			metrics.WebsocketClients.Set(float64(len(h.clients)))
			h.mu.Unlock()
		}
	}
}

// RegisterClient adds a client. It returns false once the hub has stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a typed message for every client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	messageBytes, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("Error marshalling %s for broadcast: %v", msgType, err)
		return
	}
	select {
	case h.broadcast <- messageBytes:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s message", msgType)
	}
}

func (h *Hub) BroadcastAlert(alert interface{}) {
	h.Broadcast("alert", alert)
}

func (h *Hub) BroadcastReading(reading interface{}) {
	h.Broadcast("reading", reading)
}
