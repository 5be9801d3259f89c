// Package ws pushes live events to connected frontends so the post feed
// and question threads update without polling.
package ws

import (
	"encoding/json"

	"github.com/phuslu/log"
)

// Event types pushed to clients.
const (
	EventNewPost   = "new_post"
	EventNewAnswer = "new_answer"
)

// Event is the JSON frame sent over the socket.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans messages out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastEvent marshals and queues an event for every client. Events are
// best-effort; if the hub's queue is full the event is dropped rather than
// blocking the request path.
func (h *Hub) BroadcastEvent(eventType string, data any) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("marshal ws event")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("event", eventType).Msg("ws broadcast queue full, dropping event")
	}
}
