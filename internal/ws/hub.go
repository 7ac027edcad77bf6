package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client is one websocket connection subscribed to a project's chat.
type Client struct {
	ProjectID int
	Conn      *websocket.Conn
	Mu        sync.Mutex
}

// Event carries a payload for every client watching a project.
type Event struct {
	ProjectID int
	Payload   []byte
}

// Hub fans chat events out to the clients of each project.
type Hub struct {
	clients    map[int]map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		Broadcast:  make(chan Event, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run manages register, unregister and broadcast. It is meant to be
// started once as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.ProjectID] == nil {
				h.clients[client.ProjectID] = make(map[*Client]bool)
			}
			h.clients[client.ProjectID][client] = true
		case client := <-h.Unregister:
			if room, ok := h.clients[client.ProjectID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					client.Conn.Close()
					if len(room) == 0 {
						delete(h.clients, client.ProjectID)
					}
				}
			}
		case event := <-h.Broadcast:
			room := h.clients[event.ProjectID]
			for client := range room {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, event.Payload)
				client.Mu.Unlock()
				if err != nil {
					delete(room, client)
					client.Conn.Close()
				}
			}
		}
	}
}

// Publish hands an event to the hub without blocking the caller when no
// reader keeps up; a dropped frame only delays clients until their next
// poll of the message list.
func (h *Hub) Publish(projectID int, payload []byte) {
	select {
	case h.Broadcast <- Event{ProjectID: projectID, Payload: payload}:
	default:
	}
}
