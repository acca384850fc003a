// Package live pushes status changes to open dashboards over a
// websocket, so a status set by the admin shows up everywhere without a
// refresh.
package live

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
					close(c.Send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// statusEvent is what we broadcast to every connected dashboard.
type statusEvent struct {
	Action    string `json:"action"` // "status"
	Key       string `json:"key"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

// BroadcastStatus queues one status change for delivery. Drops the event
// if the hub is saturated rather than stalling the request.
func (h *Hub) BroadcastStatus(key, st string) {
	data, err := json.Marshal(statusEvent{
		Action:    "status",
		Key:       key,
		Status:    st,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeWS upgrades the connection and keeps it subscribed until the
// client goes away.
func ServeWS(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Conn: conn,
			Send: make(chan []byte, 256),
		}
		hub.register <- client

		go func() {
			for data := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					break
				}
			}
			conn.Close()
		}()

		for {
			// Keeps the connection registered until the client disconnects
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.unregister <- client
	}
}
