package utility

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Messages queued per client before new ones are dropped.
	sendBuffer = 64
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow CORS for development
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub holds active event subscribers: Map[ClientID] -> Client.
// Each client has its own writer goroutine, so Broadcast never waits on a
// slow peer.
type Hub struct {
	mu        sync.Mutex
	clients   map[string]*wsClient
	writeWait time.Duration
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*wsClient), writeWait: writeWait}
}

// Register a new client connection and return its id
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.New().String()
	client := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[id] = client
	h.mu.Unlock()

	go h.writePump(id, client)

	log.Info().Str("client_id", id).Msg("WebSocket Client Connected")
	return id
}

// Unregister a client (when they close the tab)
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(client.send)
		client.conn.Close()
		log.Info().Str("client_id", id).Msg("WebSocket Client Disconnected")
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues a text message for every client. A client whose queue is
// full misses the message.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		select {
		case client.send <- message:
		default:
			log.Warn().Str("client_id", id).Msg("WS client is not keeping up, message dropped")
		}
	}
}

// BroadcastJSON marshals v and broadcasts it. Nothing is sent without clients.
func (h *Hub) BroadcastJSON(v interface{}) {
	if h.Count() == 0 {
		return
	}
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal WS payload")
		return
	}
	h.Broadcast(msg)
}

// writePump drains the client's queue. A write that fails or passes the
// deadline removes the client.
func (h *Hub) writePump(id string, client *wsClient) {
	for message := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Error().Err(err).Str("client_id", id).Msg("Failed to send WS message, removing client")
			h.Unregister(id)
			return
		}
	}
}
