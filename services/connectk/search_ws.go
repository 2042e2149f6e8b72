package connectkservice

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// SearchProgress is the payload streamed to websocket clients while an
// engine search runs
type SearchProgress struct {
	GameID    string `json:"game_id"`
	Cycles    int    `json:"cycles"`
	Cps       int    `json:"cps"`
	Depth     int    `json:"depth"`
	Nodes     int    `json:"nodes"`
	UpdatedAt int64  `json:"updated_at_ms"`
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type SearchClient struct {
	hub  *SearchHub
	conn *websocket.Conn
	send chan []byte
}

// SearchHub fans search progress out to every connected websocket
// client. Publishing never blocks: when a client's buffer is full the
// update is dropped, the next one will carry fresher numbers anyway.
type SearchHub struct {
	mu        sync.Mutex
	clients   map[*SearchClient]struct{}
	broadcast chan SearchProgress
}

func NewSearchHub() *SearchHub {
	return &SearchHub{
		clients:   make(map[*SearchClient]struct{}),
		broadcast: make(chan SearchProgress, 64),
	}
}

func (h *SearchHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcast:
			data, err := json.Marshal(payload)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "search", Payload: data})
			}
			h.mu.Unlock()
		}
	}
}

func (h *SearchHub) Publish(payload SearchProgress) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *SearchHub) Register(c *SearchClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *SearchHub) Unregister(c *SearchClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *SearchClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func ServeSearchWS(hub *SearchHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &SearchClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	go func() {
		defer conn.Close()
		for data := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
