package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Zachdehooge/damage-map/internal/generator"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub pushes newly completed markers to every open map page.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	gauge   interface{ Set(float64) }
}

func newHub(gauge interface{ Set(float64) }) *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{}), gauge: gauge}
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[server] ws upgrade error: %v", err)
		return
	}
	h.add(conn)
	go h.readPump(conn)
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.gauge.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.gauge.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *hub) broadcast(markers []generator.MapMarker) {
	data, err := json.Marshal(markers)
	if err != nil {
		log.Printf("[server] marshal markers: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
	h.gauge.Set(float64(len(h.clients)))
}

// readPump drains client frames so close messages are noticed.
func (h *hub) readPump(c *websocket.Conn) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
}
