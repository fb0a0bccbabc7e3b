package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is the number of pending messages per renderer before it
	// is considered too slow and disconnected.
	sendBuffer = 32

	writeTimeout = 10 * time.Second
)

// wsClient is one connected renderer.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans state pushes out to every connected renderer.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// remove unregisters c and closes its send channel. Safe to call twice.
func (h *hub) remove(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	return true
}

// enqueue queues msg for c without blocking. A full buffer disconnects c.
func (h *hub) enqueue(c *wsClient, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueueLocked(c, msg)
}

func (h *hub) enqueueLocked(c *wsClient, msg []byte) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast queues msg for every renderer.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueueLocked(c, msg)
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writePump drains c.send into the socket until the channel is closed.
func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
