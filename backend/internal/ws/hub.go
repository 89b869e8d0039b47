package ws

import (
	"fmt"
	"sync"

	"previewServer/backend/internal/broadcast"
)

// Hub owns the live deviceId -> connection map. The broadcast engine reads
// it through Recipients() on every cycle, so surfaces that connect after
// the engine was built are picked up without re-initialization.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Conn)}
}

// Join registers a connection under its deviceId. One connection per
// device: a second surface claiming the same id is rejected.
func (h *Hub) Join(deviceID string, c *Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, taken := h.conns[deviceID]; taken {
		return fmt.Errorf("device %s already connected", deviceID)
	}
	h.conns[deviceID] = c
	return nil
}

// Leave removes the connection, but only if it still owns the slot; a
// stale leave from a replaced connection must not evict its successor.
func (h *Hub) Leave(deviceID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[deviceID]; ok && cur == c {
		delete(h.conns, deviceID)
	}
}

// Recipients snapshots the current membership for the broadcast engine.
func (h *Hub) Recipients() map[string]broadcast.Recipient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]broadcast.Recipient, len(h.conns))
	for id, c := range h.conns {
		out[id] = c
	}
	return out
}

// ConnectedIDs returns the deviceIds currently connected.
func (h *Hub) ConnectedIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
