package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"previewServer/backend/internal/broadcast"
	"previewServer/backend/internal/cache"
)

const sendQueueSize = 32

// Conn wraps one preview surface's websocket. Outbound frames go through a
// buffered send queue consumed by writeLoop; a full queue drops the frame
// rather than block the broadcaster (the ack timeout reports the loss).
//
// The broadcast engine may hold a recipients snapshot across a teardown, so
// every enqueue is guarded: after close() a Post returns an error instead
// of hitting a closed channel.
type Conn struct {
	ws       *websocket.Conn
	hub      *Hub
	engine   *broadcast.Engine
	presence cache.PresenceCache

	deviceID   string
	deviceName string
	origin     string
	ttl        time.Duration

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewConn(ws *websocket.Conn, hub *Hub, engine *broadcast.Engine, presence cache.PresenceCache, deviceID, deviceName, origin string, ttl time.Duration) *Conn {
	return &Conn{
		ws:         ws,
		hub:        hub,
		engine:     engine,
		presence:   presence,
		deviceID:   deviceID,
		deviceName: deviceName,
		origin:     origin,
		ttl:        ttl,
		send:       make(chan []byte, sendQueueSize),
	}
}

// Post implements broadcast.Recipient. The engine addresses every send to
// the application origin; a mismatch with this connection's origin means
// the frame must not leave the process.
func (c *Conn) Post(data []byte, targetOrigin string) error {
	if targetOrigin != c.origin {
		return fmt.Errorf("target origin %q does not match connection origin %q", targetOrigin, c.origin)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("device %s disconnected", c.deviceID)
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send queue full for device %s", c.deviceID)
	}
}

// enqueueControl sends a server control message, dropping it when the
// queue is full or the connection is torn down, same as broadcast traffic.
func (c *Conn) enqueueControl(msg ServerMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// close stops writeLoop and marks the connection dead. It must run only
// after the conn has left the hub, so no fresh recipients snapshot can
// contain it. Idempotent.
func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Conn) writeLoop() {
	for data := range c.send {
		_ = c.ws.WriteMessage(websocket.TextMessage, data)
	}
}

// readLoop pumps inbound frames until the connection dies. Heartbeats
// refresh presence; everything else is handed to the broadcast engine with
// this connection's origin, where ack validation happens in one place.
func (c *Conn) readLoop(ctx context.Context) {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			log.Printf("ws: read error (device=%s): %v", c.deviceID, err)
			return
		}

		var ctrl ControlMessage
		if err := json.Unmarshal(raw, &ctrl); err == nil && ctrl.Type == msgTypeHeartbeat {
			if c.presence != nil {
				if err := c.presence.AddDevice(ctx, c.deviceID, c.deviceName, c.ttl); err != nil {
					log.Printf("ws: presence heartbeat failed (device=%s): %v", c.deviceID, err)
				}
			}
			c.enqueueControl(ServerMessage{Type: msgTypeFeedback, Content: "heartbeat received"})
			continue
		}

		c.engine.HandleAck(c.origin, raw)
	}
}
