package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"previewServer/backend/internal/broadcast"
	"previewServer/backend/internal/cache"
	"previewServer/backend/internal/device"
)

// Manager upgrades preview surfaces onto the hub. Registration is
// origin-checked and requires a deviceId known to the registry.
type Manager struct {
	hub         *Hub
	engine      *broadcast.Engine
	presence    cache.PresenceCache
	origin      string
	presenceTTL time.Duration

	upgrader websocket.Upgrader
}

func NewManager(hub *Hub, engine *broadcast.Engine, presence cache.PresenceCache, origin string, presenceTTL time.Duration) *Manager {
	m := &Manager{
		hub:         hub,
		engine:      engine,
		presence:    presence,
		origin:      origin,
		presenceTTL: presenceTTL,
	}
	m.upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		got := r.Header.Get("Origin")
		// A missing Origin header (non-browser client) is acceptable only
		// when no application origin is configured; otherwise such a
		// client could register and forge acks past the engine's gate.
		if got == "" {
			return m.origin == ""
		}
		return got == m.origin
	}}
	return m
}

// Connect handles GET /preview/ws?deviceId=...
func (m *Manager) Connect(c *gin.Context) {
	deviceID := c.Query("deviceId")
	profile, ok := device.DeviceByID(deviceID)
	if !ok {
		c.String(http.StatusBadRequest, "unknown deviceId %q", deviceID)
		return
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade error (device=%s origin=%s): %v", deviceID, c.Request.Header.Get("Origin"), err)
		return
	}
	defer conn.Close()

	origin := c.Request.Header.Get("Origin")
	if origin == "" {
		origin = m.origin
	}

	wsConn := NewConn(conn, m.hub, m.engine, m.presence, deviceID, profile.Name, origin, m.presenceTTL)
	if err := m.hub.Join(deviceID, wsConn); err != nil {
		_ = conn.WriteJSON(ServerMessage{Type: msgTypeError, DeviceID: deviceID, Content: err.Error()})
		return
	}
	// Leave before close: a broadcast racing the teardown may still hold a
	// recipients snapshot with this conn, and its Post must fail cleanly
	// rather than hit a closed channel.
	defer wsConn.close()
	defer m.hub.Leave(deviceID, wsConn)

	ctx := c.Request.Context()
	if m.presence != nil {
		if err := m.presence.AddDevice(ctx, deviceID, profile.Name, m.presenceTTL); err != nil {
			log.Printf("ws: presence register failed (device=%s): %v", deviceID, err)
		}
		defer func() {
			if err := m.presence.RemoveDevice(ctx, deviceID); err != nil {
				log.Printf("ws: presence remove failed (device=%s): %v", deviceID, err)
			}
		}()
	}

	// Writer first so the welcome and everything after it can drain.
	go wsConn.writeLoop()
	wsConn.enqueueControl(ServerMessage{Type: msgTypeWelcome, DeviceID: deviceID, Content: "registered as " + profile.Name})

	// Blocks until the surface disconnects.
	wsConn.readLoop(ctx)
}
