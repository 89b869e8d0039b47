package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"previewServer/backend/internal/broadcast"
)

func newTestServer(t *testing.T, origin string) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	engine := broadcast.NewEngine(hub, broadcast.Config{AckTimeout: time.Second, Origin: origin})
	t.Cleanup(engine.Dispose)

	m := NewManager(hub, engine, nil, origin, time.Minute)
	r := gin.New()
	r.GET("/preview/ws", m.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialURL(srv *httptest.Server, deviceID string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/preview/ws?deviceId=" + deviceID
}

func sameOriginHeader() http.Header {
	return http.Header{"Origin": {connTestOrigin}}
}

func TestConnectAcceptsConfiguredOrigin(t *testing.T) {
	hub, srv := newTestServer(t, connTestOrigin)

	conn, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "iphone-se"), sameOriginHeader())
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	var msg ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if msg.Type != msgTypeWelcome || msg.DeviceID != "iphone-se" {
		t.Fatalf("first message = %+v, want a welcome for iphone-se", msg)
	}
	if got := hub.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
}

func TestConnectRejectsMissingOriginWhenConfigured(t *testing.T) {
	hub, srv := newTestServer(t, connTestOrigin)

	conn, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "iphone-se"), nil)
	if err == nil {
		conn.Close()
		t.Fatal("dial without Origin header succeeded, want handshake rejection")
	}
	if got := hub.Count(); got != 0 {
		t.Fatalf("Count() = %d after rejected handshake, want 0", got)
	}
}

func TestConnectRejectsForeignOrigin(t *testing.T) {
	hub, srv := newTestServer(t, connTestOrigin)

	conn, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "iphone-se"), http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		conn.Close()
		t.Fatal("dial from a foreign origin succeeded, want handshake rejection")
	}
	if got := hub.Count(); got != 0 {
		t.Fatalf("Count() = %d after rejected handshake, want 0", got)
	}
}

func TestConnectAllowsMissingOriginWhenUnconfigured(t *testing.T) {
	hub, srv := newTestServer(t, "")

	conn, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "iphone-se"), nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	var msg ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if msg.Type != msgTypeWelcome {
		t.Fatalf("first message = %+v, want a welcome", msg)
	}
	if got := hub.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
}

func TestConnectRejectsUnknownDevice(t *testing.T) {
	hub, srv := newTestServer(t, connTestOrigin)

	conn, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "walkie-talkie"), sameOriginHeader())
	if err == nil {
		conn.Close()
		t.Fatal("dial with unknown deviceId succeeded, want rejection before upgrade")
	}
	if got := hub.Count(); got != 0 {
		t.Fatalf("Count() = %d after rejected registration, want 0", got)
	}
}

func TestConnectRejectsDuplicateDevice(t *testing.T) {
	hub, srv := newTestServer(t, connTestOrigin)

	first, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "iphone-se"), sameOriginHeader())
	if err != nil {
		t.Fatalf("first dial error = %v", err)
	}
	defer first.Close()
	var welcome ServerMessage
	if err := first.ReadJSON(&welcome); err != nil {
		t.Fatalf("read welcome: %v", err)
	}

	second, _, err := websocket.DefaultDialer.Dial(dialURL(srv, "iphone-se"), sameOriginHeader())
	if err != nil {
		t.Fatalf("second dial error = %v", err)
	}
	defer second.Close()

	var msg ServerMessage
	if err := second.ReadJSON(&msg); err != nil {
		t.Fatalf("read rejection: %v", err)
	}
	if msg.Type != msgTypeError {
		t.Fatalf("second connection got %+v, want an error message", msg)
	}
	if got := hub.Count(); got != 1 {
		t.Fatalf("Count() = %d, want the first connection only", got)
	}
}
