package ws

// ControlMessage is the non-ack traffic a surface may send: currently only
// heartbeats. Ack frames are forwarded to the broadcast engine raw, so
// their validation lives in one place.
type ControlMessage struct {
	Type string `json:"type"`
}

// ServerMessage is the control traffic the server sends outside the
// broadcast path (welcome, errors, heartbeat feedback).
type ServerMessage struct {
	Type     string `json:"type"`
	DeviceID string `json:"deviceId,omitempty"`
	Content  string `json:"content,omitempty"`
}

const (
	msgTypeHeartbeat = "heartbeat"
	msgTypeWelcome   = "welcome"
	msgTypeFeedback  = "feedback"
	msgTypeError     = "error"
)
