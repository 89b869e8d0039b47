package broadcast

import (
	"encoding/json"

	"previewServer/backend/internal/story"
)

const (
	TypeUpdateStory = "UPDATE_STORY"
	TypePreviewAck  = "PREVIEW_ACK"
)

// PreviewMessage is the outbound frame. One instance is built per
// (broadcast, recipient) pair; DeviceID is injected per recipient so each
// surface can self-identify in its ack.
type PreviewMessage struct {
	Type    string         `json:"type"`
	Payload PreviewPayload `json:"payload"`
}

type PreviewPayload struct {
	Slides           []story.Slide `json:"slides"`
	ActiveSlideIndex int           `json:"activeSlideIndex"`
	DeviceID         string        `json:"deviceId"`
}

// AckMessage is the inbound confirmation a surface posts after rendering.
type AckMessage struct {
	Type      string `json:"type"`
	DeviceID  string `json:"deviceId"`
	Timestamp int64  `json:"timestamp"`
}

// ackEnvelope uses pointer fields so parseAck can require every key to be
// present and correctly typed, not merely zero-valued.
type ackEnvelope struct {
	Type      *string  `json:"type"`
	DeviceID  *string  `json:"deviceId"`
	Timestamp *float64 `json:"timestamp"`
}

// parseAck validates raw against the exact PREVIEW_ACK shape. Acks are
// advisory telemetry, so any violation returns ok=false and nothing else:
// a malformed frame must never surface an error.
func parseAck(raw []byte) (AckMessage, bool) {
	var env ackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return AckMessage{}, false
	}
	if env.Type == nil || env.DeviceID == nil || env.Timestamp == nil {
		return AckMessage{}, false
	}
	if *env.Type != TypePreviewAck || *env.DeviceID == "" {
		return AckMessage{}, false
	}
	return AckMessage{
		Type:      *env.Type,
		DeviceID:  *env.DeviceID,
		Timestamp: int64(*env.Timestamp),
	}, true
}
