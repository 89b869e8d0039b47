package telemetry

import (
	"time"

	"github.com/google/uuid"
)

const (
	OutcomeAllAcked = "ALL_ACKED"
	OutcomeTimedOut = "TIMED_OUT"
)

// CycleEvent is one broadcast cycle's outcome as published to Kafka.
type CycleEvent struct {
	EventID          string    `json:"eventId"`
	EventType        string    `json:"eventType"` // always "BROADCAST_CYCLE"
	Generation       uint64    `json:"generation"`
	Outcome          string    `json:"outcome"`
	DeviceCount      int       `json:"deviceCount"`
	AckedCount       int       `json:"ackedCount"`
	MissingDeviceIDs []string  `json:"missingDeviceIds,omitempty"`
	ElapsedMS        int64     `json:"elapsedMs"`
	OccurredAt       time.Time `json:"occurredAt"`
}

func NewCycleEvent(generation uint64, outcome string, deviceCount, ackedCount int, missing []string, elapsed time.Duration) CycleEvent {
	return CycleEvent{
		EventID:          uuid.NewString(),
		EventType:        "BROADCAST_CYCLE",
		Generation:       generation,
		Outcome:          outcome,
		DeviceCount:      deviceCount,
		AckedCount:       ackedCount,
		MissingDeviceIDs: missing,
		ElapsedMS:        elapsed.Milliseconds(),
		OccurredAt:       time.Now().UTC(),
	}
}
