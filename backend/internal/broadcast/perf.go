package broadcast

import (
	"sync"
	"time"
)

// Monitor records broadcast round-trip latency: a start mark when a
// generation is sent and an end mark when its pending set reaches zero.
// It only observes; the ack-counting logic never consults it.
type Monitor struct {
	mu         sync.Mutex
	generation uint64
	startedAt  time.Time

	samples int
	last    time.Duration
	total   time.Duration
}

// MonitorStats is a read-only snapshot of collected timings.
type MonitorStats struct {
	Samples       int           `json:"samples"`
	LastRoundTrip time.Duration `json:"lastRoundTrip"`
	AvgRoundTrip  time.Duration `json:"avgRoundTrip"`
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// Begin marks the send time of a generation, superseding any generation
// still being timed.
func (m *Monitor) Begin(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation = generation
	m.startedAt = time.Now()
}

// End records the round trip for a fully acknowledged generation. Marks
// for superseded generations are dropped.
func (m *Monitor) End(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation || m.startedAt.IsZero() {
		return
	}
	rtt := time.Since(m.startedAt)
	m.startedAt = time.Time{}
	m.samples++
	m.last = rtt
	m.total += rtt
}

func (m *Monitor) Stats() MonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := MonitorStats{Samples: m.samples, LastRoundTrip: m.last}
	if m.samples > 0 {
		s.AvgRoundTrip = m.total / time.Duration(m.samples)
	}
	return s
}
