package broadcast

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"previewServer/backend/internal/story"
)

// Recipient is the postMessage-shaped send primitive of one preview
// surface. Post may fail; the engine treats a failed send like a send that
// was never acknowledged.
type Recipient interface {
	Post(data []byte, targetOrigin string) error
}

// RecipientSource hands out the live deviceId -> Recipient map. The engine
// re-reads it on every broadcast and never caches membership, so surfaces
// added after construction are reachable on the next cycle.
type RecipientSource interface {
	Recipients() map[string]Recipient
}

// RecipientsFunc adapts a plain function to RecipientSource.
type RecipientsFunc func() map[string]Recipient

func (f RecipientsFunc) Recipients() map[string]Recipient { return f() }

// CycleResult describes how one broadcast generation resolved. It is
// captured under the engine lock at resolution time, so a superseding
// broadcast racing the callback cannot shift the attribution.
type CycleResult struct {
	Generation  uint64
	DeviceCount int
	// MissingDeviceIDs is sorted; nil when the cycle fully acknowledged.
	MissingDeviceIDs []string
}

type Config struct {
	// AckTimeout bounds how long a generation waits for its acks.
	AckTimeout time.Duration
	// DebounceWindow is the trailing-edge window for ScheduleBroadcast.
	DebounceWindow time.Duration
	// Origin is the application's own origin. Outbound sends target it
	// explicitly and inbound acks from any other origin are discarded.
	Origin string
	// OnAckTimeout fires at most once per generation with the deviceIds
	// still owed an ack. A timeout is reported data, not an error.
	OnAckTimeout func(res CycleResult)
	// OnAllAcknowledged fires at most once per generation, when the
	// pending set empties before the timeout.
	OnAllAcknowledged func(res CycleResult)

	EnablePerformanceMonitoring bool
}

// Engine fans one story snapshot out to every connected preview surface
// and reconciles their acknowledgments against a generation counter.
//
// Per-cycle state machine: IDLE -> SENT -> {ALL_ACKED | TIMED_OUT}. A new
// Broadcast supersedes an unresolved cycle; there is never more than one
// outstanding ack timer per engine.
type Engine struct {
	source   RecipientSource
	cfg      Config
	perf     *Monitor
	debounce *Debouncer

	mu         sync.Mutex
	generation uint64
	cycleSize  int
	pending    map[string]struct{}
	resolved   bool
	ackTimer   *time.Timer
	disposed   bool
}

func NewEngine(source RecipientSource, cfg Config) *Engine {
	e := &Engine{
		source:   source,
		cfg:      cfg,
		pending:  make(map[string]struct{}),
		resolved: true,
		debounce: NewDebouncer(cfg.DebounceWindow),
	}
	if cfg.EnablePerformanceMonitoring {
		e.perf = NewMonitor()
	}
	return e
}

// Broadcast starts a new generation and synchronously sends one
// UPDATE_STORY message per current recipient, each with that recipient's
// deviceId injected. It never blocks on acknowledgments; resolution is
// reported through the configured callbacks.
func (e *Engine) Broadcast(snap story.Snapshot) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.generation++
	gen := e.generation
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}

	recipients := e.source.Recipients()
	e.cycleSize = len(recipients)
	e.pending = make(map[string]struct{}, len(recipients))
	for id := range recipients {
		e.pending[id] = struct{}{}
	}
	e.resolved = len(recipients) == 0

	if len(recipients) > 0 {
		if e.perf != nil {
			e.perf.Begin(gen)
		}
		e.ackTimer = time.AfterFunc(e.cfg.AckTimeout, func() { e.onAckTimeout(gen) })
	}
	e.mu.Unlock()

	for id, r := range recipients {
		msg := PreviewMessage{
			Type: TypeUpdateStory,
			Payload: PreviewPayload{
				Slides:           snap.Slides,
				ActiveSlideIndex: snap.ActiveSlideIndex,
				DeviceID:         id,
			},
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("broadcast: marshal for device %s failed: %v", id, err)
			continue
		}
		// A failed send stays in the pending set: from this side it is
		// indistinguishable from "sent but never acked", and one broken
		// surface must not stop delivery to the rest.
		if err := r.Post(data, e.cfg.Origin); err != nil {
			log.Printf("broadcast: send to device %s failed (gen=%d): %v", id, gen, err)
		}
	}
}

// ScheduleBroadcast queues snap behind the trailing-edge debounce window,
// so a burst of edits produces one broadcast carrying the final state.
func (e *Engine) ScheduleBroadcast(snap story.Snapshot) {
	e.debounce.Schedule(func() { e.Broadcast(snap) })
}

// HandleAck processes one inbound frame. The frame is accepted only when
// its transport origin matches the engine's own origin, it is shaped
// exactly like a PREVIEW_ACK, and its deviceId is still pending in the
// current generation. Everything else is dropped without any state change.
func (e *Engine) HandleAck(origin string, raw []byte) {
	if origin != e.cfg.Origin {
		return
	}
	ack, ok := parseAck(raw)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.disposed || e.resolved {
		e.mu.Unlock()
		return
	}
	if _, pending := e.pending[ack.DeviceID]; !pending {
		e.mu.Unlock()
		return
	}
	delete(e.pending, ack.DeviceID)
	if len(e.pending) > 0 {
		e.mu.Unlock()
		return
	}

	// ALL_ACKED: cancel the timer and resolve this generation.
	e.resolved = true
	res := CycleResult{Generation: e.generation, DeviceCount: e.cycleSize}
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}
	done := e.cfg.OnAllAcknowledged
	e.mu.Unlock()

	if e.perf != nil {
		e.perf.End(res.Generation)
	}
	if done != nil {
		done(res)
	}
}

func (e *Engine) onAckTimeout(gen uint64) {
	e.mu.Lock()
	// A superseded or already-resolved generation's timer is irrelevant.
	if e.disposed || e.resolved || gen != e.generation || len(e.pending) == 0 {
		e.mu.Unlock()
		return
	}
	e.resolved = true
	e.ackTimer = nil
	missing := make([]string, 0, len(e.pending))
	for id := range e.pending {
		missing = append(missing, id)
	}
	sort.Strings(missing)
	res := CycleResult{Generation: gen, DeviceCount: e.cycleSize, MissingDeviceIDs: missing}
	timedOut := e.cfg.OnAckTimeout
	e.mu.Unlock()

	if timedOut != nil {
		timedOut(res)
	}
}

// Dispose cancels the pending debounce and ack timer and detaches the
// engine: later acks and timer fires are no-ops. Idempotent.
func (e *Engine) Dispose() {
	e.debounce.CancelPending()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disposed = true
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}
}

// Generation returns the current broadcast generation counter.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// CycleSize returns how many recipients the current generation started
// with.
func (e *Engine) CycleSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycleSize
}

// PendingAcks returns how many recipients still owe an ack for the
// current generation.
func (e *Engine) PendingAcks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// PendingDeviceIDs returns the deviceIds still owed an ack, sorted.
func (e *Engine) PendingDeviceIDs() []string {
	e.mu.Lock()
	ids := make([]string, 0, len(e.pending))
	for id := range e.pending {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Perf returns the round-trip monitor, or nil when monitoring is disabled.
func (e *Engine) Perf() *Monitor {
	return e.perf
}
