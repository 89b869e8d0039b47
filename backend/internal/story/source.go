package story

import (
	"errors"
	"sync"
)

var ErrIndexOutOfRange = errors.New("story: active slide index out of range")

// Source holds the authoritative editor state. It is owned by the HTTP
// layer; the broadcast engine only ever reads snapshots from it.
type Source struct {
	mu       sync.RWMutex
	snap     Snapshot
	onChange func(Snapshot)
}

func NewSource() *Source {
	return &Source{}
}

// SetOnChange installs the change callback. Update invokes it on the
// caller's goroutine, after the state swap, with a cloned snapshot.
func (s *Source) SetOnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns a copy of the current state.
func (s *Source) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Update replaces the current state and notifies the change callback.
func (s *Source) Update(snap Snapshot) error {
	if snap.ActiveSlideIndex < 0 || (len(snap.Slides) > 0 && snap.ActiveSlideIndex >= len(snap.Slides)) {
		return ErrIndexOutOfRange
	}
	s.mu.Lock()
	s.snap = snap.Clone()
	fn := s.onChange
	copied := s.snap.Clone()
	s.mu.Unlock()
	if fn != nil {
		fn(copied)
	}
	return nil
}
