package story

// Slide is one teleprompter slide as the editor produced it. The broadcast
// path treats it as an opaque payload.
type Slide struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	DurationMS int    `json:"durationMs,omitempty"`
}

// Snapshot is the full editor state a preview surface needs to render.
type Snapshot struct {
	Slides           []Slide `json:"slides"`
	ActiveSlideIndex int     `json:"activeSlideIndex"`
}

// Clone returns a deep copy so a snapshot handed to the broadcast path is
// immune to later editor mutation.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ActiveSlideIndex: s.ActiveSlideIndex}
	if s.Slides != nil {
		out.Slides = make([]Slide, len(s.Slides))
		copy(out.Slides, s.Slides)
	}
	return out
}
