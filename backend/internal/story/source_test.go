package story

import (
	"reflect"
	"testing"
)

func TestSourceUpdateNotifies(t *testing.T) {
	s := NewSource()
	var seen []Snapshot
	s.SetOnChange(func(snap Snapshot) { seen = append(seen, snap) })

	snap := Snapshot{
		Slides:           []Slide{{ID: "a", Content: "hello"}, {ID: "b", Content: "bye"}},
		ActiveSlideIndex: 1,
	}
	if err := s.Update(snap); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(seen) != 1 || !reflect.DeepEqual(seen[0], snap) {
		t.Fatalf("onChange saw %+v, want one %+v", seen, snap)
	}
	if got := s.Snapshot(); !reflect.DeepEqual(got, snap) {
		t.Fatalf("Snapshot() = %+v, want %+v", got, snap)
	}
}

func TestSourceRejectsOutOfRangeIndex(t *testing.T) {
	s := NewSource()
	err := s.Update(Snapshot{Slides: []Slide{{ID: "a"}}, ActiveSlideIndex: 3})
	if err == nil {
		t.Fatal("Update() with index 3 of 1 slide succeeded, want error")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewSource()
	orig := Snapshot{Slides: []Slide{{ID: "a", Content: "x"}}}
	if err := s.Update(orig); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got := s.Snapshot()
	got.Slides[0].Content = "mutated"
	if s.Snapshot().Slides[0].Content != "x" {
		t.Fatal("mutating a returned snapshot leaked into the source")
	}
}
