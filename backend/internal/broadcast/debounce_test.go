package broadcast

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerTrailingEdge(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		i := i
		d.Schedule(func() {
			fired.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("ran function %d, want the last scheduled (5)", got)
	}
}

func TestDebouncerCancelPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired atomic.Int32
	d.Schedule(func() { fired.Add(1) })
	d.CancelPending()

	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired %d times after cancel, want 0", got)
	}
}

func TestDebouncerZeroWindowRunsInline(t *testing.T) {
	d := NewDebouncer(0)
	ran := false
	d.Schedule(func() { ran = true })
	if !ran {
		t.Fatal("zero-window schedule did not run inline")
	}
}
