package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
)

func TestDispatcherDeliversEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(raw []byte) error {
		var evt CycleEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			return err
		}
		if evt.Outcome != OutcomeAllAcked || evt.Generation != 7 {
			return errors.New("event payload does not match what was enqueued")
		}
		return nil
	})

	d := NewDispatcher(producer, "preview-cycles", nil, DispatcherOptions{
		QueueSize:   8,
		Workers:     2,
		MaxRetry:    0,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  time.Millisecond,
	})

	evt := NewCycleEvent(7, OutcomeAllAcked, 3, 3, nil, 40*time.Millisecond)
	if err := d.Enqueue(context.Background(), evt); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	d.Close()

	if err := producer.Close(); err != nil {
		t.Fatalf("unmet producer expectations: %v", err)
	}
}

func TestDispatcherRetriesThenSucceeds(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker unavailable"))
	producer.ExpectSendMessageAndSucceed()

	d := NewDispatcher(producer, "preview-cycles", NewSemaphore(1), DispatcherOptions{
		QueueSize:   1,
		Workers:     1,
		MaxRetry:    3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})

	evt := NewCycleEvent(1, OutcomeTimedOut, 2, 1, []string{"ipad-air"}, 2*time.Second)
	if err := d.Enqueue(context.Background(), evt); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	d.Close()

	if err := producer.Close(); err != nil {
		t.Fatalf("expected a retry after the first failure: %v", err)
	}
}

func TestEnqueueFullQueueHonorsContext(t *testing.T) {
	// No workers: nothing ever drains the queue.
	d := &Dispatcher{queue: make(chan CycleEvent, 1)}
	_ = d.Enqueue(context.Background(), CycleEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Enqueue(ctx, CycleEvent{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Enqueue() on full queue = %v, want deadline exceeded", err)
	}
}
