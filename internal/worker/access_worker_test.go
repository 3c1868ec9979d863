package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeAcker struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks++
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

// TestConsumeLoopDrainsInFlight tests that cancellation waits for running
// handlers instead of abandoning them mid-persist.
func TestConsumeLoopDrainsInFlight(t *testing.T) {
	deliveries := make(chan amqp.Delivery, 4)
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	var completed int32

	handle := func(d amqp.Delivery) {
		started <- struct{}{}
		<-release
		atomic.AddInt32(&completed, 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ret := make(chan error, 1)
	go func() { ret <- consumeLoop(ctx, deliveries, 2, handle) }()

	deliveries <- amqp.Delivery{}
	deliveries <- amqp.Delivery{}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("handler never started")
		}
	}

	cancel()
	select {
	case <-ret:
		t.Fatal("loop returned with handlers still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-ret:
		if err != nil {
			t.Fatalf("loop returned %v on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop never returned after handlers finished")
	}
	if got := atomic.LoadInt32(&completed); got != 2 {
		t.Fatalf("completed %d handlers, want 2", got)
	}
}

// TestConsumeLoopClosedChannel tests the error path when the broker drops
// the delivery channel.
func TestConsumeLoopClosedChannel(t *testing.T) {
	deliveries := make(chan amqp.Delivery)
	close(deliveries)
	err := consumeLoop(context.Background(), deliveries, 1, func(amqp.Delivery) {})
	if err == nil {
		t.Fatal("expected error on closed delivery channel")
	}
}

// TestHandleAccessMessagePoison tests that an unparseable message is
// dead-lettered without requeue.
func TestHandleAccessMessagePoison(t *testing.T) {
	acker := &fakeAcker{}
	handleAccessMessage(amqp.Delivery{
		Acknowledger: acker,
		Body:         []byte("{not json"),
	})
	acker.mu.Lock()
	defer acker.mu.Unlock()
	if acker.acks != 0 || acker.nacks != 1 {
		t.Fatalf("acks=%d nacks=%d, want 0/1", acker.acks, acker.nacks)
	}
	if acker.requeue {
		t.Fatal("poison message must not requeue")
	}
}
