package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (s *recordingSender) Send(to, subject, body string) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Message{To: to, Subject: subject, Body: body})
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 2, 8, zap.NewNop())

	for i := 0; i < 5; i++ {
		if !d.Enqueue(Message{To: "user@example.com", Subject: "hi", Body: "body"}) {
			t.Fatalf("Enqueue %d rejected unexpectedly", i)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if sender.count() != 5 {
		t.Errorf("Expected 5 deliveries, got %d", sender.count())
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(sender, 1, 1, zap.NewNop())

	// First message occupies the worker, second fills the queue
	d.Enqueue(Message{To: "a@example.com"})
	d.Enqueue(Message{To: "b@example.com"})

	dropped := false
	for i := 0; i < 5; i++ {
		if !d.Enqueue(Message{To: "c@example.com"}) {
			dropped = true
			break
		}
	}
	if !dropped {
		t.Error("Expected Enqueue to reject once the queue is full")
	}

	close(sender.block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestDispatcher_ContinuesAfterSendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 1, 8, zap.NewNop())

	d.Enqueue(Message{To: "a@example.com"})
	d.Enqueue(Message{To: "b@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// Both attempts were made despite the first failing
	if sender.count() != 2 {
		t.Errorf("Expected 2 delivery attempts, got %d", sender.count())
	}
}

func TestDispatcher_RejectsEnqueueAfterClose(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, 8, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if d.Enqueue(Message{To: "late@example.com"}) {
		t.Error("Expected Enqueue to reject after Close")
	}
	if err := d.Close(ctx); err != nil {
		t.Errorf("Second Close returned error: %v", err)
	}
}

func TestDispatcher_CloseHonorsContext(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(sender, 1, 8, zap.NewNop())

	d.Enqueue(Message{To: "a@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Close(ctx); err == nil {
		t.Error("Expected Close to time out while delivery is blocked")
	}

	close(sender.block)
}
