package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sender is the minimal delivery interface the dispatcher drains to
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Message is a queued outbound email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Dispatcher delivers email in the background so request handlers never
// block on SMTP. Messages are dropped with a log entry when the queue is
// full; confirmation mail can always be re-requested.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	logger *zap.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts workers goroutines draining a bounded queue
func NewDispatcher(sender Sender, workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 16
	}

	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Message, queueSize),
		logger: logger,
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}

	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for msg := range d.queue {
		if err := d.sender.Send(msg.To, msg.Subject, msg.Body); err != nil {
			d.logger.Error("Failed to send email",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			continue
		}
		d.logger.Debug("Email sent",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
	}
}

// Enqueue queues a message for background delivery. Returns false when the
// queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("Email dispatcher closed, dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("Email queue full, dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return false
	}
}

// Close stops accepting messages and waits for in-flight deliveries.
// The context bounds how long to wait.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
