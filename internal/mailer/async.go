package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the notifier cannot take more work.
var ErrQueueFull = errors.New("mail queue full")

type job struct {
	to, code string
}

// AsyncNotifier hands verification mails to a small pool of background
// workers so registration never waits on SMTP.
type AsyncNotifier struct {
	sender  Sender
	log     *zap.Logger
	timeout time.Duration

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier starts workers goroutines draining a queue of size
// capacity. Close stops them.
func NewAsyncNotifier(sender Sender, log *zap.Logger, workers, capacity int) *AsyncNotifier {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	n := &AsyncNotifier{
		sender:  sender,
		log:     log,
		timeout: 30 * time.Second,
		jobs:    make(chan job, capacity),
	}
	n.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go n.worker()
	}
	return n
}

// NotifyVerification queues a mail. It never blocks.
func (n *AsyncNotifier) NotifyVerification(_ context.Context, email, code string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrQueueFull
	}
	select {
	case n.jobs <- job{to: email, code: code}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (n *AsyncNotifier) worker() {
	defer n.wg.Done()
	for j := range n.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := n.sender.Send(ctx, j.to, j.code); err != nil {
			n.log.Warn("verification mail failed", zap.String("to", j.to), zap.Error(err))
		} else {
			n.log.Debug("verification mail sent", zap.String("to", j.to))
		}
		cancel()
	}
}

// Close drains queued mails and waits for the workers.
func (n *AsyncNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.jobs)
	n.mu.Unlock()
	n.wg.Wait()
}
