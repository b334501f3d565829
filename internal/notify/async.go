package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/telemetry"
)

// ErrQueueFull is returned by Async.Send when the delivery queue is full.
var ErrQueueFull = errors.New("notification queue full")

// ErrClosed is returned by Async.Send after Close.
var ErrClosed = errors.New("notification sender closed")

// AsyncConfig configures an Async sender.
type AsyncConfig struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
}

// ApplyDefaults sets default values for any unset fields.
func (c *AsyncConfig) ApplyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = 30 * time.Second
	}
}

// Async hands notifications to a pool of workers so Send never waits on delivery.
type Async struct {
	next Sender
	cfg  AsyncConfig

	mu     sync.RWMutex
	closed bool
	queue  chan *Notification
	wg     sync.WaitGroup
}

var _ Sender = (*Async)(nil)

// NewAsync starts cfg.Workers workers delivering through next.
func NewAsync(next Sender, cfg AsyncConfig) *Async {
	cfg.ApplyDefaults()

	a := &Async{
		next:  next,
		cfg:   cfg,
		queue: make(chan *Notification, cfg.QueueSize),
	}

	for range cfg.Workers {
		a.wg.Add(1)
		go a.worker()
	}

	return a
}

// Send queues n for delivery. It fails only when the queue is full or closed.
func (a *Async) Send(ctx context.Context, n *Notification) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- n:
		return nil
	default:
		telemetry.GetMetrics().NotificationsDroppedTotal.Add(ctx, 1)
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Async) worker() {
	defer a.wg.Done()

	for n := range a.queue {
		a.deliver(n)
	}
}

func (a *Async) deliver(n *Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.DeliveryTimeout)
	defer cancel()

	if err := a.next.Send(ctx, n); err != nil {
		telemetry.GetMetrics().NotificationFailuresTotal.Add(ctx, 1)
		log.Error().Err(err).
			Str("invitation_id", n.InvitationID.String()).
			Str("recipient", n.RecipientEmail).
			Msg("Failed to deliver invitation notification")
		return
	}

	telemetry.GetMetrics().NotificationsSentTotal.Add(ctx, 1)
}
