// Package notify persists notification events off the request path.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/store"
)

const writeTimeout = 5 * time.Second

var ErrClosed = errors.New("dispatcher closed")

type Dispatcher struct {
	store store.NotificationStore
	log   zerolog.Logger
	queue chan model.NotificationEvent

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines that drain a queue of queueSize events.
func NewDispatcher(st store.NotificationStore, log zerolog.Logger, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		store: st,
		log:   log.With().Str("component", "notify").Logger(),
		queue: make(chan model.NotificationEvent, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Emit enqueues events without blocking. Events that do not fit in the queue, or arrive
// after Close, are dropped and logged.
func (d *Dispatcher) Emit(events ...model.NotificationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, event := range events {
		if d.closed {
			d.drop(event, ErrClosed)
			continue
		}
		select {
		case d.queue <- event:
		default:
			d.drop(event, errors.New("queue full"))
		}
	}
}

// Close stops accepting events and waits for queued ones to be written or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
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

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event model.NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	notification := model.Notification{
		UserID:  event.RecipientID,
		Message: event.Message,
		Type:    event.Type,
		BidID:   event.BidID,
	}
	if event.ProjectID != uuid.Nil {
		projectID := event.ProjectID
		notification.ProjectID = &projectID
	}
	if err := d.store.Create(ctx, &notification); err != nil {
		d.log.Error().
			Err(err).
			Str("recipient_id", event.RecipientID.String()).
			Str("type", string(event.Type)).
			Msg("store notification")
		return
	}
	d.log.Debug().
		Str("recipient_id", event.RecipientID.String()).
		Str("type", string(event.Type)).
		Msg("notification stored")
}

func (d *Dispatcher) drop(event model.NotificationEvent, reason error) {
	d.log.Warn().
		Err(reason).
		Str("recipient_id", event.RecipientID.String()).
		Str("type", string(event.Type)).
		Msg("notification dropped")
}
