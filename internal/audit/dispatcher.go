package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/metrics"
)

const (
	ActionBusinessUpdated      = "business_updated"
	ActionHoursReplaced        = "hours_replaced"
	ActionFAQsReplaced         = "faqs_replaced"
	ActionBookingCreated       = "booking_created"
	ActionBookingUpdated       = "booking_updated"
	ActionBookingDeleted       = "booking_deleted"
	ActionIntegrationCreated   = "integration_created"
	ActionIntegrationUpdated   = "integration_updated"
	ActionIntegrationDeleted   = "integration_deleted"
	ActionSubscriptionCanceled = "subscription_canceled"
	ActionUserRoleChanged      = "user_role_changed"
)

const queueSize = 100

type Event struct {
	BusinessID uint
	UserID     *uint
	Action     string
	Entity     string
	EntityID   *uint
	Metadata   any
}

// Recorder is what use cases depend on; Dispatcher is the async one.
type Recorder interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	queue  chan Event

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

func NewDispatcher(logger *Logger, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.logger.Record(ctx, ev); err != nil {
			d.log.Error("audit write failed", zap.String("action", ev.Action), zap.Error(err))
		}
		cancel()
	}
}

// Dispatch never blocks the request: a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.AuditDropped.Inc()
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.done
}

// Discard drops every event. Used where no audit trail is wanted.
type Discard struct{}

func (Discard) Dispatch(Event) {}

func Ptr(id uint) *uint {
	return &id
}
