package toasts

import (
	"sync"
	"time"

	"github.com/yazbox/yazbox-backend/pkg/enums"
)

const defaultLifetime = 5 * time.Second

// Toast is a transient user-facing notification.
type Toast struct {
	ID       int64               `json:"id"`
	Message  string              `json:"message"`
	Severity enums.ToastSeverity `json:"severity"`
}

// Queue holds live toasts in insertion order. Each toast self-dismisses
// after a fixed lifetime unless dismissed explicitly first; both paths remove
// by id and are idempotent.
type Queue struct {
	lifetime time.Duration
	now      func() time.Time
	schedule func(d time.Duration, fn func())

	mu     sync.Mutex
	toasts []Toast
}

// QueueOption tweaks queue construction.
type QueueOption func(*Queue)

// WithLifetime overrides the auto-dismiss delay.
func WithLifetime(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.lifetime = d
		}
	}
}

// WithClock replaces the id clock, used by tests.
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithScheduler replaces the dismiss timer, used by tests.
func WithScheduler(schedule func(d time.Duration, fn func())) QueueOption {
	return func(q *Queue) {
		if schedule != nil {
			q.schedule = schedule
		}
	}
}

// NewQueue builds an empty toast queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		lifetime: defaultLifetime,
		now:      time.Now,
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add appends a toast whose id is the creation timestamp and schedules its
// removal. Two toasts inside the same clock tick share an id; the early
// dismissal that causes is cosmetic.
func (q *Queue) Add(message string, severity enums.ToastSeverity) Toast {
	if !severity.IsValid() {
		severity = enums.ToastSeverityInfo
	}

	toast := Toast{
		ID:       q.now().UnixMilli(),
		Message:  message,
		Severity: severity,
	}

	q.mu.Lock()
	q.toasts = append(q.toasts, toast)
	q.mu.Unlock()

	q.schedule(q.lifetime, func() { q.Dismiss(toast.ID) })
	return toast
}

// Dismiss removes the toast with the given id. Removing an absent id is a
// no-op.
func (q *Queue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.toasts[:0]
	for _, toast := range q.toasts {
		if toast.ID != id {
			kept = append(kept, toast)
		}
	}
	q.toasts = kept
}

// List returns live toasts in insertion order.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Len reports the number of live toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}
