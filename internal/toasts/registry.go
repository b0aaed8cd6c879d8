package toasts

import "sync"

// Registry keeps one toast queue per access session, giving each signed-in
// connection its own feed.
type Registry struct {
	opts []QueueOption

	mu     sync.Mutex
	queues map[string]*Queue
}

// NewRegistry builds an empty registry. Options apply to every queue the
// registry creates.
func NewRegistry(opts ...QueueOption) *Registry {
	return &Registry{
		opts:   opts,
		queues: make(map[string]*Queue),
	}
}

// ForSession returns the session's queue, creating it on first use.
func (r *Registry) ForSession(accessID string) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.queues[accessID]; ok {
		return existing
	}
	created := NewQueue(r.opts...)
	r.queues[accessID] = created
	return created
}

// Drop forgets the session's queue. Dropping an unknown session is a no-op.
func (r *Registry) Drop(accessID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.queues, accessID)
}

// Len reports the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}
