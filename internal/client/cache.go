package client

import (
	"sync"
	"time"
)

// expiring holds one value until ttl has passed since it was stored.
type expiring[T any] struct {
	mu      sync.Mutex
	value   T
	valid   bool
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func newExpiring[T any](ttl time.Duration) *expiring[T] {
	return &expiring[T]{ttl: ttl, now: time.Now}
}

// Load returns the stored value, or false once it expired or was dropped.
func (e *expiring[T]) Load() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.valid || e.now().After(e.expires) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (e *expiring[T]) Store(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.value, e.valid = v, true
	e.expires = e.now().Add(e.ttl)
}

func (e *expiring[T]) Drop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	e.value, e.valid = zero, false
}
