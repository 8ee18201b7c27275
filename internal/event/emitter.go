// Package event provides generic event emission utilities.
package event

import "sync"

// Emitter fans events out to registered handlers. The zero value is ready
// to use. Registration and emission are safe for concurrent use.
type Emitter[E any] struct {
	// +checklocks:mu
	handlers []func(E)
	mu       sync.RWMutex
}

// OnEvent registers a handler. Handlers run synchronously, in registration
// order, on the goroutine that calls Emit.
func (e *Emitter[E]) OnEvent(handler func(E)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// Emit delivers event to every registered handler. The handler slice is
// snapshotted first so handlers may register further handlers during
// emission without deadlocking.
func (e *Emitter[E]) Emit(event E) {
	e.mu.RLock()
	handlers := make([]func(E), len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// HandlerCount returns the number of registered handlers.
func (e *Emitter[E]) HandlerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers)
}
