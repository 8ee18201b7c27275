// Package session provides supervision of interactive agent CLI processes:
// spawning, output buffering, and escalated termination.
package session

import (
	"strings"
	"sync"
)

// DefaultBufferLines is the number of output lines retained per session.
const DefaultBufferLines = 200

// RingBuffer is a thread-safe circular store of terminal output lines.
// Each entry keeps its normalized "\n" terminator, except a trailing
// partial line, so concatenating entries reproduces the original stream
// apart from truncation of the oldest entries.
type RingBuffer struct {
	// +checklocks:mu
	entries []string
	size    int // Maximum number of entries (immutable after creation)
	// +checklocks:mu
	head int // Next write position
	// +checklocks:mu
	count int // Current number of entries stored
	mu    sync.RWMutex
}

// NewRingBuffer creates a ring buffer with the specified line capacity.
// If size <= 0, DefaultBufferLines is used.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultBufferLines
	}
	return &RingBuffer{
		entries: make([]string, size),
		size:    size,
	}
}

// Write appends a chunk of raw output, splitting it on line boundaries.
// Carriage returns are normalized to "\n" before splitting; every segment
// except a trailing partial gets its terminator re-attached.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	segments := strings.Split(text, "\n")

	rb.mu.Lock()
	defer rb.mu.Unlock()

	for i, seg := range segments {
		if i < len(segments)-1 {
			rb.store(seg + "\n")
		} else if seg != "" {
			// Trailing partial line, no terminator yet
			rb.store(seg)
		}
	}

	return len(p), nil
}

// WriteString appends a string chunk.
func (rb *RingBuffer) WriteString(s string) (int, error) {
	return rb.Write([]byte(s))
}

// store adds one entry, evicting the oldest when at capacity.
//
// +checklocks:rb.mu
func (rb *RingBuffer) store(entry string) {
	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	}
}

// Lines returns the last n entries in chronological order.
// If n <= 0 or n > Len(), all stored entries are returned.
func (rb *RingBuffer) Lines(n int) []string {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n <= 0 || n > rb.count {
		n = rb.count
	}
	if n == 0 {
		return nil
	}

	result := make([]string, n)

	start := 0
	if rb.count == rb.size {
		// Buffer is full, oldest entry is at head
		start = (rb.head - n + rb.size) % rb.size
	} else {
		start = rb.count - n
	}

	for i := 0; i < n; i++ {
		result[i] = rb.entries[(start+i)%rb.size]
	}

	return result
}

// Last returns the most recent n entries concatenated in order.
func (rb *RingBuffer) Last(n int) string {
	var sb strings.Builder
	for _, entry := range rb.Lines(n) {
		sb.WriteString(entry)
	}
	return sb.String()
}

// All returns the full buffered content.
func (rb *RingBuffer) All() string {
	return rb.Last(0)
}

// Len returns the number of entries currently stored.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the maximum number of entries the buffer can hold.
func (rb *RingBuffer) Cap() int {
	return rb.size
}

// Clear removes all entries.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for i := range rb.entries {
		rb.entries[i] = ""
	}
	rb.head = 0
	rb.count = 0
}
