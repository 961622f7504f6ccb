// Package events provides a non-blocking publish/subscribe bus for job
// lifecycle events, so observers (verbose CLI logging, a future GUI) can
// watch every job without touching the per-job callbacks.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Type identifies a job lifecycle event.
type Type string

const (
	JobStarted   Type = "job_started"   // channel open, trigger sent
	JobProgress  Type = "job_progress"  // progress update
	JobCompleted Type = "job_completed" // terminal: success
	JobFailed    Type = "job_failed"    // terminal: error
	JobCancelled Type = "job_cancelled" // terminal: user-requested, not a failure
)

// Event describes one job lifecycle transition or progress update.
type Event struct {
	Type  Type
	JobID string
	Kind  string // "upload", "archive", "extract", "fetch-url"
	Time  time.Time

	// Progress payload. Bytes for uploads, Percent plus optional
	// Processed/Total file counts for archive and extract.
	Bytes     int64
	Percent   float64
	Processed int
	Total     int

	// Error message for JobFailed.
	Error string
}

// Bus fans events out to subscribers. Publishing never blocks: events to a
// full subscriber are dropped and counted.
type Bus struct {
	mu      sync.RWMutex
	subs    []chan Event
	closed  bool
	bufSize int

	dropped atomic.Int64
}

const defaultBuffer = 256

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	return &Bus{bufSize: bufferSize}
}

// Subscribe returns a channel receiving all published events. The channel is
// closed when the bus closes.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufSize)
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for i, sub := range b.subs {
		if sub == ch {
			b.subs[i] = b.subs[len(b.subs)-1]
			b.subs = b.subs[:len(b.subs)-1]
			close(sub)
			return
		}
	}
}

// Publish delivers an event to all subscribers without blocking. A nil bus
// is valid and discards everything, so job controllers can publish
// unconditionally.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close shuts down the bus and closes all subscriber channels. Like
// Publish, it tolerates a nil receiver.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// Dropped returns how many events were discarded due to full buffers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
