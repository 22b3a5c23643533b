package input

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/gameflow/internal/renderer/backend"
)

// DefaultCapacity is the queue size used when none is given.
const DefaultCapacity = 128

// Source is a blocking event source such as a backend.
type Source interface {
	PollEvent() (backend.Event, bool)
}

// Queue buffers events between the input goroutine and the frame loop.
type Queue struct {
	events chan backend.Event
	wg     sync.WaitGroup

	mu   sync.Mutex
	done chan struct{}

	received atomic.Uint64
	dropped  atomic.Uint64

	// Loop goroutine only.
	bindings *Bindings
	frame    uint64
	current  *Snapshot
}

// NewQueue creates a queue holding up to capacity undelivered events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		events:   make(chan backend.Event, capacity),
		bindings: DefaultBindings(),
	}
}

// SetBindings replaces the action bindings used by snapshots.
func (q *Queue) SetBindings(b *Bindings) {
	if b != nil {
		q.bindings = b
	}
}

// Bindings returns the action bindings.
func (q *Queue) Bindings() *Bindings {
	return q.bindings
}

// Start polls src on a new goroutine until src reports it is closed or Stop
// is called. PollEvent blocks, so the goroutine only exits promptly once the
// source itself is shut down. A stopped queue can be started again after
// Wait returns; events and the snapshot left from the previous session are
// dropped.
func (q *Queue) Start(src Source) {
	done := make(chan struct{})
	q.mu.Lock()
	q.done = done
	q.mu.Unlock()

	q.Drain()
	q.frame, q.current = 0, nil

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			ev, ok := src.PollEvent()
			if !ok {
				return
			}
			select {
			case <-done:
				return
			default:
			}
			q.Push(ev)
		}
	}()
}

// Stop tells the polling goroutine to exit after its current poll.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.done != nil {
		close(q.done)
		q.done = nil
	}
}

// Wait blocks until the polling goroutine has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Push enqueues ev without blocking. It returns false and counts a drop if
// the queue is full.
func (q *Queue) Push(ev backend.Event) bool {
	q.received.Add(1)
	select {
	case q.events <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain returns every queued event without blocking.
func (q *Queue) Drain() []backend.Event {
	var out []backend.Event
	for {
		select {
		case ev := <-q.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Frame returns the input snapshot for the given frame index. The queue is
// drained on the first call for each frame; later calls in the same frame
// return the same snapshot.
func (q *Queue) Frame(index uint64) *Snapshot {
	if q.current == nil || index != q.frame {
		q.frame = index
		q.current = newSnapshot(q.Drain(), q.bindings)
	}
	return q.current
}

// Stats returns how many events were pushed and how many were dropped.
func (q *Queue) Stats() (received, dropped uint64) {
	return q.received.Load(), q.dropped.Load()
}
