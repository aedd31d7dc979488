package viewport

import (
	"context"
	"sync"
	"time"
)

// DefaultFrame is the flush interval used by Run when none is given.
const DefaultFrame = 16 * time.Millisecond

// event is a queued pointer move or wheel tick.
type event struct {
	wheel  bool
	x, y   float64
	deltaY float64
}

// Coalescer buffers pointer and wheel input for a [Controller]. A run of
// events of the same kind collapses to its latest event, and runs are applied
// in arrival order, so a frame costs one update per run.
type Coalescer struct {
	c *Controller

	mu      sync.Mutex
	pending []event
}

// NewCoalescer returns a coalescer feeding c.
func NewCoalescer(c *Controller) *Coalescer {
	return &Coalescer{c: c}
}

func (q *Coalescer) push(e event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n := len(q.pending); n > 0 && q.pending[n-1].wheel == e.wheel {
		q.pending[n-1] = e
		return
	}
	q.pending = append(q.pending, e)
}

// Pan queues a pointer move. Consecutive moves keep only the latest position.
func (q *Coalescer) Pan(px, py float64) {
	q.push(event{x: px, y: py})
}

// Wheel queues a wheel event. A newer event replaces a pending one unless a
// pointer move arrived in between.
func (q *Coalescer) Wheel(deltaY, ax, ay float64) {
	q.push(event{wheel: true, x: ax, y: ay, deltaY: deltaY})
}

// StartPan settles pending input and begins a drag, so the drag starts from
// the transform the user sees.
func (q *Coalescer) StartPan(px, py float64) {
	q.Settle()
	q.c.StartPan(px, py)
}

// EndPan settles pending input and ends the drag.
func (q *Coalescer) EndPan() {
	q.Settle()
	q.c.EndPan()
}

// Pending reports whether input is waiting for the next flush.
func (q *Coalescer) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) > 0
}

// Flush applies pending input to the controller in arrival order and reports
// whether anything was applied. Call it once per frame.
func (q *Coalescer) Flush() bool {
	q.mu.Lock()
	events := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, e := range events {
		if e.wheel {
			q.c.Wheel(e.deltaY, e.x, e.y)
		} else {
			q.c.PanTo(e.x, e.y)
		}
	}
	return len(events) > 0
}

// Settle flushes any pending input synchronously. Call it when input stops,
// and before acting on the controller directly, so the transform reflects
// the last event.
func (q *Coalescer) Settle() {
	q.Flush()
}

// Run flushes every frame until ctx is done, then settles.
func (q *Coalescer) Run(ctx context.Context, frame time.Duration) {
	if frame <= 0 {
		frame = DefaultFrame
	}
	tick := time.NewTicker(frame)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			q.Settle()
			return
		case <-tick.C:
			q.Flush()
		}
	}
}
