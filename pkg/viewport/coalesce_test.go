package viewport

import (
	"context"
	"testing"
	"time"
)

func TestCoalescerKeepsLastPan(t *testing.T) {
	var pushes int
	c := New(WithRenderTarget(RenderFunc(func(Transform) { pushes++ })))
	q := NewCoalescer(c)

	c.StartPan(0, 0)
	for i := range 50 {
		q.Pan(float64(i), float64(2*i))
	}
	if !q.Pending() {
		t.Fatal("Pending() = false with queued input")
	}
	if !q.Flush() {
		t.Fatal("Flush() applied nothing")
	}
	if pushes != 1 {
		t.Errorf("render pushes = %d, want 1 per frame", pushes)
	}
	got := c.Transform()
	if got.TranslateX != 49 || got.TranslateY != 98 {
		t.Errorf("transform = %+v, want last pan (49, 98)", got)
	}
	if q.Flush() {
		t.Error("second Flush applied stale input")
	}
}

func TestCoalescerSettleReflectsLastWheel(t *testing.T) {
	c := New()
	q := NewCoalescer(c)
	q.Wheel(1, 100, 100)
	q.Wheel(1, 100, 100)
	q.Wheel(-1, 250, 80)
	q.Settle()

	want := New()
	want.Wheel(-1, 250, 80)
	if got := c.Transform(); !approxT(got, want.Transform()) {
		t.Errorf("settled = %+v, want %+v", got, want.Transform())
	}
	if q.Pending() {
		t.Error("input pending after Settle")
	}
}

func TestCoalescerRun(t *testing.T) {
	c := New()
	q := NewCoalescer(c)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx, time.Millisecond)
		close(done)
	}()

	c.StartPan(0, 0)
	q.Pan(7, 9)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := c.Transform(); got.TranslateX != 7 || got.TranslateY != 9 {
		t.Errorf("transform after Run = %+v, want (7, 9)", got)
	}
}

func TestCoalescerKeepsArrivalOrder(t *testing.T) {
	tests := []struct {
		name  string
		input func(c *Controller, q *Coalescer)
		apply func(c *Controller)
	}{
		{
			name: "wheel during drag",
			input: func(c *Controller, q *Coalescer) {
				q.StartPan(100, 100)
				q.Wheel(-1, 400, 300)
				q.Pan(150, 120)
			},
			apply: func(c *Controller) {
				c.StartPan(100, 100)
				c.Wheel(-1, 400, 300)
				c.PanTo(150, 120)
			},
		},
		{
			name: "wheel then drag",
			input: func(c *Controller, q *Coalescer) {
				q.Wheel(-1, 400, 300)
				q.StartPan(100, 100)
				q.Pan(112, 105)
			},
			apply: func(c *Controller) {
				c.Wheel(-1, 400, 300)
				c.StartPan(100, 100)
				c.PanTo(112, 105)
			},
		},
		{
			name: "drag then wheel",
			input: func(c *Controller, q *Coalescer) {
				q.StartPan(0, 0)
				q.Pan(30, 40)
				q.Pan(60, 80)
				q.Wheel(1, 200, 200)
			},
			apply: func(c *Controller) {
				c.StartPan(0, 0)
				c.PanTo(60, 80)
				c.Wheel(1, 200, 200)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			q := NewCoalescer(c)
			tt.input(c, q)
			q.Settle()

			want := New()
			tt.apply(want)
			if got := c.Transform(); !approxT(got, want.Transform()) {
				t.Errorf("settled = %+v, want %+v", got, want.Transform())
			}
		})
	}
}

func TestCoalescerEndPanSettles(t *testing.T) {
	c := New()
	q := NewCoalescer(c)
	q.StartPan(10, 10)
	q.Pan(25, 40)
	q.EndPan()

	if q.Pending() {
		t.Error("input pending after EndPan")
	}
	if c.Panning() {
		t.Error("still panning after EndPan")
	}
	if got := c.Transform(); got.TranslateX != 15 || got.TranslateY != 30 {
		t.Errorf("transform = %+v, want (15, 30)", got)
	}
}
