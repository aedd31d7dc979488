package viewport

import (
	"math"
	"sync"
)

// Defaults match the web atlas zoom controls.
const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 2.0
	DefaultZoomStep = 1.15
	DefaultWheelIn  = 1.03
	DefaultWheelOut = 0.97
)

// Controller owns the pan/zoom transform of one view.
// It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	t Transform

	minScale, maxScale float64
	zoomStep           float64
	wheelIn, wheelOut  float64
	fitOnReset         bool

	panning          bool
	panOffX, panOffY float64

	viewW, viewH float64

	target RenderTarget
}

// Option configures a [Controller].
type Option func(*Controller)

// WithScaleBounds sets the allowed scale range.
func WithScaleBounds(minScale, maxScale float64) Option {
	return func(c *Controller) {
		if minScale > 0 && maxScale >= minScale {
			c.minScale, c.maxScale = minScale, maxScale
		}
	}
}

// WithZoomStep sets the factor used by ZoomIn and ZoomOut.
func WithZoomStep(step float64) Option {
	return func(c *Controller) {
		if step > 1 {
			c.zoomStep = step
		}
	}
}

// WithWheelSteps sets the factors applied per wheel event.
func WithWheelSteps(in, out float64) Option {
	return func(c *Controller) {
		if in > 0 && out > 0 {
			c.wheelIn, c.wheelOut = in, out
		}
	}
}

// WithRenderTarget registers the target that receives every new transform.
func WithRenderTarget(t RenderTarget) Option {
	return func(c *Controller) { c.target = t }
}

// WithFitOnReset makes Reset pick the scale that fits the canvas in the viewport.
func WithFitOnReset(fit bool) Option {
	return func(c *Controller) { c.fitOnReset = fit }
}

// WithViewport sets the initial viewport size.
func WithViewport(w, h float64) Option {
	return func(c *Controller) { c.viewW, c.viewH = w, h }
}

// New returns a controller at the identity transform.
func New(opts ...Option) *Controller {
	c := &Controller{
		t:        Identity,
		minScale: DefaultMinScale,
		maxScale: DefaultMaxScale,
		zoomStep: DefaultZoomStep,
		wheelIn:  DefaultWheelIn,
		wheelOut: DefaultWheelOut,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Bounds returns the allowed scale range.
func (c *Controller) Bounds() (minScale, maxScale float64) {
	return c.minScale, c.maxScale
}

// Viewport returns the last known viewport size.
func (c *Controller) Viewport() (w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewW, c.viewH
}

// SetViewport records the viewport size used by ZoomIn, ZoomOut and Reset.
func (c *Controller) SetViewport(w, h float64) {
	c.mu.Lock()
	c.viewW, c.viewH = w, h
	c.mu.Unlock()
}

// SetRenderTarget replaces the render target.
func (c *Controller) SetRenderTarget(t RenderTarget) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()
}

// Set replaces the transform, clamping its scale.
func (c *Controller) Set(t Transform) {
	c.update(func() {
		if !finite(t.TranslateX) || !finite(t.TranslateY) || !finite(t.Scale) || t.Scale <= 0 {
			return
		}
		t.Scale = c.clamp(t.Scale)
		c.t = t
	})
}

// StartPan begins a drag at the given pointer position.
func (c *Controller) StartPan(px, py float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panning = true
	c.panOffX = px - c.t.TranslateX
	c.panOffY = py - c.t.TranslateY
}

// PanTo moves the canvas so the point grabbed by StartPan follows the
// pointer. It does nothing unless a pan is active.
func (c *Controller) PanTo(px, py float64) {
	c.update(func() {
		if !c.panning {
			return
		}
		c.t.TranslateX = px - c.panOffX
		c.t.TranslateY = py - c.panOffY
	})
}

// EndPan stops the active drag.
func (c *Controller) EndPan() {
	c.mu.Lock()
	c.panning = false
	c.mu.Unlock()
}

// Panning reports whether a drag is active.
func (c *Controller) Panning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panning
}

// Zoom multiplies the scale by factor, clamped to the scale bounds, keeping
// the viewport point (ax, ay) fixed. Non-positive or non-finite factors are
// ignored.
func (c *Controller) Zoom(factor, ax, ay float64) {
	c.update(func() { c.zoom(factor, ax, ay) })
}

// ZoomIn zooms by the zoom step about the viewport center.
func (c *Controller) ZoomIn() {
	c.update(func() { c.zoom(c.zoomStep, c.viewW/2, c.viewH/2) })
}

// ZoomOut zooms by the inverse zoom step about the viewport center.
func (c *Controller) ZoomOut() {
	c.update(func() { c.zoom(1/c.zoomStep, c.viewW/2, c.viewH/2) })
}

// Wheel applies one wheel event at viewport point (ax, ay). Positive deltaY
// (scrolling down) zooms out.
func (c *Controller) Wheel(deltaY, ax, ay float64) {
	c.update(func() {
		factor := c.wheelIn
		if deltaY > 0 {
			factor = c.wheelOut
		}
		c.zoom(factor, ax, ay)
	})
}

// CenterOn translates the canvas so canvas point (x, y) sits at the center
// of a vw x vh viewport, keeping the current scale.
func (c *Controller) CenterOn(x, y, vw, vh float64) {
	c.update(func() {
		if !finite(x) || !finite(y) || !finite(vw) || !finite(vh) {
			return
		}
		c.viewW, c.viewH = vw, vh
		c.t.TranslateX = vw/2 - x*c.t.Scale
		c.t.TranslateY = vh/2 - y*c.t.Scale
	})
}

// Reset centers a cw x ch canvas in a vw x vh viewport at scale 1, or at the
// best-fit scale when the controller was built with WithFitOnReset.
func (c *Controller) Reset(cw, ch, vw, vh float64) {
	c.update(func() {
		if !finite(cw) || !finite(ch) || !finite(vw) || !finite(vh) {
			return
		}
		c.viewW, c.viewH = vw, vh
		scale := c.clamp(1)
		if c.fitOnReset && cw > 0 && ch > 0 && vw > 0 && vh > 0 {
			scale = c.clamp(min(vw/cw, vh/ch))
		}
		c.t = Transform{
			TranslateX: (vw - cw*scale) / 2,
			TranslateY: (vh - ch*scale) / 2,
			Scale:      scale,
		}
	})
}

// zoom must be called with c.mu held.
func (c *Controller) zoom(factor, ax, ay float64) {
	if !finite(factor) || factor <= 0 || !finite(ax) || !finite(ay) {
		return
	}
	old := c.t.Scale
	next := c.clamp(old * factor)
	if next == old {
		return
	}
	ratio := next / old
	c.t.TranslateX = ax - (ax-c.t.TranslateX)*ratio
	c.t.TranslateY = ay - (ay-c.t.TranslateY)*ratio
	c.t.Scale = next
}

func (c *Controller) clamp(s float64) float64 {
	return max(c.minScale, min(c.maxScale, s))
}

// update runs fn under the lock and pushes the result to the render target
// if the transform changed.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	before := c.t
	fn()
	after, target := c.t, c.target
	c.mu.Unlock()

	if target != nil && after != before {
		target.ApplyTransform(after)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
