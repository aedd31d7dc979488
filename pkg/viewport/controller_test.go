package viewport

import (
	"math"
	"sync"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func approxT(a, b Transform) bool {
	return approx(a.TranslateX, b.TranslateX) && approx(a.TranslateY, b.TranslateY) && approx(a.Scale, b.Scale)
}

func TestZoomInverse(t *testing.T) {
	tests := []struct {
		name   string
		start  Transform
		factor float64
		ax, ay float64
	}{
		{"identity", Identity, 1.5, 400, 300},
		{"translated", Transform{TranslateX: -120, TranslateY: 55, Scale: 0.8}, 1.2, 10, 990},
		{"shrink", Transform{TranslateX: 30, TranslateY: 30, Scale: 1.6}, 0.7, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Set(tt.start)
			c.Zoom(tt.factor, tt.ax, tt.ay)
			c.Zoom(1/tt.factor, tt.ax, tt.ay)
			if got := c.Transform(); !approxT(got, tt.start) {
				t.Errorf("after zoom and inverse: %+v, want %+v", got, tt.start)
			}
		})
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	c := New()
	c.Set(Transform{TranslateX: 50, TranslateY: -20, Scale: 1})
	before := c.Transform()
	cx, cy := before.ToCanvas(300, 200)

	c.Zoom(1.4, 300, 200)
	sx, sy := c.Transform().ToScreen(cx, cy)
	if !approx(sx, 300) || !approx(sy, 200) {
		t.Errorf("anchor moved to (%v, %v)", sx, sy)
	}
}

func TestZoomIgnoresBadFactors(t *testing.T) {
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		c := New()
		c.Zoom(f, 10, 10)
		if got := c.Transform(); got != Identity {
			t.Errorf("Zoom(%v) changed transform to %+v", f, got)
		}
	}
}

func TestWheelSaturatesAtMax(t *testing.T) {
	c := New()
	for range 100 {
		c.Wheel(-1, 500, 400)
		if s := c.Transform().Scale; s > DefaultMaxScale {
			t.Fatalf("scale overshot to %v", s)
		}
	}
	if s := c.Transform().Scale; s != DefaultMaxScale {
		t.Errorf("scale = %v, want exactly %v", s, DefaultMaxScale)
	}
}

func TestWheelSaturatesAtMin(t *testing.T) {
	c := New()
	for range 100 {
		c.Wheel(1, 0, 0)
	}
	if s := c.Transform().Scale; s != DefaultMinScale {
		t.Errorf("scale = %v, want exactly %v", s, DefaultMinScale)
	}
}

func TestZoomButtons(t *testing.T) {
	c := New(WithViewport(800, 600))
	c.ZoomIn()
	if s := c.Transform().Scale; !approx(s, DefaultZoomStep) {
		t.Errorf("ZoomIn scale = %v", s)
	}
	c.ZoomOut()
	if got := c.Transform(); !approxT(got, Identity) {
		t.Errorf("ZoomIn+ZoomOut = %+v, want identity", got)
	}
}

func TestCenterOn(t *testing.T) {
	tests := []struct {
		scale  float64
		x, y   float64
		vw, vh float64
	}{
		{1, 500, 300, 1280, 720},
		{0.5, 0, 0, 400, 400},
		{1.75, 812.5, 1033, 390, 844},
	}
	for _, tt := range tests {
		c := New()
		c.Set(Transform{Scale: tt.scale})
		c.CenterOn(tt.x, tt.y, tt.vw, tt.vh)
		sx, sy := c.Transform().ToScreen(tt.x, tt.y)
		if !approx(sx, tt.vw/2) || !approx(sy, tt.vh/2) {
			t.Errorf("CenterOn(%v,%v) -> screen (%v,%v), want (%v,%v)", tt.x, tt.y, sx, sy, tt.vw/2, tt.vh/2)
		}
		if c.Transform().Scale != tt.scale {
			t.Errorf("CenterOn changed scale")
		}
		first := c.Transform()
		c.CenterOn(tt.x, tt.y, tt.vw, tt.vh)
		if c.Transform() != first {
			t.Errorf("CenterOn not idempotent")
		}
	}
}

func TestReset(t *testing.T) {
	c := New()
	c.Set(Transform{TranslateX: 99, TranslateY: 99, Scale: 1.9})
	c.Reset(1048, 700, 1440, 900)
	want := Transform{TranslateX: (1440 - 1048) / 2.0, TranslateY: (900 - 700) / 2.0, Scale: 1}
	if got := c.Transform(); got != want {
		t.Errorf("Reset = %+v, want %+v", got, want)
	}
}

func TestResetFit(t *testing.T) {
	c := New(WithFitOnReset(true))
	c.Reset(2000, 1000, 1000, 1000)
	got := c.Transform()
	if got.Scale != 0.5 {
		t.Errorf("fit scale = %v, want 0.5", got.Scale)
	}
	if got.TranslateX != 0 || got.TranslateY != 250 {
		t.Errorf("fit translate = (%v, %v)", got.TranslateX, got.TranslateY)
	}

	c.Reset(100, 100, 1000, 1000)
	if s := c.Transform().Scale; s != DefaultMaxScale {
		t.Errorf("fit scale clamped = %v, want %v", s, DefaultMaxScale)
	}
}

func TestPan(t *testing.T) {
	c := New()
	c.Set(Transform{TranslateX: 10, TranslateY: 20, Scale: 1})

	c.PanTo(500, 500)
	if got := c.Transform(); got.TranslateX != 10 {
		t.Errorf("PanTo without StartPan moved canvas: %+v", got)
	}

	c.StartPan(100, 100)
	if !c.Panning() {
		t.Fatal("Panning() = false after StartPan")
	}
	c.PanTo(130, 80)
	c.PanTo(150, 90)
	got := c.Transform()
	if got.TranslateX != 60 || got.TranslateY != 10 {
		t.Errorf("after pan: %+v, want translate (60, 10)", got)
	}
	c.PanTo(150, 90)
	if c.Transform() != got {
		t.Error("repeated PanTo changed transform")
	}
	c.EndPan()
	c.PanTo(0, 0)
	if c.Transform() != got {
		t.Error("PanTo after EndPan changed transform")
	}
}

func TestSetClampsScale(t *testing.T) {
	c := New(WithScaleBounds(0.25, 4))
	c.Set(Transform{Scale: 10})
	if s := c.Transform().Scale; s != 4 {
		t.Errorf("scale = %v, want 4", s)
	}
	c.Set(Transform{Scale: -1})
	if s := c.Transform().Scale; s != 4 {
		t.Errorf("invalid Set applied, scale = %v", s)
	}
}

func TestRenderTargetReceivesChanges(t *testing.T) {
	var got []Transform
	c := New(WithRenderTarget(RenderFunc(func(tr Transform) { got = append(got, tr) })))
	c.Zoom(1.1, 0, 0)
	c.Zoom(100, 0, 0)
	c.Zoom(100, 0, 0) // already at max: no change, no push
	c.CenterOn(10, 10, 100, 100)

	if len(got) != 3 {
		t.Fatalf("render target called %d times, want 3", len(got))
	}
	if got[len(got)-1] != c.Transform() {
		t.Errorf("last pushed %+v, controller has %+v", got[len(got)-1], c.Transform())
	}
}

func TestControllerConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 200 {
				c.Wheel(float64(i%2*2-1), float64(j), float64(j))
			}
		}()
	}
	wg.Wait()
	s := c.Transform().Scale
	if s < DefaultMinScale || s > DefaultMaxScale {
		t.Errorf("scale %v out of bounds", s)
	}
}

func TestTransformHelpers(t *testing.T) {
	tr := Transform{TranslateX: 10, TranslateY: -5, Scale: 1.5}
	x, y := tr.ToCanvas(tr.ToScreen(42, 17))
	if !approx(x, 42) || !approx(y, 17) {
		t.Errorf("round trip = (%v, %v)", x, y)
	}
	if tr.Percent() != 150 {
		t.Errorf("Percent() = %d", tr.Percent())
	}
	if got := tr.SVG(); got != "translate(10.00 -5.00) scale(1.5000)" {
		t.Errorf("SVG() = %q", got)
	}
}
