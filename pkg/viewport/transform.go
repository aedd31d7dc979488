package viewport

import "fmt"

// Transform maps canvas coordinates to screen coordinates:
// screen = canvas*Scale + Translate.
type Transform struct {
	TranslateX float64 `json:"x"`
	TranslateY float64 `json:"y"`
	Scale      float64 `json:"scale"`
}

// Identity is the transform with no translation and unit scale.
var Identity = Transform{Scale: 1}

// ToScreen converts a canvas point to screen coordinates.
func (t Transform) ToScreen(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// ToCanvas converts a screen point to canvas coordinates.
func (t Transform) ToCanvas(x, y float64) (float64, float64) {
	return (x - t.TranslateX) / t.Scale, (y - t.TranslateY) / t.Scale
}

// SVG returns the transform as an SVG transform attribute value.
func (t Transform) SVG() string {
	return fmt.Sprintf("translate(%.2f %.2f) scale(%.4f)", t.TranslateX, t.TranslateY, t.Scale)
}

// CSS returns the transform as a CSS transform value.
func (t Transform) CSS() string {
	return fmt.Sprintf("translate3d(%.2fpx, %.2fpx, 0) scale(%.4f)", t.TranslateX, t.TranslateY, t.Scale)
}

// Percent returns the scale as a rounded percentage, as shown in zoom controls.
func (t Transform) Percent() int {
	return int(t.Scale*100 + 0.5)
}

// RenderTarget receives every transform the controller produces.
type RenderTarget interface {
	ApplyTransform(Transform)
}

// RenderFunc adapts a function to [RenderTarget].
type RenderFunc func(Transform)

// ApplyTransform calls f(t).
func (f RenderFunc) ApplyTransform(t Transform) { f(t) }
