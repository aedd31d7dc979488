// Package viewport maintains the pan/zoom transform of the atlas canvas.
//
// The [Controller] owns the authoritative [Transform] and mutates it
// synchronously. After each change it pushes the new value to a
// [RenderTarget], which updates the visual representation directly without
// rebuilding the scene.
//
// High-frequency input (pointer drags, wheel ticks) goes through a
// [Coalescer], which collapses runs of same-kind events to their latest
// event and applies the runs in arrival order once per frame. Intermediate
// events may be dropped; the settled state always matches applying the
// received events in order. Settle the coalescer before touching the
// controller directly.
package viewport
