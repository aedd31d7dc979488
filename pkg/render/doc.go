// Package render turns a computed atlas layout into files.
//
// # Overview
//
// [RenderSVG] draws the canvas: one rounded box per category with a colored
// label and item count, and one tile per project showing its emoji (or
// initials) with the project name underneath. [WithHighlight] reproduces the
// search selection by dimming every other project, and [WithTransform] wraps
// the canvas in a pan/zoom group so a server can hand out a pre-positioned
// view.
//
// [RenderJSON] emits the same geometry for clients that draw the canvas
// themselves.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg := render.RenderSVG(l, render.WithTheme(render.ThemeDark))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the atlas as a Graphviz diagram with one
// cluster per category, useful for reviewing category membership at a glance.
//
// [nodelink]: github.com/matzehuels/atlas/pkg/render/nodelink
package render
