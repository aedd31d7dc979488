// Package nodelink renders the atlas as a Graphviz diagram.
//
// # Overview
//
// Every category becomes a cluster drawn in its color, and every project a
// rounded node inside its category's cluster. There are no edges; Graphviz
// arranges the clusters side by side. The diagram is an alternative to the
// packed canvas when reviewing which projects landed in which category.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include the project's emoji and tags
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
