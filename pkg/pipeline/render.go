package pipeline

import (
	"fmt"

	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/render/nodelink"
)

// RenderFromLayout generates output artifacts in the requested formats.
// The SVG is drawn once and shared by the PNG and PDF conversions. With
// ViewNodeLink the SVG is the Graphviz rendering of the DOT view.
func RenderFromLayout(l layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	theme, _ := render.ParseTheme(opts.Theme)

	var svg []byte
	canvas := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		if opts.View == ViewNodeLink {
			var err error
			svg, err = nodelink.RenderSVG(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
			return svg, err
		}
		svg = render.RenderSVG(l, buildSVGOptions(theme, opts)...)
		return svg, nil
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, name := range opts.Formats {
		format, _ := render.ParseFormat(name)

		var data []byte
		var err error
		switch format {
		case render.FormatSVG:
			data, err = canvas()
		case render.FormatJSON:
			data, err = render.RenderJSON(l, render.WithJSONHighlight(opts.Highlight), render.WithJSONIndent())
		case render.FormatPNG:
			if data, err = canvas(); err == nil {
				data, err = render.ToPNG(data, opts.Scale)
			}
		case render.FormatPDF:
			if data, err = canvas(); err == nil {
				data, err = render.ToPDF(data)
			}
		case render.FormatDOT:
			data = []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[string(format)] = data
	}
	return artifacts, nil
}

func buildSVGOptions(theme render.Theme, opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithTheme(theme)}
	if opts.Highlight != "" {
		svgOpts = append(svgOpts, render.WithHighlight(opts.Highlight))
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, render.WithInteraction())
	}
	return svgOpts
}
