package render

import (
	"encoding/json"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/layout"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	version   string
	highlight string
	indent    bool
}

// WithJSONVersion records the record-set version the layout was built from.
func WithJSONVersion(v string) JSONOption { return func(r *jsonRenderer) { r.version = v } }

// WithJSONHighlight marks the selected project.
func WithJSONHighlight(id string) JSONOption { return func(r *jsonRenderer) { r.highlight = id } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Version    string           `json:"version,omitempty"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Placement  string           `json:"placement"`
	Highlight  string           `json:"highlight,omitempty"`
	Categories []atlas.Category `json:"categories"`
	Boxes      []jsonBox        `json:"boxes"`
}

type jsonBox struct {
	Category string     `json:"category"`
	Name     string     `json:"name"`
	Color    string     `json:"color"`
	Custom   bool       `json:"custom,omitempty"`
	Column   int        `json:"column"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	ItemSize float64    `json:"item_size"`
	Items    []jsonItem `json:"items"`
}

type jsonItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Glyph       string      `json:"glyph"`
	URL         string      `json:"url,omitempty"`
	GuideURL    string      `json:"guide_url,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	Description string      `json:"description,omitempty"`
	Tags        []atlas.Tag `json:"tags,omitempty"`
}

// RenderJSON encodes the layout geometry. Item coordinates are canvas
// coordinates of the tile center.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Version:    r.version,
		Width:      l.Width,
		Height:     l.Height,
		Placement:  l.Placement,
		Highlight:  r.highlight,
		Categories: l.Categories,
		Boxes:      make([]jsonBox, 0, len(l.Boxes)),
	}
	if out.Categories == nil {
		out.Categories = []atlas.Category{}
	}
	for _, b := range l.Boxes {
		jb := jsonBox{
			Category: b.Category.ID,
			Name:     b.Category.Name,
			Color:    b.Category.Color,
			Custom:   b.Category.Custom,
			Column:   b.Column,
			X:        b.X,
			Y:        b.Y,
			Width:    b.Width,
			Height:   b.Height,
			ItemSize: b.ItemSize,
			Items:    make([]jsonItem, 0, len(b.Items)),
		}
		for _, it := range b.Items {
			p := it.Project
			glyph := p.Emoji
			if glyph == "" {
				glyph = atlas.Initials(p.Name)
			}
			jb.Items = append(jb.Items, jsonItem{
				ID:          p.ID,
				Name:        p.Name,
				X:           it.CanvasX,
				Y:           it.CanvasY,
				Glyph:       glyph,
				URL:         p.URL,
				GuideURL:    p.GuideURL,
				ImageURL:    p.ImageURL,
				Description: p.Description,
				Tags:        p.Tags,
			})
		}
		out.Boxes = append(out.Boxes, jb)
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
