package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/viewport"
)

const itemInteractionCSS = `
    .item { transition: opacity 0.2s ease; }
    .item .tile { transition: stroke-width 0.2s ease; }
    .item:hover .tile, .item.highlight .tile { stroke-width: 3; }
    .item.peer .tile { stroke-width: 2.5; }
    .item.dimmed { opacity: 0.25; }
    .item-name { pointer-events: none; }
    a { cursor: pointer; }`

const itemInteractionJS = `
    function focusCategory(cat) {
      document.querySelectorAll('.item').forEach(el => el.classList.toggle('peer', el.dataset.category === cat));
    }
    document.querySelectorAll('.category').forEach(el => {
      el.addEventListener('mouseenter', () => focusCategory(el.dataset.category));
      el.addEventListener('mouseleave', () => focusCategory(''));
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme       Theme
	highlight   string
	transform   *viewport.Transform
	interactive bool
	names       bool
}

// WithTheme selects the neutral palette.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithHighlight emphasizes one project and dims all others.
func WithHighlight(projectID string) SVGOption {
	return func(r *svgRenderer) { r.highlight = projectID }
}

// WithTransform wraps the canvas in a group carrying t.
func WithTransform(t viewport.Transform) SVGOption {
	return func(r *svgRenderer) { r.transform = &t }
}

// WithInteraction embeds hover styles and a small script.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithoutNames omits the name label under each tile.
func WithoutNames() SVGOption { return func(r *svgRenderer) { r.names = false } }

// RenderSVG draws the layout.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{theme: ThemeLight, names: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.highlight != "" {
		if _, ok := l.Locate(r.highlight); !ok {
			r.highlight = ""
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&buf, `  <rect class="background" width="%.1f" height="%.1f" fill="%s"/>`+"\n", l.Width, l.Height, r.theme.Background)

	if r.transform != nil {
		fmt.Fprintf(&buf, `  <g id="viewport" transform="%s">`+"\n", r.transform.SVG())
	}
	for _, b := range l.Boxes {
		r.renderBox(&buf, b)
	}
	for _, b := range l.Boxes {
		for _, it := range b.Items {
			r.renderItem(&buf, b, it)
		}
	}
	if r.transform != nil {
		buf.WriteString("  </g>\n")
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", itemInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", itemInteractionJS)
	} else if r.highlight != "" {
		buf.WriteString("  <style>.item.dimmed { opacity: 0.25; }</style>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderBox(buf *bytes.Buffer, b layout.Box) {
	c := b.Category
	fmt.Fprintf(buf, `  <g class="category" id="cat-%s" data-category="%s">`+"\n", EscapeXML(c.ID), EscapeXML(c.ID))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="16" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-opacity="0.35"/>`+"\n",
		b.X, b.Y, b.Width, b.Height, c.Color, r.theme.BoxOpacity, c.Color)
	fmt.Fprintf(buf, `    <text class="category-label" x="%.1f" y="%.1f" font-family="sans-serif" font-size="14" font-weight="600" fill="%s">%s</text>`+"\n",
		b.X+16, b.Y+26, c.Color, EscapeXML(c.Name))
	fmt.Fprintf(buf, `    <text class="category-count" x="%.1f" y="%.1f" font-family="sans-serif" font-size="11" text-anchor="end" fill="%s">%d</text>`+"\n",
		b.X+b.Width-16, b.Y+26, r.theme.MutedText, len(b.Items))
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderItem(buf *bytes.Buffer, b layout.Box, it layout.Item) {
	p := it.Project
	s := b.ItemSize
	cx, cy := it.CanvasX, it.CanvasY

	class := "item"
	switch {
	case r.highlight == "":
	case r.highlight == p.ID:
		class += " highlight"
	default:
		class += " dimmed"
	}

	WrapURL(buf, p.URL, func() {
		fmt.Fprintf(buf, `  <g class="%s" id="item-%s" data-category="%s">`+"\n", class, EscapeXML(p.ID), EscapeXML(b.Category.ID))
		fmt.Fprintf(buf, "    <title>%s</title>\n", EscapeXML(tooltip(p)))
		fmt.Fprintf(buf, `    <rect class="tile" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
			cx-s/2, cy-s/2, s, s, s*0.25, r.theme.TileFill, b.Category.Color)

		glyph, size, color := p.Emoji, s*0.55, r.theme.Text
		if glyph == "" {
			glyph, size, color = atlas.Initials(p.Name), s*0.38, b.Category.Color
		}
		fmt.Fprintf(buf, `    <text class="glyph" x="%.1f" y="%.1f" font-family="sans-serif" font-size="%s" font-weight="600" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
			cx, cy, num(size), color, EscapeXML(glyph))

		if r.names {
			width := max(s*1.8, 40)
			fs := LabelFontSize(p.Name, width)
			fmt.Fprintf(buf, `    <text class="item-name" x="%.1f" y="%.1f" font-family="sans-serif" font-size="%s" text-anchor="middle" fill="%s">%s</text>`+"\n",
				cx, cy+s/2+fs+2, num(fs), r.theme.Text, EscapeXML(TruncateLabel(p.Name, width, fs)))
		}
		buf.WriteString("  </g>\n")
	})
}

func tooltip(p atlas.Project) string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + ": " + p.Description
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }
