package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/viewport"
)

func testLayout(t *testing.T) layout.Layout {
	t.Helper()
	projects := []atlas.Project{
		{ID: "fc", Name: "Founders Club", Category: "networks", Emoji: "🤝", URL: "https://fc.example", Description: "Dinners & talks"},
		{ID: "hub", Name: "Hub One <Coworking>", Category: "coworking"},
		{ID: "qw", Name: "Qubit Works", Category: "quantum-labs", Tags: []atlas.Tag{atlas.TagFree}},
	}
	l, err := layout.Compute(projects, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return l
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testLayout(t)))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`id="cat-networks"`,
		`id="cat-quantum-labs"`,
		`>Quantum Labs</text>`,
		`id="item-fc"`,
		`<a href="https://fc.example" target="_blank">`,
		`<title>Founders Club: Dinners &amp; talks</title>`,
		`>🤝</text>`,
		`>HO</text>`,
		`<title>Hub One &lt;Coworking&gt;</title>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "dimmed") || strings.Contains(svg, `id="viewport"`) {
		t.Error("plain render should not dim items or add a viewport group")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not closed")
	}
}

func TestRenderSVGHighlight(t *testing.T) {
	l := testLayout(t)
	svg := string(RenderSVG(l, WithHighlight("hub")))
	if !strings.Contains(svg, `class="item highlight" id="item-hub"`) {
		t.Error("highlighted item not marked")
	}
	if n := strings.Count(svg, `class="item dimmed"`); n != 2 {
		t.Errorf("dimmed items = %d, want 2", n)
	}

	svg = string(RenderSVG(l, WithHighlight("missing")))
	if strings.Contains(svg, "dimmed") {
		t.Error("unknown highlight id should not dim anything")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l := testLayout(t)
	tr := viewport.Transform{TranslateX: 10, TranslateY: -5, Scale: 1.5}
	svg := string(RenderSVG(l, WithTransform(tr), WithTheme(ThemeDark), WithInteraction(), WithoutNames()))

	if !strings.Contains(svg, `<g id="viewport" transform="`+tr.SVG()+`">`) {
		t.Error("viewport group missing")
	}
	if !strings.Contains(svg, ThemeDark.Background) {
		t.Error("dark background missing")
	}
	if !strings.Contains(svg, "<script") {
		t.Error("interaction script missing")
	}
	if strings.Contains(svg, `class="item-name"`) {
		t.Error("names rendered despite WithoutNames")
	}
}

func TestRenderJSON(t *testing.T) {
	l := testLayout(t)
	data, err := RenderJSON(l, WithJSONVersion("v1"), WithJSONHighlight("qw"))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Version != "v1" || out.Highlight != "qw" || out.Width != l.Width {
		t.Errorf("header = %+v", out)
	}
	if len(out.Boxes) != 3 || len(out.Categories) != 11 {
		t.Fatalf("boxes %d, categories %d", len(out.Boxes), len(out.Categories))
	}
	for _, b := range out.Boxes {
		for _, it := range b.Items {
			want, _ := l.Locate(it.ID)
			if it.X != want.X || it.Y != want.Y {
				t.Errorf("%s at (%v, %v), want %v", it.ID, it.X, it.Y, want)
			}
			if it.ID == "qw" && (it.Glyph != "QW" || !b.Custom) {
				t.Errorf("custom item = %+v in %+v", it, b)
			}
		}
	}
}

func TestRenderJSONEmpty(t *testing.T) {
	data, err := RenderJSON(layout.Layout{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"boxes":[]`) || !strings.Contains(string(data), `"categories":[]`) {
		t.Errorf("empty layout = %s", data)
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("SVG, png,svg,,dot")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != FormatSVG || got[1] != FormatPNG || got[2] != FormatDOT {
		t.Errorf("ParseFormats = %v", got)
	}
	if got, _ := ParseFormats(""); len(got) != 1 || got[0] != FormatSVG {
		t.Errorf("default formats = %v", got)
	}
	if _, err := ParseFormats("svg,gif"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v", err)
	}
	if FormatPDF.ContentType() != "application/pdf" || !FormatPNG.Binary() || FormatJSON.Binary() {
		t.Error("format metadata wrong")
	}
}

func TestParseTheme(t *testing.T) {
	for name, want := range map[string]string{"": "light", "Dark": "dark", "light": "light"} {
		th, err := ParseTheme(name)
		if err != nil || th.Name != want {
			t.Errorf("ParseTheme(%q) = %v, %v", name, th.Name, err)
		}
	}
	if _, err := ParseTheme("sepia"); err == nil {
		t.Error("unknown theme accepted")
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		label string
		width float64
		want  string
	}{
		{"Short", 100, "Short"},
		{"A very long organization name", 44, "A very.."},
		{"Ünïcödé Nämé Here", 22, "Ün.."},
		{"Tiny", 1, "T.."},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.label, tt.width, 10); got != tt.want {
			t.Errorf("TruncateLabel(%q, %v) = %q, want %q", tt.label, tt.width, got, tt.want)
		}
	}
	if fs := LabelFontSize("x", 1000); fs != fontSizeMax {
		t.Errorf("LabelFontSize clamps high: %v", fs)
	}
	if fs := LabelFontSize(strings.Repeat("x", 100), 10); fs != fontSizeMin {
		t.Errorf("LabelFontSize clamps low: %v", fs)
	}
}

func TestConvert(t *testing.T) {
	if !ConverterAvailable() {
		t.Skip("rsvg-convert not installed")
	}
	svg := RenderSVG(testLayout(t))
	pdf, err := ToPDF(svg)
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Error("not a PDF")
	}
	png, err := ToPNG(svg, 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Error("not a PNG")
	}
}
