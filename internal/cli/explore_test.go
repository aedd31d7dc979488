package cli

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/viewport"
)

func exploreFixture(t *testing.T) *exploreModel {
	t.Helper()
	projects := []atlas.Project{
		{ID: "p1", Name: "Launch Lab", Category: "accelerators"},
		{ID: "p2", Name: "Desk Club", Category: "coworking"},
		{ID: "p3", Name: "Seed Fund", Category: "local-vcs"},
		{ID: "p4", Name: "Lab Two", Category: "accelerators"},
	}
	l, err := layout.Compute(projects, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	m := newExploreModel(l)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 41})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreResetFitsCanvas(t *testing.T) {
	m := exploreFixture(t)
	tr := m.ctrl.Transform()
	vw, vh := m.viewportSize()
	if vw != 120*cellWidth || vh != 40*cellHeight {
		t.Fatalf("viewport = %vx%v", vw, vh)
	}
	if w := m.layout.Width * tr.Scale; w > vw+0.001 {
		t.Errorf("canvas width %v exceeds viewport %v", w, vw)
	}
	if h := m.layout.Height * tr.Scale; h > vh+0.001 {
		t.Errorf("canvas height %v exceeds viewport %v", h, vh)
	}
}

func TestExploreKeys(t *testing.T) {
	m := exploreFixture(t)
	start := m.ctrl.Transform()

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.ctrl.Transform(); got.TranslateX != start.TranslateX+panStep*cellWidth {
		t.Errorf("left: translateX = %v, want %v", got.TranslateX, start.TranslateX+panStep*cellWidth)
	}

	m.Update(runes("r"))
	if got := m.ctrl.Transform(); got != start {
		t.Errorf("reset = %+v, want %+v", got, start)
	}

	m.Update(runes("+"))
	if got := m.ctrl.Transform(); got.Scale <= start.Scale {
		t.Errorf("zoom in: scale %v not above %v", got.Scale, start.Scale)
	}
	m.Update(runes("-"))
	m.Update(runes("-"))
	if got := m.ctrl.Transform(); got.Scale >= start.Scale {
		t.Errorf("zoom out: scale %v not below %v", got.Scale, start.Scale)
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestExploreSearchCentersMatch(t *testing.T) {
	m := exploreFixture(t)

	m.Update(runes("/"))
	if !m.searching {
		t.Fatal("slash did not open search")
	}
	for _, r := range "seed" {
		m.Update(runes(string(r)))
	}
	if len(m.results) != 1 || m.results[0].ID != "p3" {
		t.Fatalf("results = %+v, want p3", m.results)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("enter did not close search")
	}
	if m.selected != "p3" {
		t.Errorf("selected = %q, want p3", m.selected)
	}

	var x, y float64
	for _, b := range m.layout.Boxes {
		for _, it := range b.Items {
			if it.Project.ID == "p3" {
				x, y = it.CanvasX, it.CanvasY
			}
		}
	}
	sx, sy := m.ctrl.Transform().ToScreen(x, y)
	vw, vh := m.viewportSize()
	if abs(sx-vw/2) > 0.001 || abs(sy-vh/2) > 0.001 {
		t.Errorf("match at screen (%v, %v), want center (%v, %v)", sx, sy, vw/2, vh/2)
	}
}

func TestExploreSearchCycle(t *testing.T) {
	m := exploreFixture(t)
	m.Update(runes("/"))
	for _, r := range "lab" {
		m.Update(runes(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.results) != 2 || m.selected != "p1" {
		t.Fatalf("results = %d, selected = %q", len(m.results), m.selected)
	}
	m.Update(runes("n"))
	if m.selected != "p4" {
		t.Errorf("n: selected = %q, want p4", m.selected)
	}
	m.Update(runes("n"))
	if m.selected != "p1" {
		t.Errorf("n wraps: selected = %q, want p1", m.selected)
	}
	m.Update(runes("N"))
	if m.selected != "p4" {
		t.Errorf("N: selected = %q, want p4", m.selected)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.selected != "" {
		t.Errorf("esc kept selection %q", m.selected)
	}
}

func TestExploreMouseCoalesced(t *testing.T) {
	m := exploreFixture(t)
	start := m.ctrl.Transform()

	m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	_, cmd := m.Update(tea.MouseMsg{X: 12, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if cmd == nil {
		t.Fatal("motion did not schedule a frame")
	}
	m.Update(tea.MouseMsg{X: 15, Y: 11, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if got := m.ctrl.Transform(); got != start {
		t.Error("transform changed before the frame")
	}

	m.Update(frameMsg{})
	got := m.ctrl.Transform()
	if got.TranslateX != start.TranslateX+5*cellWidth || got.TranslateY != start.TranslateY+cellHeight {
		t.Errorf("after frame translate = (%v, %v), want (%v, %v)",
			got.TranslateX, got.TranslateY, start.TranslateX+5*cellWidth, start.TranslateY+cellHeight)
	}
	if m.ticking {
		t.Error("frame loop still running with nothing pending")
	}

	m.Update(tea.MouseMsg{X: 15, Y: 11, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.ctrl.Panning() {
		t.Error("release did not end the pan")
	}

	m.Update(tea.MouseMsg{X: 60, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	m.Update(frameMsg{})
	if s := m.ctrl.Transform().Scale; s <= got.Scale {
		t.Errorf("wheel up: scale %v not above %v", s, got.Scale)
	}
}

func TestExploreKeysSettlePendingInput(t *testing.T) {
	wheel := tea.MouseMsg{X: 60, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}
	zoom := runes("+")

	framed := exploreFixture(t)
	framed.Update(wheel)
	framed.Update(frameMsg{})
	framed.Update(zoom)

	m := exploreFixture(t)
	m.Update(wheel)
	m.Update(zoom)
	if m.queue.Pending() {
		t.Error("input pending after a key press")
	}
	if got, want := m.ctrl.Transform(), framed.ctrl.Transform(); got != want {
		t.Errorf("transform = %+v, want %+v", got, want)
	}

	// A drag that starts while a wheel tick is queued grabs the zoomed canvas.
	m.Update(wheel)
	m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	before := m.ctrl.Transform()
	m.Update(tea.MouseMsg{X: 11, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(frameMsg{})
	after := m.ctrl.Transform()
	if after.Scale != before.Scale || math.Abs(after.TranslateX-before.TranslateX-cellWidth) > 1e-9 {
		t.Errorf("drag moved %+v to %+v, want one cell right at the same scale", before, after)
	}
}

func TestExploreView(t *testing.T) {
	m := exploreFixture(t)
	m.ctrl.Set(viewport.Transform{Scale: viewport.DefaultMaxScale})
	m.locate("p2")

	view := m.View()
	if !strings.Contains(view, "Desk Club") {
		t.Error("zoomed view does not show the full project name")
	}
	if !strings.Contains(view, "Coworking") {
		t.Error("view does not show the category title")
	}
	if lines := strings.Count(view, "\n") + 1; lines != 41 {
		t.Errorf("view has %d lines, want 41", lines)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Launch Lab", 20, "Launch Lab"},
		{"Launch Lab", 6, "Launc…"},
		{"Launch Lab", 1, "L"},
		{"Launch Lab", 0, ""},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.n); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
