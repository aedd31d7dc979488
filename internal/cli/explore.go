package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/viewport"
)

// Terminal cells stand in for screen pixels at a fixed size, so the
// controller works in the same units as the SVG view.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	// exploreMinScale lets the whole atlas fit a small terminal.
	exploreMinScale = 0.1

	panStep     = 4 // cells per key press
	searchLimit = 8
)

// =============================================================================
// Command
// =============================================================================

// exploreCommand creates the explore command running the terminal viewer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		src     sourceFlags
		lf      layoutFlags
		tags    []string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Pan and zoom the atlas in the terminal",
		Long: `Pan and zoom the atlas in the terminal.

Keys:
  arrows, hjkl   pan
  + / -          zoom about the center
  mouse          drag to pan, wheel to zoom about the pointer
  /              search; enter jumps to the selected match
  n / N          next or previous match
  r              reset the view
  q              quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			lf.apply(cmd, &opts.Layout)
			opts.Tags = toTags(tags)
			return c.runExplore(cmd.Context(), src, opts.Layout, opts.Tags, noCache)
		},
	}

	src.register(cmd)
	lf.register(cmd, c.Config.Layout)
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "only show projects with this tag (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, sf sourceFlags, lopts layout.Options, tags []atlas.Tag, noCache bool) error {
	src, err := c.newSource(sf)
	if err != nil {
		return err
	}
	opts := c.pipelineOptions()
	opts.Layout = lopts
	opts.Refresh = isLocal(src)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Fetching projects...")
	spinner.Start()
	projects, err := runner.Fetch(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch projects: %w", err)
	}
	projects = atlas.FilterByTags(projects, tags...)
	spinner.SetMessage(fmt.Sprintf("Laying out %d projects...", len(projects)))
	l, err := runner.ComputeLayout(ctx, projects, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	p := tea.NewProgram(newExploreModel(l), tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("explore: %w", err)
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

// frameMsg asks the model to flush coalesced pointer input.
type frameMsg struct{}

func frame() tea.Cmd {
	return tea.Tick(viewport.DefaultFrame, func(time.Time) tea.Msg { return frameMsg{} })
}

// exploreModel is the bubbletea model for the terminal atlas viewer.
type exploreModel struct {
	layout   layout.Layout
	projects []atlas.Project
	ctrl     *viewport.Controller
	queue    *viewport.Coalescer

	width, height int
	sized         bool
	ticking       bool

	input     textinput.Model
	searching bool
	results   []atlas.Project
	cursor    int
	selected  string
}

func newExploreModel(l layout.Layout) *exploreModel {
	ctrl := viewport.New(
		viewport.WithScaleBounds(exploreMinScale, viewport.DefaultMaxScale),
		viewport.WithFitOnReset(true),
	)
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search projects"
	in.CharLimit = 64

	var projects []atlas.Project
	for _, b := range l.Boxes {
		for _, it := range b.Items {
			projects = append(projects, it.Project)
		}
	}
	return &exploreModel{
		layout:   l,
		projects: projects,
		ctrl:     ctrl,
		queue:    viewport.NewCoalescer(ctrl),
		input:    in,
	}
}

func (m *exploreModel) Init() tea.Cmd { return nil }

// viewportSize is the canvas area in screen pixels. The bottom line is
// reserved for the status bar.
func (m *exploreModel) viewportSize() (float64, float64) {
	return float64(m.width) * cellWidth, float64(m.canvasRows()) * cellHeight
}

func (m *exploreModel) canvasRows() int {
	return max(m.height-1, 0)
}

func (m *exploreModel) reset() {
	m.queue.Settle()
	vw, vh := m.viewportSize()
	m.ctrl.Reset(m.layout.Width, m.layout.Height, vw, vh)
}

// pan shifts the canvas by whole cells.
func (m *exploreModel) pan(dc, dr int) {
	t := m.ctrl.Transform()
	t.TranslateX += float64(dc) * cellWidth
	t.TranslateY += float64(dr) * cellHeight
	m.ctrl.Set(t)
}

// locate centers the view on a project and highlights it.
func (m *exploreModel) locate(id string) bool {
	for _, b := range m.layout.Boxes {
		for _, it := range b.Items {
			if it.Project.ID == id {
				m.queue.Settle()
				vw, vh := m.viewportSize()
				m.ctrl.CenterOn(it.CanvasX, it.CanvasY, vw, vh)
				m.selected = id
				return true
			}
		}
	}
	return false
}

// schedule starts the frame loop if it is not already running.
func (m *exploreModel) schedule() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return frame()
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vw, vh := m.viewportSize()
		m.ctrl.SetViewport(vw, vh)
		if !m.sized {
			m.sized = true
			m.reset()
		}
		m.input.Width = max(m.width-24, 10)
		return m, nil

	case frameMsg:
		m.queue.Flush()
		if m.queue.Pending() {
			return m, frame()
		}
		m.ticking = false
		return m, nil

	case tea.MouseMsg:
		return m, m.updateMouse(msg)

	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *exploreModel) updateMouse(msg tea.MouseMsg) tea.Cmd {
	px, py := float64(msg.X)*cellWidth, float64(msg.Y)*cellHeight
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.queue.Wheel(-1, px, py)
		return m.schedule()
	case msg.Button == tea.MouseButtonWheelDown:
		m.queue.Wheel(1, px, py)
		return m.schedule()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.queue.StartPan(px, py)
	case msg.Action == tea.MouseActionMotion && m.ctrl.Panning():
		m.queue.Pan(px, py)
		return m.schedule()
	case msg.Action == tea.MouseActionRelease:
		m.queue.EndPan()
	}
	return nil
}

func (m *exploreModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.queue.Settle()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.pan(panStep, 0)
	case "right", "l":
		m.pan(-panStep, 0)
	case "up", "k":
		m.pan(0, panStep/2)
	case "down", "j":
		m.pan(0, -panStep/2)
	case "+", "=":
		m.ctrl.ZoomIn()
	case "-", "_":
		m.ctrl.ZoomOut()
	case "r":
		m.reset()
	case "esc":
		m.selected = ""
		m.results = nil
	case "/":
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case "n":
		m.step(1)
	case "N":
		m.step(-1)
	}
	return m, nil
}

func (m *exploreModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.searching = false
		m.input.Blur()
		return nil
	case "enter":
		m.searching = false
		m.input.Blur()
		if len(m.results) > 0 {
			m.locate(m.results[m.cursor].ID)
		}
		return nil
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return nil
	case "down", "ctrl+n":
		m.moveCursor(1)
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.results = atlas.Search(m.projects, m.layout.Categories, m.input.Value(), searchLimit)
	m.cursor = 0
	return cmd
}

func (m *exploreModel) moveCursor(d int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor = (m.cursor + d + len(m.results)) % len(m.results)
}

// step jumps to the next or previous search result.
func (m *exploreModel) step(d int) {
	if len(m.results) == 0 {
		return
	}
	m.moveCursor(d)
	m.locate(m.results[m.cursor].ID)
}

// =============================================================================
// View
// =============================================================================

var (
	exploreStatusStyle   = lipgloss.NewStyle().Foreground(colorGray)
	exploreSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// cell is one terminal character of the canvas.
type cell struct {
	r     rune
	color string
	bold  bool
}

// grid is the canvas drawn into terminal cells.
type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for i := range g.cells {
		g.cells[i] = make([]cell, cols)
		for j := range g.cells[i] {
			g.cells[i][j].r = ' '
		}
	}
	return g
}

func (g *grid) set(col, row int, r rune, color string, bold bool) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	g.cells[row][col] = cell{r: r, color: color, bold: bold}
}

func (g *grid) text(col, row int, s, color string, bold bool) {
	for _, r := range s {
		g.set(col, row, r, color, bold)
		col++
	}
}

// String renders the grid, styling runs of equal cells together.
func (g *grid) String() string {
	var b strings.Builder
	for i, line := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(line); j++ {
			if j < len(line) && line[j].color == line[start].color && line[j].bold == line[start].bold {
				continue
			}
			run := make([]rune, 0, j-start)
			for _, c := range line[start:j] {
				run = append(run, c.r)
			}
			b.WriteString(styleFor(line[start]).Render(string(run)))
			start = j
		}
	}
	return b.String()
}

func styleFor(c cell) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c.color != "" {
		s = s.Foreground(lipgloss.Color(c.color))
	}
	if c.bold {
		s = s.Bold(true).Reverse(true)
	}
	return s
}

func (m *exploreModel) View() string {
	if !m.sized {
		return "loading..."
	}
	g := newGrid(m.width, m.canvasRows())
	m.draw(g, m.ctrl.Transform())
	return g.String() + "\n" + m.statusLine()
}

// draw paints boxes and items visible under t.
func (m *exploreModel) draw(g *grid, t viewport.Transform) {
	toCell := func(x, y float64) (int, int) {
		sx, sy := t.ToScreen(x, y)
		return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
	}

	for _, b := range m.layout.Boxes {
		c0, r0 := toCell(b.X, b.Y)
		c1, r1 := toCell(b.X+b.Width, b.Y+b.Height)
		if c1 < 0 || r1 < 0 || c0 >= g.cols || r0 >= g.rows {
			continue
		}
		color := b.Category.Color
		for c := c0 + 1; c < c1; c++ {
			g.set(c, r0, '─', color, false)
			g.set(c, r1, '─', color, false)
		}
		for r := r0 + 1; r < r1; r++ {
			g.set(c0, r, '│', color, false)
			g.set(c1, r, '│', color, false)
		}
		g.set(c0, r0, '┌', color, false)
		g.set(c1, r0, '┐', color, false)
		g.set(c0, r1, '└', color, false)
		g.set(c1, r1, '┘', color, false)

		if title := fmt.Sprintf(" %s (%d) ", b.Category.Name, len(b.Items)); c1-c0 > 4 {
			g.text(c0+1, r0, clip(title, c1-c0-1), color, false)
		}

		// Labels grow with the zoom level up to the item size.
		room := int(b.ItemSize * t.Scale / cellWidth)
		for _, it := range b.Items {
			c, r := toCell(it.CanvasX, it.CanvasY)
			label := atlas.Initials(it.Project.Name)
			if room > utf8.RuneCountInString(label)+2 {
				label = clip(it.Project.Name, room)
			}
			n := utf8.RuneCountInString(label)
			g.text(c-n/2, r, label, "", it.Project.ID == m.selected)
		}
	}
}

func (m *exploreModel) statusLine() string {
	t := m.ctrl.Transform()
	zoom := fmt.Sprintf("%d%%", t.Percent())

	if m.searching {
		line := m.input.View()
		if len(m.results) > 0 {
			line += exploreStatusStyle.Render(fmt.Sprintf("  %d/%d ", m.cursor+1, len(m.results))) +
				exploreSelectedStyle.Render(m.results[m.cursor].Name)
		} else if m.input.Value() != "" {
			line += exploreStatusStyle.Render("  no matches")
		}
		return line
	}

	parts := []string{
		StyleTitle.Render(appName),
		fmt.Sprintf("%d projects", len(m.projects)),
		"zoom " + zoom,
	}
	if m.selected != "" {
		for _, p := range m.projects {
			if p.ID == m.selected {
				parts = append(parts, exploreSelectedStyle.Render(p.Name))
				break
			}
		}
	}
	parts = append(parts, "/ search  +/- zoom  r reset  q quit")
	return exploreStatusStyle.Render(strings.Join(parts, "  "))
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
