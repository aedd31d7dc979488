package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/profile"
)

// out receives all command output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorAccent = lipgloss.Color("99")  // Violet, close to the networks box
	colorGreen  = lipgloss.Color("35")  // Success
	colorYellow = lipgloss.Color("220") // Warnings
	colorRed    = lipgloss.Color("167") // Errors
	colorBlue   = lipgloss.Color("75")  // Links
	colorWhite  = lipgloss.Color("255") // Values
	colorGray   = lipgloss.Color("245") // Labels
	colorDim    = lipgloss.Color("240") // Muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for project and box names.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleTag         = lipgloss.NewStyle().Foreground(colorAccent)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSwatch  = "■"
	separator   = " · "
)

// =============================================================================
// Status Output
// =============================================================================

func emit(line string) {
	fmt.Fprintln(out, line)
}

func printSuccess(format string, args ...any) {
	emit(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	emit(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	emit(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	emit(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	emit("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file or published object.
func printFile(path string) {
	emit("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	emit(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	emit(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	emit("")
}

// =============================================================================
// Atlas Output
// =============================================================================

// atlasStats summarizes a computed canvas.
type atlasStats struct {
	Projects int
	Boxes    int
	Custom   int // boxes holding ad hoc categories
	Width    float64
	Height   float64
	Cached   bool
}

// statsOf collects the summary of l for n projects.
func statsOf(l layout.Layout, n int, cached bool) atlasStats {
	s := atlasStats{Projects: n, Boxes: len(l.Boxes), Width: l.Width, Height: l.Height, Cached: cached}
	for _, b := range l.Boxes {
		if b.Category.Custom {
			s.Custom++
		}
	}
	return s
}

// printStats prints a one-line canvas summary, e.g.
// "42 projects · 9 boxes · 1 custom · 1012×1840 · cached".
func printStats(s atlasStats) {
	parts := []string{
		StyleNumber.Render(fmt.Sprint(s.Projects)) + StyleDim.Render(" projects"),
		StyleNumber.Render(fmt.Sprint(s.Boxes)) + StyleDim.Render(" boxes"),
	}
	if s.Custom > 0 {
		parts = append(parts, StyleNumber.Render(fmt.Sprint(s.Custom))+StyleDim.Render(" custom"))
	}
	if s.Width > 0 && s.Height > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%.0f×%.0f", s.Width, s.Height)))
	}
	if s.Cached {
		parts = append(parts, styleCached.Render("cached"))
	}
	emit("  " + strings.Join(parts, StyleDim.Render(separator)))
}

func swatch(c atlas.Category) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(iconSwatch)
}

// printBoxes lists each box with its item count.
func printBoxes(l layout.Layout) {
	for _, b := range l.Boxes {
		line := "  " + swatch(b.Category) + " " + StyleValue.Render(b.Category.Name) + " " +
			StyleDim.Render(fmt.Sprintf("(%d)", len(b.Items)))
		if b.Category.Custom {
			line += StyleDim.Render(" new")
		}
		emit(line)
	}
}

// printProject prints a search hit: name and category, then the description,
// link and tags when present.
func printProject(p atlas.Project, c atlas.Category) {
	name := StyleTitle.Render(p.Name)
	if p.Emoji != "" {
		name = p.Emoji + " " + name
	}
	emit(name + "  " + swatch(c) + " " + StyleDim.Render(c.Name))
	if p.Description != "" {
		printDetail("%s", p.Description)
	}
	if p.URL != "" {
		emit("  " + StyleLink.Render(p.URL))
	}
	if len(p.Tags) > 0 {
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = styleTag.Render("#" + string(t))
		}
		emit("  " + strings.Join(tags, " "))
	}
}

// printProfile prints the outcome of a profile check.
func printProfile(url string, res profile.Result) {
	printKeyValue("URL", StyleLink.Render(url))
	printKeyValue("Status", string(res.Status))
	if res.StatusCode != 0 {
		printKeyValue("HTTP", fmt.Sprint(res.StatusCode))
	}
	if !res.Valid && res.Message != "" {
		printDetail("%s", res.Message)
	}
}

// printSubmission prints a queued submission and where it went.
func printSubmission(name, id, server string) {
	printKeyValue("Name", name)
	printKeyValue("ID", id)
	printKeyValue("Server", StyleLink.Render(server))
	printDetail("A moderator reviews submissions before they appear on the atlas.")
}
