package atlas

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is a container that projects are grouped into.
type Category struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Color  string `json:"color" bson:"color"`
	Custom bool   `json:"custom,omitempty" bson:"custom,omitempty"`
}

var baseCategories = []Category{
	{ID: "networks", Name: "Networks", Color: "#3B82F6"},
	{ID: "coworking", Name: "Coworking", Color: "#A855F7"},
	{ID: "media-events", Name: "Media & Events", Color: "#EC4899"},
	{ID: "education", Name: "Education", Color: "#10B981"},
	{ID: "local-vcs", Name: "Local VCs", Color: "#F59E0B"},
	{ID: "global-vcs", Name: "Global VCs", Color: "#F97316"},
	{ID: "accelerators", Name: "Accelerators", Color: "#0EA5E9"},
	{ID: "corporate", Name: "Corporate", Color: "#8B5CF6"},
	{ID: "public-entities", Name: "Public Entities", Color: "#22C55E"},
	{ID: "transport", Name: "Transport", Color: "#EF4444"},
}

// Palette holds the colors assigned to ad hoc categories.
// None of them is used by a base category.
var Palette = []string{
	"#14B8A6", "#6366F1", "#D946EF", "#84CC16",
	"#F43F5E", "#06B6D4", "#EAB308", "#78716C",
	"#0D9488", "#7C3AED", "#DB2777", "#65A30D",
}

// BaseCategories returns a fresh copy of the fixed base categories in display order.
func BaseCategories() []Category {
	out := make([]Category, len(baseCategories))
	copy(out, baseCategories)
	return out
}

// IsBaseCategory reports whether id names one of the base categories.
func IsBaseCategory(id string) bool {
	for _, c := range baseCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ColorFor returns the palette color for an ad hoc category id.
func ColorFor(id string) string {
	return Palette[HashString(id)%uint32(len(Palette))]
}

// DisplayName derives a human label from a category id by capitalizing each
// hyphen-separated word: "quantum-labs" becomes "Quantum Labs".
func DisplayName(id string) string {
	words := strings.Split(id, "-")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		out = append(out, string(unicode.ToUpper(r))+w[size:])
	}
	return strings.Join(out, " ")
}

// NewAdHocCategory synthesizes the category for an id outside the base set.
func NewAdHocCategory(id string) Category {
	return Category{ID: id, Name: DisplayName(id), Color: ColorFor(id), Custom: true}
}

// ResolveCategories returns base followed by one ad hoc category per unseen
// category id, in order of first appearance in projects. base is not modified.
// Id matching is exact string equality.
func ResolveCategories(projects []Project, base []Category) []Category {
	out := make([]Category, 0, len(base)+4)
	seen := make(map[string]struct{}, len(base))
	for _, c := range base {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, p := range projects {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, NewAdHocCategory(p.Category))
	}
	return out
}

// CategoryIndex maps category ids to their entry in cats.
func CategoryIndex(cats []Category) map[string]Category {
	idx := make(map[string]Category, len(cats))
	for _, c := range cats {
		idx[c.ID] = c
	}
	return idx
}
