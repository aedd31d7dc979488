package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/atlas/pkg/atlas"
)

// Column order of the published sheet.
const (
	colID = iota
	colName
	colCategory
	colDescription
	colURL
	colGuideURL
	colImageURL
	colEmoji
	colProductImages
	colTags
)

// Header is the header row written by [WriteCSV].
var Header = []string{"id", "name", "category", "description", "url", "guideUrl", "imageUrl", "emoji", "productImages", "tags"}

// ParseStats describes a parse.
type ParseStats struct {
	Rows    int // data rows read, header excluded
	Skipped int // malformed rows and rows missing id, name or category
	// UnknownCategories lists category ids outside the base set, in order
	// of first appearance.
	UnknownCategories []string
}

// maxLine bounds a single CSV line.
const maxLine = 1 << 20

// ParseCSV reads project records from CSV.
//
// The input is read one line at a time and every line is parsed on its own,
// so a quoted field never spans lines and a malformed line cannot swallow the
// rows after it. The first non-blank line is a header and is skipped. Fields
// are trimmed and empty fields become absent. Pipe-separated columns (product
// images, tags) are split and trimmed. Malformed rows and rows without id,
// name or category are skipped and counted; they never fail the parse.
func ParseCSV(r io.Reader) ([]atlas.Project, ParseStats, error) {
	var stats ParseStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		projects    []atlas.Project
		header      bool
		seenUnknown = make(map[string]bool)
	)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !header {
			header = true
			continue
		}
		rec, err := parseLine(line)
		if err == nil && blank(rec) {
			continue
		}
		stats.Rows++
		if err != nil {
			stats.Skipped++
			continue
		}
		p, ok := parseRow(rec)
		if !ok {
			stats.Skipped++
			continue
		}
		if !atlas.IsBaseCategory(p.Category) && !seenUnknown[p.Category] {
			seenUnknown[p.Category] = true
			stats.UnknownCategories = append(stats.UnknownCategories, p.Category)
		}
		projects = append(projects, p)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read line %d: %w", stats.Rows+2, err)
	}
	return projects, stats, nil
}

// parseLine splits one CSV line into fields.
func parseLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.Read()
}

func parseRow(rec []string) (atlas.Project, bool) {
	p := atlas.Project{
		ID:          field(rec, colID),
		Name:        field(rec, colName),
		Category:    field(rec, colCategory),
		Description: field(rec, colDescription),
		URL:         field(rec, colURL),
		GuideURL:    field(rec, colGuideURL),
		ImageURL:    field(rec, colImageURL),
		Emoji:       field(rec, colEmoji),
	}
	if p.ID == "" || p.Name == "" || p.Category == "" {
		return atlas.Project{}, false
	}
	if imgs := SplitList(field(rec, colProductImages)); len(imgs) > 0 {
		p.ProductImages = imgs[:min(len(imgs), atlas.MaxProductImages)]
	}
	for _, t := range SplitList(field(rec, colTags)) {
		p.Tags = append(p.Tags, atlas.Tag(strings.ToLower(t)))
	}
	return p, true
}

// SplitList splits a pipe-separated field, dropping empty items.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// lineBreaks flattens line breaks inside a field, since [ParseCSV] reads one
// record per line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// WriteCSV writes projects in the sheet's column order, header first. Line
// breaks inside fields become spaces.
func WriteCSV(w io.Writer, projects []atlas.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range projects {
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = string(t)
		}
		row := []string{
			p.ID, p.Name, p.Category, p.Description, p.URL, p.GuideURL, p.ImageURL, p.Emoji,
			strings.Join(p.ProductImages, "|"), strings.Join(tags, "|"),
		}
		for i := range row {
			row[i] = lineBreaks.Replace(row[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
