package atlas

import (
	"strings"
	"unicode"
)

// Search returns projects matching query, case-insensitively, against the
// name, the description and the category display name. Name matches come
// first; within each group record order is kept. An empty query matches
// nothing. limit <= 0 means no limit.
func Search(projects []Project, cats []Category, query string, limit int) []Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	idx := CategoryIndex(cats)

	var byName, other []Project
	for _, p := range projects {
		switch {
		case strings.Contains(strings.ToLower(p.Name), q):
			byName = append(byName, p)
		case strings.Contains(strings.ToLower(p.Description), q):
			other = append(other, p)
		default:
			name := p.Category
			if c, ok := idx[p.Category]; ok {
				name = c.Name
			}
			if strings.Contains(strings.ToLower(name), q) {
				other = append(other, p)
			}
		}
	}
	out := append(byName, other...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Initials returns up to two upper-cased initials from the first two words
// of name, used as an icon fallback.
func Initials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		r := []rune(w)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
