package source

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/atlas/pkg/atlas"
)

// FileSource reads a local CSV export of the sheet.
type FileSource struct {
	Path string
}

// String returns the file path.
func (s FileSource) String() string { return "file:" + s.Path }

// Key returns the file path.
func (s FileSource) Key() string { return s.Path }

// Fetch opens and parses the file on every call.
func (s FileSource) Fetch(ctx context.Context) ([]atlas.Project, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	projects, _, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return projects, nil
}
