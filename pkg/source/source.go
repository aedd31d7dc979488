// Package source loads project records.
//
// A [Source] returns the full record list or a descriptive error. Layout and
// rendering depend only on this contract, so the spreadsheet can be replaced
// by any other backend without touching them.
//
// # Implementations
//
//   - [SheetsSource]: a published spreadsheet tab fetched as CSV over HTTP
//   - [FileSource]: a local CSV export
//   - [Func]: adapts a plain function
//   - [Cached]: wraps another source with a [cache.Cache]
//
// [Loader] tracks the state of the latest fetch so callers can tell
// "loading" and "failed" apart from a valid empty result.
package source

import (
	"context"
	"fmt"

	"github.com/matzehuels/atlas/pkg/atlas"
)

// Source fetches the current record set.
type Source interface {
	Fetch(ctx context.Context) ([]atlas.Project, error)
}

// Keyed is implemented by sources that can name their location for cache
// keys. Keys may contain secrets and are hashed before use.
type Keyed interface {
	Key() string
}

// KeyOf returns the cache identity of src: its Key, its String, or "source".
func KeyOf(src Source) string {
	switch s := src.(type) {
	case Keyed:
		return s.Key()
	case fmt.Stringer:
		return s.String()
	}
	return "source"
}

// Func adapts a function to [Source].
type Func func(ctx context.Context) ([]atlas.Project, error)

// Fetch calls f(ctx).
func (f Func) Fetch(ctx context.Context) ([]atlas.Project, error) { return f(ctx) }

// Static returns a source that always yields projects.
func Static(projects []atlas.Project) Source {
	return Func(func(context.Context) ([]atlas.Project, error) { return projects, nil })
}
