// Package pkg provides the core libraries of the startup ecosystem atlas.
//
// # Overview
//
// Atlas places the organizations of a startup ecosystem on one canvas. Each
// project belongs to a category; categories become boxes sized by how many
// projects they hold, boxes are packed into fixed-width columns, and projects
// are scattered or gridded inside their box. The pkg directory is organized
// into four areas:
//
//  1. Domain: [atlas], [layout], [viewport]
//  2. Data: [source], [submit], [profile]
//  3. Output: [render], [render/nodelink], [publish]
//  4. Plumbing: [pipeline], [server], [cache], [config], [errors],
//     [httputil], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	Published sheet (CSV)
//	         ↓
//	    [source] package (fetch, parse, dedupe, keep last good data)
//	         ↓
//	    [layout] package (resolve categories, size boxes, pack, place items)
//	         ↓
//	    [render] package (SVG, JSON, PNG, PDF, DOT)
//	         ↓
//	    files, S3 via [publish], or HTTP via [server]
//
// New projects travel the other way: a [submit.Draft] is validated against the
// resolved categories and appended to a moderation queue (memory, SQLite,
// MongoDB or the submissions sheet). Nothing submitted appears on the atlas
// until a moderator copies it into the approved tab.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/atlas/pkg/layout"
//	    "github.com/matzehuels/atlas/pkg/render"
//	    "github.com/matzehuels/atlas/pkg/source"
//	)
//
//	// 1. Read records
//	projects, _ := source.FileSource{Path: "projects.csv"}.Fetch(context.Background())
//
//	// 2. Compute the canvas
//	l, _ := layout.Compute(projects, layout.DefaultOptions())
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(l, render.WithInteraction())
//
// [pipeline.Runner] wraps the same steps with caching and is what the CLI and
// the server use.
//
// # Main Packages
//
// [atlas] - Projects, tags, the fixed base categories, ad hoc category
// resolution and search.
//
// [layout] - Box sizing, shortest-column packing and item placement (grid,
// scatter and rejection sampling), all deterministic for a given record set.
//
// [viewport] - Pan and zoom state with scale clamping, anchor-preserving zoom
// and per-frame input coalescing.
//
// [source] - Record sources: the published sheet CSV, local exports, a caching
// wrapper and a Loader that polls and keeps stale data on failure.
//
// [submit] - Draft validation and moderation queues.
//
// [profile] - Checks that a profile URL lives on an allowed domain and exists.
//
// [server] - HTTP API, rendered SVG and a websocket feed of layout updates.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	ATLAS_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache/...
//	ATLAS_TEST_MONGO_URI=mongodb://localhost go test ./pkg/submit/...
//
// [atlas]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/atlas
// [layout]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/layout
// [viewport]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/viewport
// [source]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/source
// [submit]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/submit
// [submit.Draft]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/submit#Draft
// [profile]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/profile
// [render]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/render/nodelink
// [publish]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/publish
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/pipeline#Runner
// [server]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/atlas/pkg/buildinfo
package pkg
