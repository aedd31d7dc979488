// Package server serves the atlas over HTTP.
//
// The server keeps one snapshot of the record set and its layout. A
// background refresher polls the source every stale time; when the records
// change the layout is recomputed and live clients connected to /api/live
// are told the new version.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/projects
//	GET  /api/layout
//	GET  /api/atlas.svg?highlight=<id>
//	GET  /api/search?q=&limit=
//	GET  /api/locate/{id}?vw=&vh=&scale=
//	POST /api/submit-project
//	POST /api/validate-profile
//	GET  /api/live
//	GET  /metrics
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/profile"
	"github.com/matzehuels/atlas/pkg/source"
	"github.com/matzehuels/atlas/pkg/submit"
)

// Options configures a [Server].
type Options struct {
	Layout      layout.Options
	Theme       string
	Interactive bool
	// StaleTime is the refresh interval. Zero means source.DefaultStaleTime.
	StaleTime time.Duration
	// ReadTimeout bounds reading request headers. Zero means ten seconds.
	ReadTimeout time.Duration
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server is the atlas HTTP server.
type Server struct {
	loader  *source.Loader
	runner  *pipeline.Runner
	submit  *submit.Service
	profile *profile.Validator
	hub     *Hub
	opts    Options
	logger  *log.Logger

	snap atomic.Pointer[snapshot]
}

// snapshot is an immutable view of one record set.
type snapshot struct {
	state  source.State
	layout layout.Layout
	// err is set when the layout could not be computed.
	err error
}

// New creates a server. submitter and validator may be nil, in which case
// their routes answer with a configuration error.
func New(loader *source.Loader, runner *pipeline.Runner, submitter *submit.Service, validator *profile.Validator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.StaleTime <= 0 {
		opts.StaleTime = source.DefaultStaleTime
	}
	if opts.Layout.ItemsPerRow == 0 {
		opts.Layout = layout.DefaultOptions()
	}
	if opts.Theme == "" {
		opts.Theme = pipeline.DefaultTheme
	}
	s := &Server{
		loader:  loader,
		runner:  runner,
		submit:  submitter,
		profile: validator,
		hub:     NewHub(opts.Logger),
		opts:    opts,
		logger:  opts.Logger,
	}
	if s.submit != nil && s.submit.Categories == nil {
		s.submit.Categories = s.categories
	}
	s.snap.Store(&snapshot{state: loader.State()})
	return s
}

// Hub returns the live update hub.
func (s *Server) Hub() *Hub { return s.hub }

// Refresh fetches once and rebuilds the snapshot. It reports whether the
// record set changed.
func (s *Server) Refresh(ctx context.Context) (bool, error) {
	changed, err := s.loader.Refresh(ctx)
	if err != nil {
		// Keep the last good layout; only the status and error move on.
		prev := s.snap.Load()
		next := *prev
		next.state = s.loader.State()
		s.snap.Store(&next)
		return false, err
	}
	if changed {
		s.rebuild(ctx, s.loader.State())
	}
	return changed, nil
}

// Run performs the initial fetch and then refreshes every stale time until
// ctx is done.
func (s *Server) Run(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial fetch failed", "error", err)
	}
	s.loader.Watch(ctx, s.opts.StaleTime, func(st source.State) {
		s.rebuild(ctx, st)
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}
	go s.Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving atlas", "addr", addr)

	select {
	case err := <-errc:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) rebuild(ctx context.Context, st source.State) {
	l, err := s.runner.ComputeLayout(ctx, st.Projects, pipeline.Options{Layout: s.opts.Layout})
	if err != nil {
		s.logger.Error("layout failed", "version", st.Version, "error", err)
	}
	s.snap.Store(&snapshot{state: st, layout: l, err: err})
	s.logger.Info("atlas updated", "version", st.Version, "projects", len(st.Projects), "boxes", len(l.Boxes))
	s.hub.Broadcast(Event{Type: EventLayout, Version: st.Version, Projects: len(st.Projects)})
}

func (s *Server) current() *snapshot { return s.snap.Load() }
