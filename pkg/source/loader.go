package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/observability"
)

// DefaultStaleTime is how long fetched records are considered fresh.
const DefaultStaleTime = 2 * time.Minute

// Status is the state of the record set held by a [Loader].
type Status int

const (
	// StatusLoading means no fetch has completed yet.
	StatusLoading Status = iota
	// StatusReady means at least one fetch succeeded. Zero projects is a
	// valid ready state.
	StatusReady
	// StatusFailed means every fetch so far has failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// State is a snapshot of a [Loader].
type State struct {
	Status   Status
	Projects []atlas.Project
	// Err is the error of the latest fetch, if it failed. After a failure
	// that follows a success, Projects still holds the last good records.
	Err       error
	FetchedAt time.Time
	// Version is a content hash of Projects; it changes only when the
	// records change.
	Version string
}

// Loader fetches records from a source and keeps the latest good result.
// It is safe for concurrent use.
type Loader struct {
	src    Source
	name   string
	logger *log.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

// NewLoader creates a loader in the loading state.
func NewLoader(src Source, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	name := "source"
	if s, ok := src.(fmt.Stringer); ok {
		name = s.String()
	}
	return &Loader{src: src, name: name, logger: logger, now: time.Now}
}

// State returns the current snapshot.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Refresh fetches once and reports whether the record set changed.
// Duplicate ids are dropped, keeping the first record.
func (l *Loader) Refresh(ctx context.Context) (bool, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, l.name)
	start := l.now()

	projects, err := l.src.Fetch(ctx)
	if err != nil {
		hooks.OnFetchComplete(ctx, l.name, 0, l.now().Sub(start), err)
		l.mu.Lock()
		l.state.Err = err
		if l.state.Status != StatusReady {
			l.state.Status = StatusFailed
		}
		l.mu.Unlock()
		return false, err
	}

	projects, dropped := atlas.Dedupe(projects)
	if dropped > 0 {
		l.logger.Debug("dropped duplicate project ids", "count", dropped)
	}
	hooks.OnFetchComplete(ctx, l.name, len(projects), l.now().Sub(start), nil)
	version := Version(projects)

	l.mu.Lock()
	changed := l.state.Status != StatusReady || l.state.Version != version
	l.state = State{
		Status:    StatusReady,
		Projects:  projects,
		FetchedAt: l.now(),
		Version:   version,
	}
	l.mu.Unlock()
	return changed, nil
}

// Watch refreshes every interval until ctx is done, calling onChange after
// each refresh that changed the record set. Failures are logged and retried
// on the next tick.
func (l *Loader) Watch(ctx context.Context, interval time.Duration, onChange func(State)) {
	if interval <= 0 {
		interval = DefaultStaleTime
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			changed, err := l.Refresh(ctx)
			if err != nil {
				l.logger.Warn("background refresh failed", "error", err)
				continue
			}
			if changed && onChange != nil {
				onChange(l.State())
			}
		}
	}
}

// Version returns the content hash of a record set.
func Version(projects []atlas.Project) string {
	data, _ := json.Marshal(projects)
	return cache.Hash(data)[:16]
}
