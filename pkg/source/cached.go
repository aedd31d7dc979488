package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/observability"
)

// Cached serves records from a cache while they are fresh and falls through
// to the wrapped source otherwise.
type Cached struct {
	Source Source
	Cache  cache.Cache
	Key    string
	TTL    time.Duration
	Logger *log.Logger

	// Refresh bypasses the cache read; the fresh result is still stored.
	Refresh bool
}

// NewCached wraps src. The TTL defaults to [cache.RecordsTTL].
func NewCached(src Source, c cache.Cache, key string, logger *log.Logger) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{Source: src, Cache: c, Key: key, TTL: cache.RecordsTTL, Logger: logger}
}

// Fetch returns cached records or fetches and stores them.
func (c *Cached) Fetch(ctx context.Context) ([]atlas.Project, error) {
	hooks := observability.Cache()
	if !c.Refresh {
		if data, hit, err := c.Cache.Get(ctx, c.Key); err == nil && hit {
			var projects []atlas.Project
			if err := json.Unmarshal(data, &projects); err == nil {
				hooks.OnCacheHit(ctx, "records")
				c.Logger.Debug("records cache hit", "count", len(projects))
				return projects, nil
			}
		} else if err != nil {
			c.Logger.Warn("records cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, "records")
	}

	projects, err := c.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(projects); err == nil {
		if err := c.Cache.Set(ctx, c.Key, data, c.TTL); err != nil {
			c.Logger.Warn("records cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "records", len(data))
		}
	}
	return projects, nil
}
