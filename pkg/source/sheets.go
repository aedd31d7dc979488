package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/httputil"
)

// SheetsSource fetches a published spreadsheet tab as CSV.
type SheetsSource struct {
	// URL is the "publish to web" CSV link of the approved tab.
	URL    string
	Client *httputil.Client
	Logger *log.Logger

	now func() time.Time
}

// NewSheetsSource creates a source for the published CSV at csvURL.
// A nil client uses the httputil defaults; a nil logger uses log.Default().
func NewSheetsSource(csvURL string, client *httputil.Client, logger *log.Logger) *SheetsSource {
	if client == nil {
		client = httputil.NewClient(nil, nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SheetsSource{URL: csvURL, Client: client, Logger: logger, now: time.Now}
}

// String identifies the source in logs without exposing the full URL.
func (s *SheetsSource) String() string {
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return "sheet"
	}
	return "sheet:" + u.Host
}

// Key returns the full CSV URL.
func (s *SheetsSource) Key() string { return s.URL }

// Fetch downloads and parses the sheet.
//
// An unset URL is not an error: a warning is logged and the result is empty.
// Each request carries a cache-busting _cb parameter and Cache-Control:
// no-store so upstream caches never serve a stale tab.
func (s *SheetsSource) Fetch(ctx context.Context) ([]atlas.Project, error) {
	if s.URL == "" {
		s.Logger.Warn("sheet CSV URL not configured, returning no projects")
		return nil, nil
	}
	target, err := s.cacheBusted()
	if err != nil {
		return nil, err
	}

	body, err := s.Client.Get(ctx, target, map[string]string{"Cache-Control": "no-store"})
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}

	projects, stats, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse sheet CSV")
	}
	for _, c := range stats.UnknownCategories {
		s.Logger.Debug("unknown category, treating as custom", "category", c)
	}
	if stats.Skipped > 0 {
		s.Logger.Debug("skipped incomplete rows", "rows", stats.Skipped)
	}
	return projects, nil
}

func (s *SheetsSource) cacheBusted() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidURL, err, "sheet CSV URL")
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	q := u.Query()
	q.Set("_cb", strconv.FormatInt(now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
