// Package config loads atlas settings.
//
// Settings are resolved in three layers, later layers winning:
//
//  1. A TOML file, by default $XDG_CONFIG_HOME/atlas/config.toml
//  2. Environment variables (see [ApplyEnv])
//  3. Command-line flags, applied by the caller
//
// A missing default file is not an error; a missing explicit file is.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/profile"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/source"
	"github.com/matzehuels/atlas/pkg/submit"
)

const appName = "atlas"

// Queue backends.
const (
	QueueMemory = "memory"
	QueueSQLite = "sqlite"
	QueueMongo  = "mongo"
	QueueSheets = "sheets"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the full application configuration.
type Config struct {
	Source  SourceConfig   `toml:"source"`
	Layout  layout.Options `toml:"layout"`
	Render  RenderConfig   `toml:"render"`
	Server  ServerConfig   `toml:"server"`
	Submit  SubmitConfig   `toml:"submit"`
	Profile ProfileConfig  `toml:"profile"`
	Cache   CacheConfig    `toml:"cache"`
	Publish PublishConfig  `toml:"publish"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
	// Unknown lists keys in the file that matched no setting.
	Unknown []string `toml:"-"`
}

// SourceConfig selects where project records come from.
type SourceConfig struct {
	// CSVURL is the published CSV link of the approved sheet tab.
	CSVURL string `toml:"csv_url"`
	// File is a local CSV export; it takes precedence over CSVURL.
	File      string        `toml:"file"`
	StaleTime time.Duration `toml:"stale_time"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Theme       string   `toml:"theme"`
	Formats     []string `toml:"formats"`
	Interactive bool     `toml:"interactive"`
	Scale       float64  `toml:"scale"`
	Output      string   `toml:"output"`
	// View is "atlas" (default) or "nodelink".
	View string `toml:"view"`
}

// ServerConfig configures `atlas serve`.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	Metrics         bool          `toml:"metrics"`
}

// SubmitConfig selects the moderation queue.
type SubmitConfig struct {
	Queue      string              `toml:"queue"`
	SQLitePath string              `toml:"sqlite_path"`
	Mongo      submit.MongoOptions `toml:"mongo"`
	Sheets     SheetsConfig        `toml:"sheets"`
	// Server is the base URL `atlas submit` posts to.
	Server string `toml:"server"`
}

// SheetsConfig holds the service account used to append submissions.
type SheetsConfig struct {
	SpreadsheetID string `toml:"spreadsheet_id"`
	Email         string `toml:"service_account_email"`
	PrivateKey    string `toml:"private_key"`
}

// Options converts the settings for [submit.NewSheetsQueue].
func (s SheetsConfig) Options() submit.SheetsOptions {
	return submit.SheetsOptions{SpreadsheetID: s.SpreadsheetID, Email: s.Email, PrivateKey: s.PrivateKey}
}

// ProfileConfig configures profile URL validation.
type ProfileConfig struct {
	Domains []string      `toml:"domains"`
	Timeout time.Duration `toml:"timeout"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	// Prefix scopes all keys, keeping separate atlases apart in one store.
	Prefix string `toml:"prefix"`
}

// PublishConfig configures artifact uploads.
type PublishConfig struct {
	// Target is an s3://bucket/prefix URL.
	Target    string `toml:"target"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{StaleTime: source.DefaultStaleTime},
		Layout: layout.DefaultOptions(),
		Render: RenderConfig{Theme: "light", Formats: []string{"svg"}, Scale: 2, View: pipeline.ViewAtlas},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
		},
		Submit: SubmitConfig{
			Queue: QueueMemory,
			Mongo: submit.MongoOptions{Database: submit.DefaultMongoDatabase, Collection: submit.DefaultMongoCollection},
		},
		Profile: ProfileConfig{Domains: []string{profile.DefaultDomain}, Timeout: profile.DefaultTimeout},
		Cache:   CacheConfig{Backend: CacheFile},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/atlas/config.toml, falling back to
// ~/.config/atlas/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults and applies the environment.
// An empty path means [DefaultPath], which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			ApplyEnv(&cfg, os.LookupEnv)
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		cfg.Path = path
		for _, k := range md.Undecoded() {
			cfg.Unknown = append(cfg.Unknown, k.String())
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	ApplyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

// Parse decodes TOML from r over the defaults. The environment is not applied.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	for _, k := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, k.String())
	}
	return cfg, nil
}

// Encode writes cfg as TOML. Secrets are redacted.
func (c Config) Encode(w io.Writer) error {
	out := c
	if out.Submit.Sheets.PrivateKey != "" {
		out.Submit.Sheets.PrivateKey = "<redacted>"
	}
	if out.Cache.RedisPassword != "" {
		out.Cache.RedisPassword = "<redacted>"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ApplyEnv overrides settings from the environment:
//
//	ATLAS_SHEETS_CSV_URL          source.csv_url
//	GOOGLE_SERVICE_ACCOUNT_EMAIL  submit.sheets.service_account_email
//	GOOGLE_PRIVATE_KEY            submit.sheets.private_key (literal \n unescaped)
//	GOOGLE_SPREADSHEET_ID         submit.sheets.spreadsheet_id
//	ATLAS_REDIS_ADDR              cache.redis_addr (selects the redis backend)
//	ATLAS_MONGO_URI               submit.mongo.uri
//
// When the queue is still the in-memory default, complete Google credentials
// select the sheets queue and a Mongo URI selects the mongo queue.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) bool {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
			return true
		}
		return false
	}
	set("ATLAS_SHEETS_CSV_URL", &cfg.Source.CSVURL)
	set("GOOGLE_SERVICE_ACCOUNT_EMAIL", &cfg.Submit.Sheets.Email)
	set("GOOGLE_SPREADSHEET_ID", &cfg.Submit.Sheets.SpreadsheetID)
	if set("GOOGLE_PRIVATE_KEY", &cfg.Submit.Sheets.PrivateKey) {
		cfg.Submit.Sheets.PrivateKey = submit.UnescapePrivateKey(cfg.Submit.Sheets.PrivateKey)
	}
	if set("ATLAS_REDIS_ADDR", &cfg.Cache.RedisAddr) {
		cfg.Cache.Backend = CacheRedis
	}
	mongo := set("ATLAS_MONGO_URI", &cfg.Submit.Mongo.URI)

	if cfg.Submit.Queue == QueueMemory {
		switch {
		case cfg.Submit.Sheets.Options().Configured():
			cfg.Submit.Queue = QueueSheets
		case mongo:
			cfg.Submit.Queue = QueueMongo
		}
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	var errs []error
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("layout: %w", err))
	}
	if _, err := render.ParseTheme(c.Render.Theme); err != nil {
		errs = append(errs, fmt.Errorf("render.theme: %w", err))
	}
	for _, f := range c.Render.Formats {
		if _, err := render.ParseFormat(f); err != nil {
			errs = append(errs, fmt.Errorf("render.formats: %w", err))
		}
	}
	if v := c.Render.View; v != "" && v != pipeline.ViewAtlas && v != pipeline.ViewNodeLink {
		errs = append(errs, fmt.Errorf("unknown render.view %q", v))
	}
	if c.Source.StaleTime <= 0 {
		errs = append(errs, errors.New("source.stale_time must be positive"))
	}
	if c.Profile.Timeout <= 0 {
		errs = append(errs, errors.New("profile.timeout must be positive"))
	}

	switch c.Submit.Queue {
	case QueueMemory:
	case QueueSQLite:
		if c.Submit.SQLitePath == "" {
			errs = append(errs, errors.New("submit.sqlite_path is required for the sqlite queue"))
		}
	case QueueMongo:
		if c.Submit.Mongo.URI == "" {
			errs = append(errs, errors.New("submit.mongo.uri (or ATLAS_MONGO_URI) is required for the mongo queue"))
		}
	case QueueSheets:
		if !c.Submit.Sheets.Options().Configured() {
			errs = append(errs, errors.New("the sheets queue needs spreadsheet_id, service_account_email and private_key"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown submit.queue %q (want %s)", c.Submit.Queue,
			strings.Join([]string{QueueMemory, QueueSQLite, QueueMongo, QueueSheets}, ", ")))
	}

	if !slices.Contains([]string{CacheFile, CacheMemory, CacheRedis, CacheNone}, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
	}
	if c.Publish.Target != "" && !strings.HasPrefix(c.Publish.Target, "s3://") {
		errs = append(errs, fmt.Errorf("publish.target %q must be an s3:// URL", c.Publish.Target))
	}
	return errors.Join(errs...)
}
