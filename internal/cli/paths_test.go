package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/source"
)

// clearAtlasEnv keeps the caller's environment out of config loading.
func clearAtlasEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envLogLevel, "ATLAS_SHEETS_CSV_URL", "ATLAS_REDIS_ADDR", "ATLAS_MONGO_URI",
		"GOOGLE_SERVICE_ACCOUNT_EMAIL", "GOOGLE_PRIVATE_KEY", "GOOGLE_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", "atlas")},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", "atlas")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if dir != tt.want {
				t.Errorf("cacheDir() = %q, want %q", dir, tt.want)
			}
		})
	}
}

func TestCLICacheDirFromConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := testCLI(t)
	want := c.Config.Cache.Dir
	if got, _ := c.cacheDir(); got != want {
		t.Errorf("cacheDir() = %q, want configured %q", got, want)
	}

	c.Config.Cache.Dir = ""
	if got, _ := c.cacheDir(); got != filepath.Join(xdg, appName) {
		t.Errorf("cacheDir() = %q, want XDG fallback", got)
	}
}

func TestLoadConfigFromXDG(t *testing.T) {
	clearAtlasEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := config.DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(xdg, "atlas", "config.toml") {
		t.Fatalf("DefaultPath() = %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "[source]\nfile = \"projects.csv\"\n\n[cache]\nbackend = \"memory\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCLI(t)
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Config.Path != path {
		t.Errorf("config path = %q, want %q", c.Config.Path, path)
	}
	if c.Config.Cache.Backend != config.CacheMemory {
		t.Errorf("cache backend = %q, want memory", c.Config.Cache.Backend)
	}
	src, err := c.newSource(sourceFlags{})
	if err != nil {
		t.Fatalf("newSource: %v", err)
	}
	if fs, ok := src.(source.FileSource); !ok || fs.Path != "projects.csv" {
		t.Errorf("source = %v, want the configured file", src)
	}
}

func TestLoadConfigEnvironment(t *testing.T) {
	clearAtlasEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ATLAS_SHEETS_CSV_URL", "https://sheets.example/pub?output=csv")

	c := testCLI(t)
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Config.Path != "" {
		t.Errorf("config path = %q, want none for a missing default file", c.Config.Path)
	}
	src, err := c.newSource(sourceFlags{})
	if err != nil {
		t.Fatalf("newSource: %v", err)
	}
	ss, ok := src.(*source.SheetsSource)
	if !ok || ss.URL != "https://sheets.example/pub?output=csv" {
		t.Errorf("source = %v, want the sheet from ATLAS_SHEETS_CSV_URL", src)
	}
}
