package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// TestNewConfig documents the defaults; it fails if a default changes.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxDepth is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 2 {
			t.Errorf("expected MaxDepth to be 2, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default log level is ALL in console format", func(t *testing.T) {
		t.Parallel()
		if cfg.LogLevel != "ALL" || cfg.LogFormat != "console" {
			t.Errorf("unexpected log defaults %q/%q", cfg.LogLevel, cfg.LogFormat)
		}
	})

	t.Run("rate limiting and clean mode are off", func(t *testing.T) {
		t.Parallel()
		if cfg.RateLimit != 0 || cfg.Clean || cfg.KeepQuery {
			t.Errorf("unexpected defaults %+v", cfg)
		}
	})

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"depth zero is valid", func(c *Config) { c.MaxDepth = 0 }, nil},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidDepth},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"negative concurrency", func(c *Config) { c.Concurrency = -2 }, ErrInvalidConcurrency},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, ErrInvalidRateLimit},
		{"rate limit without burst", func(c *Config) { c.RateLimit = 5; c.Burst = 0 }, ErrInvalidBurst},
		{"burst ignored without rate limit", func(c *Config) { c.Burst = 0 }, nil},
		{"negative max body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"proxy without port", func(c *Config) { c.ProxyAddress = "127.0.0.1" }, ErrInvalidProxyAddress},
		{"proxy with bad port", func(c *Config) { c.ProxyAddress = "127.0.0.1:99999" }, ErrInvalidProxyAddress},
		{"valid proxy", func(c *Config) { c.ProxyAddress = "127.0.0.1:9050" }, nil},
		{"lowercase log level", func(c *Config) { c.LogLevel = "info" }, nil},
		{"unknown log level", func(c *Config) { c.LogLevel = "DEBUG" }, ErrInvalidLogLevel},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"save without db dir", func(c *Config) { c.SaveToDB = true; c.DBDir = "" }, ErrNoDBDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFileSeeds(t *testing.T) {
	t.Parallel()

	f := &File{URLs: []string{" https://example.com ", "", "http://localhost:8000", "https://example.com", "   "}}
	want := []string{"https://example.com", "http://localhost:8000"}
	if got := f.Seeds(); !slices.Equal(got, want) {
		t.Errorf("Seeds() = %v, want %v", got, want)
	}

	var nilFile *File
	if got := nilFile.Seeds(); got != nil {
		t.Errorf("nil File should have no seeds, got %v", got)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads urls list", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `urls:
  - https://example.com
  - http://test-webserver:8000
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://example.com", "http://test-webserver:8000"}
		if !slices.Equal(cfg.URLs, want) {
			t.Errorf("URLs = %v, want %v", cfg.URLs, want)
		}
	})

	t.Run("missing urls key yields empty list", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("other: value\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URLs == nil || len(cfg.URLs) != 0 {
			t.Errorf("expected empty non-nil URLs, got %#v", cfg.URLs)
		}
	})

	t.Run("returns LoadError for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte(`urls: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("expected LoadError, got %v", err)
		}
		if le.Path != configPath || !strings.Contains(le.Error(), configPath) {
			t.Errorf("LoadError should name the file: %v", le)
		}
	})

	t.Run("returns LoadError for wrong type", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("urls: just-a-string\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		_, err := LoadConfigFile(configPath)
		var le *LoadError
		if !errors.As(err, &le) {
			t.Errorf("expected LoadError, got %v", err)
		}
	})

	t.Run("returns ErrConfigNotFound for missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("explicit path that exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(configPath, []byte("urls: []\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)
		if err := os.WriteFile(DefaultConfigFile, []byte("urls: []\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile {
			t.Errorf("expected %s in cwd, got %q", DefaultConfigFile, got)
		}
	})

	t.Run("finds legacy location", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)
		if err := os.MkdirAll("crawler", 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join("crawler", DefaultConfigFile), []byte("urls: []\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		got := FindConfigFile("")
		if !strings.HasSuffix(got, filepath.Join("crawler", DefaultConfigFile)) {
			t.Errorf("expected legacy config path, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q should end with %q", name, dir, AppName)
		}
	}
}
