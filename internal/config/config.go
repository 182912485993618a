package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/linkcrawl/internal/log"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkcrawl"

	// DefaultMaxDepth is how many links away from the seed a crawl goes.
	DefaultMaxDepth = 2

	// DefaultTimeout bounds each HTTP request, body included.
	DefaultTimeout = 10 * time.Second

	// DefaultLogLevel lets every event through, matching the interactive
	// tool this CLI replaces.
	DefaultLogLevel = "ALL"

	// DefaultLogFormat is colored console output.
	DefaultLogFormat = "console"

	// DefaultBatchSize is the number of seeds crawled at once with --all.
	DefaultBatchSize = 4

	// DefaultBurst is the token bucket size when a rate limit is set.
	DefaultBurst = 1

	// DefaultMaxBodySize limits how much of each page is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for a linkcrawl run.
// It is populated from CLI flags and passed down explicitly; nothing reads
// global state.
type Config struct {
	// StartURL is the seed given on the command line. Empty means the seed
	// is picked interactively from Seeds.
	StartURL string

	// MaxDepth is the maximum BFS depth. 0 fetches only the seed.
	MaxDepth int

	// Clean selects the normalized projection of the visited set.
	Clean bool

	// KeepQuery keeps query strings when cleaning.
	KeepQuery bool

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Concurrency caps in-flight fetches per round. 0 means unbounded.
	Concurrency int

	// RateLimit is the number of requests per second. 0 disables limiting.
	RateLimit float64

	// Burst is the token bucket size used with RateLimit.
	Burst int

	// PerHost applies RateLimit to each host separately instead of globally.
	PerHost bool

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UserAgent overrides Go's default User-Agent when set.
	UserAgent string

	// MaxBodySize is the number of body bytes read per page.
	MaxBodySize int64

	// LogLevel is one of ERROR, WARNING, INFO, SUCCESS, ALL.
	LogLevel string

	// LogFormat is one of console, text, json.
	LogFormat string

	// LogFile additionally writes every log record to this file.
	LogFile string

	// JSONReport and MarkdownReport select the report format. At most one
	// may be set; neither means the plain table report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// SaveToDB archives finished results in the SQLite database in DBDir.
	SaveToDB bool

	// DBDir is the directory of the archive database.
	// Defaults to the XDG data directory (~/.local/share/linkcrawl on Linux).
	DBDir string

	// All crawls every seed of the config file instead of picking one.
	All bool

	// BatchSize is the number of seeds crawled concurrently with All.
	BatchSize int

	// ConfigFilePath is an explicit configuration file. When empty,
	// FindConfigFile searches the default locations.
	ConfigFilePath string

	// Seeds are the candidate start URLs loaded from the configuration file.
	Seeds []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxDepth:    DefaultMaxDepth,
		Timeout:     DefaultTimeout,
		Burst:       DefaultBurst,
		MaxBodySize: DefaultMaxBodySize,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		BatchSize:   DefaultBatchSize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linkcrawl.
// On Linux: ~/.local/share/linkcrawl
// On macOS: ~/Library/Application Support/linkcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkcrawl.
// On Linux: ~/.config/linkcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found
// as one of the sentinel errors in errors.go.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		return ErrInvalidBurst
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ProxyAddress != "" && !isValidHostPort(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return ErrInvalidLogLevel
	}
	if _, err := log.ParseFormat(c.LogFormat); err != nil {
		return ErrInvalidLogFormat
	}
	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}
	return nil
}

func isValidHostPort(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
