package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Attribute keys added by the sink.
const (
	envKey    = "env"
	hostKey   = "host"
	headerKey = "header"
)

// EnvironmentVariable names the variable that sets the env attribute.
const EnvironmentVariable = "ENVIRONMENT"

// DefaultEnvironment is used when EnvironmentVariable is unset.
const DefaultEnvironment = "development"

// Logger is the logging surface the crawler components depend on.
// Arguments after msg are slog-style alternating keys and values.
type Logger interface {
	Info(msg string, args ...any)
	Warning(msg string, args ...any)
	Error(msg string, args ...any)
	Success(msg string, args ...any)
	// Header marks the start of a unit of work. It is emitted at INFO.
	Header(msg string, args ...any)
}

// Format selects how the terminal output is rendered.
type Format string

const (
	// FormatConsole is colored, human-readable output rendered by zerolog.
	FormatConsole Format = "console"
	// FormatText is slog's key=value output.
	FormatText Format = "text"
	// FormatJSON is one JSON object per line.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for names it does not know.
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat converts a format name, case-insensitively, into a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatConsole, FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// HostInfo identifies where log records come from.
type HostInfo struct {
	Environment string
	Hostname    string
}

// DetectHost reads the environment name from ENVIRONMENT and the host name
// from the operating system.
func DetectHost() HostInfo {
	env := os.Getenv(EnvironmentVariable)
	if env == "" {
		env = DefaultEnvironment
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	return HostInfo{Environment: env, Hostname: hostname}
}

// Options configures a Sink.
type Options struct {
	// Level is the threshold. The zero value is LevelError.
	Level Level

	// Format of the terminal output. Empty means FormatConsole.
	Format Format

	// Output receives the terminal output. Nil means os.Stderr.
	Output io.Writer

	// File, when set, is opened in append mode and receives every record
	// as uncolored text in addition to Output.
	File string

	// Host overrides the detected environment and host name.
	Host *HostInfo

	// Now overrides the clock used to timestamp records.
	Now func() time.Time

	// NoColor disables colors in console output. Colors are also disabled
	// when Output is a file that is not a terminal.
	NoColor bool
}

// Sink is the Logger implementation. It is safe for concurrent use.
// Its lifecycle is New, any number of emits, then Close.
type Sink struct {
	handler slog.Handler
	level   Level
	now     func() time.Time

	mu     sync.Mutex
	file   *os.File
	closed bool
}

var _ Logger = (*Sink)(nil)

// New builds a sink from opts. It fails when the log file cannot be opened
// or the format is unknown.
func New(opts Options) (*Sink, error) {
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	host := DetectHost()
	if opts.Host != nil {
		host = *opts.Host
	}

	threshold := opts.Level.slogLevel()
	handlerOpts := &slog.HandlerOptions{Level: threshold, ReplaceAttr: replaceLevel}

	var terminal slog.Handler
	switch format {
	case FormatText:
		terminal = slog.NewTextHandler(out, handlerOpts)
	case FormatJSON:
		terminal = slog.NewJSONHandler(out, handlerOpts)
	default:
		terminal = newConsoleHandler(out, threshold, opts.NoColor || !isTerminal(out))
	}

	handlers := []slog.Handler{terminal}
	var file *os.File
	if opts.File != "" {
		file, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	}

	handler := newFanoutHandler(handlers...).WithAttrs([]slog.Attr{
		slog.String(envKey, host.Environment),
		slog.String(hostKey, host.Hostname),
	})

	return &Sink{
		handler: NewSecureHandler(handler),
		level:   opts.Level,
		now:     now,
		file:    file,
	}, nil
}

// Nop returns a sink that discards everything.
func Nop() *Sink {
	return &Sink{handler: slog.DiscardHandler, level: LevelError, now: time.Now}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Level returns the configured threshold.
func (s *Sink) Level() Level {
	return s.level
}

// Info logs a progress message.
func (s *Sink) Info(msg string, args ...any) {
	s.log(slog.LevelInfo, msg, args)
}

// Warning logs a recoverable anomaly.
func (s *Sink) Warning(msg string, args ...any) {
	s.log(slog.LevelWarn, msg, args)
}

// Error logs a failure.
func (s *Sink) Error(msg string, args ...any) {
	s.log(slog.LevelError, msg, args)
}

// Success logs a positive per-item event.
func (s *Sink) Success(msg string, args ...any) {
	s.log(slogLevelSuccess, msg, args)
}

// Header logs at INFO with header=true.
func (s *Sink) Header(msg string, args ...any) {
	s.log(slog.LevelInfo, msg, append([]any{headerKey, true}, args...))
}

func (s *Sink) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !s.handler.Enabled(ctx, level) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	r := slog.NewRecord(s.now(), level, msg, 0)
	r.Add(args...)
	_ = s.handler.Handle(ctx, r) //nolint:errcheck // a broken log writer must not stop the crawl
}

// Close flushes and closes the log file, if any. Events emitted after
// Close are dropped. Close is idempotent.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
