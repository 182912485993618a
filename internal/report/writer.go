package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkcrawl/internal/model"
)

// Writer renders crawl results to a destination.
type Writer interface {
	// Write outputs one crawl result.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)

	// WriteComparison outputs the URL changes between two archived runs.
	WriteComparison(c *Comparison) (int, error)
}

// Format selects a Writer implementation.
type Format string

const (
	// FormatText is the human-readable format.
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON.
	FormatJSON Format = "json"

	// FormatMarkdown is GitHub-flavored Markdown.
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat converts a format name to a Format. An empty name is text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return FormatText, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// NewWriter returns the writer for format. Unknown formats fall back to text.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// MultiWriter writes to multiple Writers in order.
// It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(c *Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(c)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Comparison pairs two archived runs of the same seed with their URL diff.
type Comparison struct {
	StartURL string             `json:"start_url"`
	Older    *model.CrawlResult `json:"-"`
	Newer    *model.CrawlResult `json:"-"`
	OlderID  string             `json:"older_run_id"`
	NewerID  string             `json:"newer_run_id"`
	Diff     model.URLDiff      `json:"diff"`
}

// NewComparison diffs newer against older. Older may be nil when the
// seed has only one archived run.
func NewComparison(older, newer *model.CrawlResult) *Comparison {
	c := &Comparison{
		Older: older,
		Newer: newer,
		Diff:  model.DiffURLs(older, newer),
	}
	if newer != nil {
		c.StartURL = newer.StartURL
		c.NewerID = newer.ID
	}
	if older != nil {
		c.OlderID = older.ID
		if c.StartURL == "" {
			c.StartURL = older.StartURL
		}
	}
	return c
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

const timeLayout = "2006-01-02 15:04:05 MST"

// statusText summarizes how a crawl went.
func statusText(result *model.CrawlResult) string {
	switch {
	case result.Stats.Dispatched == 0:
		return "Nothing crawled"
	case result.Stats.Succeeded == 0:
		return "Failed (no page could be fetched)"
	case result.Stats.HTTPErrors+result.Stats.TransportErrors > 0:
		return "Complete with errors"
	default:
		return "Complete"
	}
}

// dashIfEmpty keeps table cells readable when a value is missing.
func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
