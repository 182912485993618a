package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/linkcrawl/internal/model"
)

// SimpleWriter outputs results in a human-readable format for terminals.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the crawl summary, every result URL, and the failed fetches.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "LINKCRAWL REPORT")
	fmt.Fprintf(&sb, "Start URL:   %s\n", result.StartURL)
	fmt.Fprintf(&sb, "Max Depth:   %d\n", result.MaxDepth)
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "Started:     %s\n", result.StartedAt.Format(timeLayout))
		fmt.Fprintf(&sb, "Duration:    %s\n", result.Duration().Round(time.Millisecond))
	}
	if result.ID != "" {
		fmt.Fprintf(&sb, "Run ID:      %s\n", result.ID)
	}
	fmt.Fprintf(&sb, "Status:      %s\n\n", statusText(result))

	writeSection(&sb, "SUMMARY")
	sb.WriteString(statsTable(result.Stats))
	sb.WriteString("\n\n")

	title := "URLS"
	if result.Clean {
		title = "URLS (cleaned)"
	}
	writeSection(&sb, fmt.Sprintf("%s: %d", title, result.Len()))
	if result.Len() == 0 {
		sb.WriteString("No links found during the crawl.\n")
	}
	for _, u := range result.URLs {
		sb.WriteString("  ")
		sb.WriteString(u)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if failures := result.Failures(); len(failures) > 0 {
		writeSection(&sb, fmt.Sprintf("FAILED FETCHES: %d", len(failures)))
		sb.WriteString(failuresTable(failures))
		sb.WriteString("\n\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteComparison outputs the added and removed URLs between two runs.
func (w *SimpleWriter) WriteComparison(c *Comparison) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "LINKCRAWL COMPARISON")
	fmt.Fprintf(&sb, "Start URL:   %s\n", c.StartURL)
	fmt.Fprintf(&sb, "Older Run:   %s\n", runLabel(c.Older))
	fmt.Fprintf(&sb, "Newer Run:   %s\n\n", runLabel(c.Newer))

	t := newTable()
	t.AppendHeader(table.Row{"Added", "Removed", "Unchanged"})
	t.AppendRow(table.Row{len(c.Diff.Added), len(c.Diff.Removed), c.Diff.Unchanged})
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")

	if !c.Diff.HasChanges() {
		sb.WriteString("No changes between the two runs.\n")
		return w.output.Write([]byte(sb.String()))
	}
	for _, u := range c.Diff.Added {
		fmt.Fprintf(&sb, "  + %s\n", u)
	}
	for _, u := range c.Diff.Removed {
		fmt.Fprintf(&sb, "  - %s\n", u)
	}
	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", (70-len(title))/2))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

func statsTable(s model.CrawlStats) string {
	t := newTable()
	t.AppendHeader(table.Row{"Rounds", "Fetched", "OK", "HTTP Errors", "Transport Errors", "Links"})
	t.AppendRow(table.Row{s.Rounds, s.Dispatched, s.Succeeded, s.HTTPErrors, s.TransportErrors, s.LinksFound})
	return t.Render()
}

func failuresTable(failures []model.PageVisit) string {
	t := newTable()
	t.AppendHeader(table.Row{"URL", "Depth", "Status", "Error"})
	for _, f := range failures {
		status := "-"
		if f.StatusCode != 0 {
			status = fmt.Sprint(f.StatusCode)
		}
		t.AppendRow(table.Row{
			truncateString(f.URL, 60),
			f.Depth,
			status,
			truncateString(dashIfEmpty(f.Error), 60),
		})
	}
	return t.Render()
}

// runLabel describes an archived run for comparison headers.
func runLabel(r *model.CrawlResult) string {
	if r == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s (%s, %d URLs)", dashIfEmpty(r.ID), r.StartedAt.Format(timeLayout), r.Len())
}
