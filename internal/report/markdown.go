package report

import (
	"io"
	"strconv"

	"github.com/nao1215/linkcrawl/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs results in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeURLs(md, result)
	w.writeFailures(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteComparison outputs the URL changes between two runs in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Linkcrawl Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + c.StartURL + "`"},
			{"Older Run", runLabel(c.Older)},
			{"Newer Run", runLabel(c.Newer)},
			{"Added", strconv.Itoa(len(c.Diff.Added))},
			{"Removed", strconv.Itoa(len(c.Diff.Removed))},
			{"Unchanged", strconv.Itoa(c.Diff.Unchanged)},
		},
	})
	md.PlainText("")

	if !c.Diff.HasChanges() {
		md.Tip("No changes between the two runs.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	if len(c.Diff.Added) > 0 {
		md.H2("Added")
		md.PlainText("")
		md.BulletList(c.Diff.Added...)
		md.PlainText("")
	}
	if len(c.Diff.Removed) > 0 {
		md.H2("Removed")
		md.PlainText("")
		md.BulletList(c.Diff.Removed...)
		md.PlainText("")
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Linkcrawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Start URL", "`" + result.StartURL + "`"},
		{"Max Depth", strconv.Itoa(result.MaxDepth)},
		{"Clean", strconv.FormatBool(result.Clean)},
	}
	if !result.StartedAt.IsZero() {
		rows = append(rows,
			[]string{"Started", result.StartedAt.Format(timeLayout)},
			[]string{"Duration", result.Duration().String()},
		)
	}
	if result.ID != "" {
		rows = append(rows, []string{"Run ID", "`" + result.ID + "`"})
	}
	rows = append(rows, []string{"Status", statusText(result)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.CrawlResult) {
	s := result.Stats

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Rounds", strconv.Itoa(s.Rounds)},
			{"Pages fetched", strconv.Itoa(s.Dispatched)},
			{"Succeeded", strconv.Itoa(s.Succeeded)},
			{"HTTP errors", strconv.Itoa(s.HTTPErrors)},
			{"Transport errors", strconv.Itoa(s.TransportErrors)},
			{"Links extracted", strconv.Itoa(s.LinksFound)},
		},
	})
	md.PlainText("")

	if s.Dispatched > 0 {
		w.writePieChart(md, s)
	}

	switch {
	case s.Dispatched > 0 && s.Succeeded == 0:
		md.Cautionf("No page could be fetched. %d request(s) failed.", s.Dispatched)
	case s.HTTPErrors+s.TransportErrors > 0:
		md.Warningf("%d of %d fetch(es) failed.", s.HTTPErrors+s.TransportErrors, s.Dispatched)
	default:
		md.Note("Every fetched page was retrieved successfully.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.CrawlStats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)
	if s.Succeeded > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(s.Succeeded))
	}
	if s.HTTPErrors > 0 {
		chart.LabelAndIntValue("HTTP errors", uint64(s.HTTPErrors))
	}
	if s.TransportErrors > 0 {
		chart.LabelAndIntValue("Transport errors", uint64(s.TransportErrors))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeURLs(md *markdown.Markdown, result *model.CrawlResult) {
	title := "URLs"
	if result.Clean {
		title = "URLs (cleaned)"
	}
	md.H2(title + " (" + strconv.Itoa(result.Len()) + ")")
	md.PlainText("")

	if result.Len() == 0 {
		md.PlainText("No links found during the crawl.")
		md.PlainText("")
		return
	}
	md.BulletList(result.URLs...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	failures := result.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failed Fetches")
	md.PlainText("")

	rows := make([][]string, len(failures))
	for i, f := range failures {
		status := "-"
		if f.StatusCode != 0 {
			status = strconv.Itoa(f.StatusCode)
		}
		rows[i] = []string{
			f.URL,
			strconv.Itoa(f.Depth),
			status,
			truncateString(dashIfEmpty(f.Error), 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Status", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [linkcrawl](https://github.com/nao1215/linkcrawl)*")
}
