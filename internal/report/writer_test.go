package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkcrawl/internal/model"
)

// createTestResult creates a result with one failure of each kind.
func createTestResult() *model.CrawlResult {
	r := model.NewCrawlResult("https://example.com", 2, false)
	r.ID = "run-1"
	r.StartedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.FinishedAt = r.StartedAt.Add(1500 * time.Millisecond)
	r.URLs = []string{"https://example.com", "https://example.com/a", "https://example.com/b"}
	r.Stats.Rounds = 2
	r.Record(model.PageVisit{URL: "https://example.com", Outcome: model.OutcomeSuccess, StatusCode: 200, Links: 3})
	r.Record(model.PageVisit{URL: "https://example.com/a", Depth: 1, Outcome: model.OutcomeHTTPError, StatusCode: 404, Error: "https://example.com/a: HTTP status 404"})
	r.Record(model.PageVisit{URL: "https://example.com/b", Depth: 1, Outcome: model.OutcomeTransportError, Error: "connection refused"})
	return r
}

func createTestComparison() *Comparison {
	older := model.NewCrawlResult("https://example.com", 1, false)
	older.ID = "old"
	older.URLs = []string{"https://example.com", "https://example.com/gone"}
	newer := model.NewCrawlResult("https://example.com", 1, false)
	newer.ID = "new"
	newer.URLs = []string{"https://example.com", "https://example.com/fresh"}
	return NewComparison(older, newer)
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header, summary, URLs and failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer holds %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"LINKCRAWL REPORT",
			"Start URL:   https://example.com",
			"Run ID:      run-1",
			"Status:      Complete with errors",
			"URLS: 3",
			"https://example.com/b",
			"FAILED FETCHES: 2",
			"404",
			"connection refused",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("empty result says no links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.NewCrawlResult("not a url", 0, false)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No links found during the crawl.") {
			t.Errorf("expected empty message\n%s", output)
		}
		if strings.Contains(output, "FAILED FETCHES") {
			t.Errorf("no failures section expected\n%s", output)
		}
	})

	t.Run("comparison lists added and removed URLs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "+ https://example.com/fresh") {
			t.Errorf("missing added URL\n%s", output)
		}
		if !strings.Contains(output, "- https://example.com/gone") {
			t.Errorf("missing removed URL\n%s", output)
		}
	})

	t.Run("comparison without changes", func(t *testing.T) {
		t.Parallel()

		r := createTestResult()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(NewComparison(r, r)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No changes between the two runs.") {
			t.Errorf("expected no-changes message\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(buf.String(), "}\n") {
			t.Error("expected trailing newline")
		}
		if strings.Contains(strings.TrimSpace(buf.String()), "\n") {
			t.Error("compact output should be a single line")
		}

		var got model.CrawlResult
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.StartURL != "https://example.com" || len(got.URLs) != 3 || got.Stats.HTTPErrors != 1 {
			t.Errorf("unexpected decoded result: %+v", got)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"start_url\"") {
			t.Errorf("expected indented output\n%s", buf.String())
		}
	})

	t.Run("empty result encodes empty arrays", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(model.NewCrawlResult("x", 0, true)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"urls":[]`) {
			t.Errorf("expected empty urls array, got %s", buf.String())
		}
	})

	t.Run("comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got struct {
			OlderID string        `json:"older_run_id"`
			NewerID string        `json:"newer_run_id"`
			Diff    model.URLDiff `json:"diff"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.OlderID != "old" || got.NewerID != "new" {
			t.Errorf("unexpected run ids %q/%q", got.OlderID, got.NewerID)
		}
		if len(got.Diff.Added) != 1 || len(got.Diff.Removed) != 1 || got.Diff.Unchanged != 1 {
			t.Errorf("unexpected diff %+v", got.Diff)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero length")
		}

		output := buf.String()
		for _, want := range []string{
			"# Linkcrawl Report",
			"## Summary",
			"## URLs (3)",
			"## Failed Fetches",
			"```mermaid",
			"https://example.com/a",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("clean result is labeled", func(t *testing.T) {
		t.Parallel()

		r := createTestResult()
		r.Clean = true
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "## URLs (cleaned) (3)") {
			t.Errorf("expected cleaned label\n%s", buf.String())
		}
	})

	t.Run("comparison sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "## Added") || !strings.Contains(output, "## Removed") {
			t.Errorf("expected added and removed sections\n%s", output)
		}
	})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"xml", FormatText, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.wantErr != errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			}
		})
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, ok := NewWriter(FormatJSON, &buf).(*JSONWriter); !ok {
		t.Error("expected JSONWriter")
	}
	if _, ok := NewWriter(FormatMarkdown, &buf).(*MarkdownWriter); !ok {
		t.Error("expected MarkdownWriter")
	}
	if _, ok := NewWriter(Format("other"), &buf).(*SimpleWriter); !ok {
		t.Error("expected SimpleWriter fallback")
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
	n, err := m.Write(createTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("total %d, want %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected output in both writers")
	}
}

func TestNewComparison_NilOlder(t *testing.T) {
	t.Parallel()

	newer := createTestResult()
	c := NewComparison(nil, newer)
	if c.StartURL != newer.StartURL || c.OlderID != "" {
		t.Errorf("unexpected comparison %+v", c)
	}
	if len(c.Diff.Added) != newer.Len() {
		t.Errorf("every URL should be added, got %v", c.Diff.Added)
	}
}
