// Package report renders crawl results and archive comparisons.
//
// Three writers share the Writer interface:
//   - SimpleWriter: plain text with tables for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown for sharing and documentation
//
// NewWriter picks a writer by Format, so commands can switch output
// with a flag without knowing the concrete types.
package report
