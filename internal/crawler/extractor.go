package crawler

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/linkcrawl/internal/log"
	"github.com/nao1215/linkcrawl/internal/urlnorm"
)

// Extractor finds hyperlinks in HTML documents.
type Extractor struct {
	logger log.Logger
}

// NewExtractor creates an Extractor that logs each accepted link at success level.
func NewExtractor(logger log.Logger) *Extractor {
	if logger == nil {
		logger = log.Nop()
	}
	return &Extractor{logger: logger}
}

// ExtractLinks returns the absolute, valid targets of every <a href> in body,
// resolved against sourceURL. Each link appears once, in document order.
// Hrefs that do not resolve to a URL with a scheme and host are dropped.
// A body without anchors yields an empty, non-nil slice.
func (e *Extractor) ExtractLinks(sourceURL string, body []byte) []string {
	links := make([]string, 0)

	// html.Parse follows the HTML5 error recovery rules and only fails on
	// read errors, which cannot happen with a bytes.Reader.
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		e.logger.Warning("failed to parse page", "url", sourceURL, "error", err)
		return links
	}

	seen := make(map[string]struct{})
	goquery.NewDocumentFromNode(root).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, err := urlnorm.Resolve(sourceURL, href)
		if err != nil || !urlnorm.IsValid(resolved) {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		e.logger.Success("found valid link", "url", resolved, "source", sourceURL)
		links = append(links, resolved)
	})
	return links
}
