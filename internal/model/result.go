package model

import (
	"slices"
	"time"
)

// OutcomeKind tags how a single fetch ended.
type OutcomeKind string

const (
	// OutcomeSuccess means the server answered 200 and the body was read.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeHTTPError means the server answered with any other status.
	OutcomeHTTPError OutcomeKind = "http_error"

	// OutcomeTransportError means no usable response was obtained.
	OutcomeTransportError OutcomeKind = "transport_error"
)

// PageVisit records one dispatched fetch.
// A page appears here exactly once per crawl because URLs are marked
// visited before they are dispatched.
type PageVisit struct {
	// URL is the fetched URL as it was taken from the frontier.
	URL string `json:"url"`

	// Depth is the BFS level the URL was fetched at (the seed is 0).
	Depth int `json:"depth"`

	// Outcome tells whether the fetch succeeded.
	Outcome OutcomeKind `json:"outcome"`

	// StatusCode is the HTTP status when a response was received, 0 otherwise.
	StatusCode int `json:"status_code,omitempty"`

	// Links is the number of valid links extracted from the page.
	Links int `json:"links"`

	// Error is the failure text for failed fetches.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the visit produced no content.
func (v PageVisit) Failed() bool {
	return v.Outcome != OutcomeSuccess
}

// CrawlStats holds counters accumulated during one crawl.
type CrawlStats struct {
	Rounds          int `json:"rounds"`
	Dispatched      int `json:"dispatched"`
	Succeeded       int `json:"succeeded"`
	HTTPErrors      int `json:"http_errors"`
	TransportErrors int `json:"transport_errors"`
	LinksFound      int `json:"links_found"`
}

// CrawlResult is the outcome of one crawl invocation.
//
// URLs holds the visited set, sorted. In clean mode it instead holds the
// normalized projection of the visited set relative to StartURL. Every
// member passed URL validation when it was added.
type CrawlResult struct {
	// ID is the archive identifier. Empty until the result is saved.
	ID string `json:"id,omitempty"`

	StartURL string `json:"start_url"`
	MaxDepth int    `json:"max_depth"`
	Clean    bool   `json:"clean"`

	URLs  []string    `json:"urls"`
	Pages []PageVisit `json:"pages"`
	Stats CrawlStats  `json:"stats"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlResult creates an empty result for the given crawl parameters.
// URLs and Pages are non-nil so that JSON output shows [] rather than null.
func NewCrawlResult(startURL string, maxDepth int, clean bool) *CrawlResult {
	return &CrawlResult{
		StartURL: startURL,
		MaxDepth: maxDepth,
		Clean:    clean,
		URLs:     []string{},
		Pages:    []PageVisit{},
	}
}

// Record appends a page visit and updates the counters.
func (r *CrawlResult) Record(v PageVisit) {
	r.Pages = append(r.Pages, v)
	r.Stats.Dispatched++
	r.Stats.LinksFound += v.Links
	switch v.Outcome {
	case OutcomeSuccess:
		r.Stats.Succeeded++
	case OutcomeHTTPError:
		r.Stats.HTTPErrors++
	case OutcomeTransportError:
		r.Stats.TransportErrors++
	}
}

// Len returns the number of URLs in the result.
func (r *CrawlResult) Len() int {
	return len(r.URLs)
}

// Contains reports whether u is one of the result URLs.
// URLs is kept sorted, so this is a binary search.
func (r *CrawlResult) Contains(u string) bool {
	_, found := slices.BinarySearch(r.URLs, u)
	return found
}

// Failures returns the visits that produced no content, in dispatch order.
func (r *CrawlResult) Failures() []PageVisit {
	var failed []PageVisit
	for _, p := range r.Pages {
		if p.Failed() {
			failed = append(failed, p)
		}
	}
	return failed
}

// Duration returns how long the crawl ran. Zero if it has not finished.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
