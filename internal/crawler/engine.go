package crawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/linkcrawl/internal/fetcher"
	"github.com/nao1215/linkcrawl/internal/log"
	"github.com/nao1215/linkcrawl/internal/model"
	"github.com/nao1215/linkcrawl/internal/urlnorm"
)

// Fetcher is what the engine needs from an HTTP fetcher.
// *fetcher.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) fetcher.Outcome
	Close() error
}

// FetcherFactory builds the fetcher for one crawl. It is called once per
// Crawl, and the fetcher is closed when that crawl returns.
type FetcherFactory func() (Fetcher, error)

// Engine runs crawls. It holds configuration only, so one Engine can run
// any number of crawls, sequentially or concurrently, each with fresh state.
type Engine struct {
	logger        log.Logger
	extractor     *Extractor
	newFetcher    FetcherFactory
	fetcherOpts   []fetcher.Option
	concurrency   int
	normalizeOpts []urlnorm.Option
	now           func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger shared by the engine, its fetchers and its extractor.
func WithLogger(logger log.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency caps the number of fetches in flight within a round.
// Zero or a negative value means one goroutine per scheduled URL.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithFetcherOptions passes options to the default fetcher factory.
func WithFetcherOptions(opts ...fetcher.Option) EngineOption {
	return func(e *Engine) {
		e.fetcherOpts = append(e.fetcherOpts, opts...)
	}
}

// WithFetcherFactory replaces the default *fetcher.Fetcher.
func WithFetcherFactory(factory FetcherFactory) EngineOption {
	return func(e *Engine) {
		e.newFetcher = factory
	}
}

// WithKeepQuery keeps query strings when results are cleaned.
func WithKeepQuery() EngineOption {
	return func(e *Engine) {
		e.normalizeOpts = append(e.normalizeOpts, urlnorm.WithKeepQuery())
	}
}

// WithClock overrides the clock used for result timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: log.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.extractor = NewExtractor(e.logger)

	if e.newFetcher == nil {
		fetcherOpts := append([]fetcher.Option{fetcher.WithLogger(e.logger)}, e.fetcherOpts...)
		e.newFetcher = func() (Fetcher, error) {
			f, err := fetcher.New(fetcherOpts...)
			if err != nil {
				return nil, err
			}
			return f, nil
		}
	}
	return e
}

// CrawlOption configures a single crawl.
type CrawlOption func(*crawlSettings)

type crawlSettings struct {
	clean bool
}

// WithClean returns the normalized projection of the visited set instead
// of the visited set itself.
func WithClean() CrawlOption {
	return func(s *crawlSettings) {
		s.clean = true
	}
}

// jobResult is the slot a worker fills for one scheduled entry.
type jobResult struct {
	entry FrontierEntry
	visit model.PageVisit
	links []string
}

// Crawl explores the link graph breadth-first from startURL, fetching
// pages up to maxDepth links away (the start URL is depth 0).
//
// An invalid startURL yields an empty result and a *model.ValidationError
// without any network access. A negative maxDepth yields
// model.ErrInvalidDepth. Failures of individual pages are recorded in the
// result and never abort the crawl. If ctx is cancelled, the crawl stops
// before the next round and returns what it has so far with ctx.Err().
func (e *Engine) Crawl(ctx context.Context, startURL string, maxDepth int, opts ...CrawlOption) (*model.CrawlResult, error) {
	var settings crawlSettings
	for _, opt := range opts {
		opt(&settings)
	}

	result := model.NewCrawlResult(startURL, maxDepth, settings.clean)
	result.StartedAt = e.now()
	defer func() { result.FinishedAt = e.now() }()

	if !urlnorm.IsValid(startURL) {
		err := &model.ValidationError{URL: startURL, Reason: "missing scheme or host"}
		e.logger.Error("invalid start URL", "url", startURL, "error", err)
		return result, err
	}
	if maxDepth < 0 {
		return result, fmt.Errorf("%w: %d", model.ErrInvalidDepth, maxDepth)
	}

	f, err := e.newFetcher()
	if err != nil {
		return result, fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer f.Close()

	visited := make(visitedSet)
	queue := newFrontier(FrontierEntry{URL: startURL, Depth: 0})

	for !queue.empty() {
		if err := ctx.Err(); err != nil {
			e.finish(result, visited)
			return result, err
		}

		jobs := e.schedule(queue.drain(), maxDepth, visited)
		if len(jobs) == 0 {
			continue
		}
		result.Stats.Rounds++

		for _, r := range e.runRound(ctx, f, jobs) {
			result.Record(r.visit)
			for _, link := range r.links {
				if !visited.has(urlnorm.Key(link)) {
					queue.push(link, r.entry.Depth+1)
				}
			}
		}
	}

	e.finish(result, visited)
	return result, ctx.Err()
}

// schedule filters a drained batch and marks the survivors visited.
// Marking happens here, before dispatch, so that a URL that appears twice
// in one batch is fetched once.
func (e *Engine) schedule(batch []FrontierEntry, maxDepth int, visited visitedSet) []FrontierEntry {
	jobs := make([]FrontierEntry, 0, len(batch))
	for _, entry := range batch {
		if entry.Depth > maxDepth {
			continue
		}
		key := urlnorm.Key(entry.URL)
		if visited.has(key) {
			continue
		}
		visited.mark(key)
		e.logger.Header("crawling", "url", entry.URL, "depth", entry.Depth)
		jobs = append(jobs, entry)
	}
	return jobs
}

// runRound fetches every job concurrently and waits for all of them.
// Results come back in job order.
func (e *Engine) runRound(ctx context.Context, f Fetcher, jobs []FrontierEntry) []jobResult {
	results := make([]jobResult, len(jobs))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = e.fetchAndExtract(ctx, f, job)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers record failures in their slot

	return results
}

// fetchAndExtract handles one page. A failed fetch yields no links.
func (e *Engine) fetchAndExtract(ctx context.Context, f Fetcher, job FrontierEntry) jobResult {
	out := f.Fetch(ctx, job.URL)
	visit := model.PageVisit{
		URL:        job.URL,
		Depth:      job.Depth,
		Outcome:    out.Kind,
		StatusCode: out.Status,
	}
	if !out.OK() {
		if out.Err != nil {
			visit.Error = out.Err.Error()
		}
		return jobResult{entry: job, visit: visit}
	}

	links := e.extractor.ExtractLinks(job.URL, out.Body)
	visit.Links = len(links)
	return jobResult{entry: job, visit: visit, links: links}
}

// finish stores the final URL set in result.
func (e *Engine) finish(result *model.CrawlResult, visited visitedSet) {
	urls := visited.sorted()
	if !result.Clean {
		result.URLs = urls
		e.logger.Success("visited URLs", "start_url", result.StartURL, "count", len(urls))
		return
	}
	result.URLs = urlnorm.Clean(urls, result.StartURL, e.normalizeOpts...)
	e.logger.Success("cleaned unique URLs", "start_url", result.StartURL, "count", len(result.URLs))
}
