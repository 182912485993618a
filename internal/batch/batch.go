package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/linkcrawl/internal/log"
	"github.com/nao1215/linkcrawl/internal/model"
)

// DefaultConcurrency is the number of seeds crawled at once.
const DefaultConcurrency = 4

// CrawlFunc crawls a single seed. (*crawler.Engine).Crawl wrapped in a
// closure over depth and crawl options is the usual implementation.
type CrawlFunc func(ctx context.Context, seed string) (*model.CrawlResult, error)

// Item is the outcome of one seed.
type Item struct {
	// Index is the position of the seed in the input slice.
	Index int

	// Seed is the start URL.
	Seed string

	// Result is never nil, even when Err is set.
	Result *model.CrawlResult

	// Err is the error returned by the crawl, e.g. a *model.ValidationError.
	Err error
}

// Processor runs a CrawlFunc over many seeds.
type Processor struct {
	crawl       CrawlFunc
	concurrency int
	logger      log.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithConcurrency sets the maximum number of concurrent crawls.
// Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger for batch-level events.
func WithLogger(logger log.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a Processor.
func NewProcessor(crawl CrawlFunc, opts ...Option) *Processor {
	p := &Processor{
		crawl:       crawl,
		concurrency: DefaultConcurrency,
		logger:      log.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process crawls every seed and returns one Item per seed, in input order.
// A failing seed does not stop the others; its error is kept in its Item.
// The returned error is non-nil only when ctx was cancelled.
func (p *Processor) Process(ctx context.Context, seeds []string) ([]Item, error) {
	items := make([]Item, len(seeds))
	err := p.ProcessWithCallback(ctx, seeds, func(item Item) {
		// Each goroutine writes only its own slot.
		items[item.Index] = item
	})
	return items, err
}

// ProcessWithCallback crawls every seed and calls fn as each one finishes,
// which allows streaming reports. fn is called from the worker goroutine,
// so it must be safe for concurrent use. Seeds not started before ctx is
// cancelled are skipped and fn is not called for them.
func (p *Processor) ProcessWithCallback(ctx context.Context, seeds []string, fn func(Item)) error {
	p.logger.Info("starting batch", "total_seeds", len(seeds), "concurrency", p.concurrency)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p.logger.Info("crawling seed", "seed_url", seed, "index", i+1, "total", len(seeds))
			result, err := p.crawl(gctx, seed)
			if result == nil {
				result = model.NewCrawlResult(seed, 0, false)
			}
			if err != nil {
				// Recorded in the item; the other seeds continue.
				p.logger.Warning("seed crawl failed", "seed_url", seed, "error", err)
			}

			fn(Item{Index: i, Seed: seed, Result: result, Err: err})
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	p.logger.Info("batch complete", "total_seeds", len(seeds), "elapsed", time.Since(startTime))
	return err
}
