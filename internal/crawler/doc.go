// Package crawler implements the breadth-first crawl engine.
//
// # Architecture
//
// The Engine drives a crawl in synchronous rounds. Each round drains the
// whole frontier, drops entries that are too deep or already visited,
// marks the rest visited and fetches them concurrently. Once every fetch
// of the round has finished, the links extracted from each page are pushed
// onto the frontier one level deeper than that page. The crawl ends when a
// round leaves the frontier empty.
//
// # Components
//
//   - Engine: owns the round loop and the per-crawl state
//   - Extractor: turns an HTML body into the set of absolute, valid links
//   - frontier / visitedSet: the BFS queue and the deduplication set
//
// # Concurrency
//
// One control goroutine owns the frontier and the visited set. Workers only
// fetch and parse, and hand their links back through per-job result slots.
// The round barrier is an errgroup.Group Wait, optionally bounded with
// SetLimit.
//
// # Failure Policy
//
// A page that fails to fetch, for any reason, contributes zero links and is
// recorded in the result. No single failure aborts a round or the crawl.
//
// # Usage
//
//	engine := crawler.NewEngine(crawler.WithLogger(sink), crawler.WithConcurrency(8))
//	result, err := engine.Crawl(ctx, "https://example.com", 2, crawler.WithClean())
package crawler
