// Package batch crawls several seed URLs concurrently.
//
// Each seed gets its own call to the crawl function, and since the crawl
// engine builds fresh state per call, no visited set or connection pool is
// shared between seeds. Concurrency across seeds is bounded with
// errgroup.SetLimit; concurrency within one seed is the engine's concern.
package batch
