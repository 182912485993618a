// Package model defines the data structures shared by the crawler, the
// reports and the archive.
//
// This package contains the following main types:
//   - CrawlResult: The outcome of one crawl invocation
//   - PageVisit: One dispatched fetch and what came of it
//   - CrawlStats: Counters accumulated while the crawl runs
//
// It also holds the error taxonomy (ValidationError, HTTPStatusError,
// TransportError and their sentinels) so that every layer can inspect
// failures with errors.Is and errors.As without importing each other.
//
// The models are serializable to JSON for report output and database storage.
package model
