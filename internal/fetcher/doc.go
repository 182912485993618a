// Package fetcher performs single HTTP GET requests for the crawler.
//
// A Fetcher owns one http.Client and therefore one connection pool. It is
// safe for concurrent use by the workers of a crawl round. Every call to
// Fetch returns an Outcome instead of an error: exactly one of Success,
// HTTPError or TransportError, so that callers can never see content and
// a failure at the same time.
//
// Before each request the Fetcher consults an optional RateLimiter. Two
// implementations backed by golang.org/x/time/rate are provided: a single
// global token bucket and a per-host limiter.
//
// Requests can be routed through a SOCKS5 proxy (for example a local Tor
// daemon) with WithProxy.
package fetcher
