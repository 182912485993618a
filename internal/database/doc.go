// Package database provides SQLite-based storage for crawl results.
//
// CrawlDB archives every saved crawl as a run. A run keeps the full result
// as JSON plus one row per result URL, so that history can be listed
// without decoding results and runs of the same seed can be compared.
//
// SQLite is used through modernc.org/sqlite, which needs no cgo. The
// database is a single file in the data directory and is opened in WAL
// mode.
package database
