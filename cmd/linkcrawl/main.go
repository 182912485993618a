// Package main provides the entry point for the linkcrawl CLI.
//
// linkcrawl crawls a website breadth-first from a start URL and reports
// every URL it reached within the requested depth.
//
// Usage:
//
//	linkcrawl crawl https://example.com --depth 2
//	linkcrawl crawl --all
//
// See --help for all available options.
package main

func main() {
	Execute()
}
