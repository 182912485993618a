// Package log is the leveled logger sink used by every linkcrawl component.
//
// The sink understands five levels, ordered from most to least severe:
// ERROR, WARNING, INFO, SUCCESS and ALL. An event is written when its level
// is at or above the configured threshold, so a sink configured with INFO
// drops SUCCESS events while ALL lets everything through.
//
// Internally the sink is a log/slog handler chain:
//
//	SecureHandler -> [host/env attrs] -> fanoutHandler -> console | text | json
//	                                                   -> text (log file)
//
// The console handler renders through zerolog's ConsoleWriter; the text
// and json formats use slog's own handlers.
//
// # Security Features
//
// SecureHandler masks sensitive values before they reach any output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Values that look like credentials (bearer tokens, JWTs, API keys)
//   - Passwords embedded in URL user info and credential query parameters
//
// Crawled pages may link to URLs carrying credentials, and these URLs are
// logged, so masking happens for every attribute of every record.
//
// # Usage
//
//	sink, err := log.New(log.Options{Level: log.LevelInfo, File: "crawl.log"})
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	sink.Header("crawling", "url", u, "depth", 0)
//	sink.Success("found valid link", "url", link)
package log
