// Package urlnorm validates, resolves and normalizes URLs for the crawler.
//
// Validity is purely syntactic: a URL is valid when it parses and carries
// both a scheme and a host. Nothing here touches the network.
//
// Two different identities are used:
//   - Key is the deduplication key of the visited set. It only drops the
//     fragment, so http://a/x and http://a/x#top are the same page.
//   - Normalize is the "clean" projection used for presenting results. It
//     also drops the query and lowercases scheme and host.
package urlnorm
