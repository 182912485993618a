package config

import "strings"

// File represents the structure of the crawler-config.yml file.
//
//	urls:
//	  - https://example.com
//	  - http://localhost:8000
type File struct {
	// URLs lists the candidate seed URLs offered by the seed picker and
	// crawled by `crawl --all`.
	URLs []string `yaml:"urls"`
}

// Seeds returns the configured URLs with surrounding whitespace removed,
// blank entries dropped and duplicates removed, in file order.
func (f *File) Seeds() []string {
	if f == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(f.URLs))
	seeds := make([]string, 0, len(f.URLs))
	for _, u := range f.URLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		seeds = append(seeds, u)
	}
	return seeds
}
