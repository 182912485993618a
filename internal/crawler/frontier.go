package crawler

import "slices"

// FrontierEntry is a URL waiting to be crawled at a given depth.
type FrontierEntry struct {
	URL   string
	Depth int
}

// frontier is the FIFO of entries for the next round.
type frontier struct {
	entries []FrontierEntry
}

func newFrontier(seed FrontierEntry) *frontier {
	return &frontier{entries: []FrontierEntry{seed}}
}

func (f *frontier) push(url string, depth int) {
	f.entries = append(f.entries, FrontierEntry{URL: url, Depth: depth})
}

// drain removes and returns every queued entry. Entries pushed afterwards
// belong to the next round.
func (f *frontier) drain() []FrontierEntry {
	batch := f.entries
	f.entries = nil
	return batch
}

func (f *frontier) empty() bool {
	return len(f.entries) == 0
}

// visitedSet holds the keys of every URL dispatched in one crawl.
// It only grows.
type visitedSet map[string]struct{}

func (v visitedSet) has(key string) bool {
	_, ok := v[key]
	return ok
}

func (v visitedSet) mark(key string) {
	v[key] = struct{}{}
}

// sorted returns the keys in lexical order.
func (v visitedSet) sorted() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
