package model

import "slices"

// URLDiff describes how the URL set of one crawl changed relative to another.
type URLDiff struct {
	// Added lists URLs present in the newer result only.
	Added []string `json:"added"`

	// Removed lists URLs present in the older result only.
	Removed []string `json:"removed"`

	// Unchanged is the number of URLs present in both.
	Unchanged int `json:"unchanged"`
}

// HasChanges reports whether any URL was added or removed.
func (d URLDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// DiffURLs compares the URL sets of two results. A nil older result
// is treated as empty, so every URL of newer counts as added.
func DiffURLs(older, newer *CrawlResult) URLDiff {
	prev := make(map[string]struct{})
	if older != nil {
		for _, u := range older.URLs {
			prev[u] = struct{}{}
		}
	}
	cur := make(map[string]struct{})
	if newer != nil {
		for _, u := range newer.URLs {
			cur[u] = struct{}{}
		}
	}

	diff := URLDiff{Added: []string{}, Removed: []string{}}
	for u := range cur {
		if _, ok := prev[u]; ok {
			diff.Unchanged++
			continue
		}
		diff.Added = append(diff.Added, u)
	}
	for u := range prev {
		if _, ok := cur[u]; !ok {
			diff.Removed = append(diff.Removed, u)
		}
	}
	slices.Sort(diff.Added)
	slices.Sort(diff.Removed)
	return diff
}
