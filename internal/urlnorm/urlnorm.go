package urlnorm

import (
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/linkcrawl/internal/model"
)

// IsValid reports whether raw is an absolute URL with a scheme and a host.
// Relative paths, fragment-only strings and opaque URLs such as
// mailto:user@example.com are rejected.
func IsValid(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Resolve resolves href against base following RFC 3986.
// Surrounding whitespace of href is ignored. The result is not validated.
func Resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", &model.ValidationError{URL: base, Reason: err.Error()}
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", &model.ValidationError{URL: href, Reason: err.Error()}
	}
	return b.ResolveReference(h).String(), nil
}

// Option configures Normalize.
type Option func(*options)

type options struct {
	keepQuery bool
}

// WithKeepQuery keeps the query string in normalized URLs.
// By default the query is dropped.
func WithKeepQuery() Option {
	return func(o *options) {
		o.keepQuery = true
	}
}

// Normalize resolves raw against base and returns it as scheme://host/path.
// The fragment is stripped, the query is dropped unless WithKeepQuery is
// given, and scheme and host are lowercased. An empty path stays empty.
func Normalize(base, raw string, opts ...Option) (string, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	resolved, err := Resolve(base, raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return "", &model.ValidationError{URL: raw, Reason: err.Error()}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &model.ValidationError{URL: raw, Reason: "missing scheme or host"}
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	b.WriteString(strings.ToLower(u.Host))
	b.WriteString(u.EscapedPath())
	if o.keepQuery && u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	return b.String(), nil
}

// Key returns the visited-set key for raw: the URL without its fragment.
// Unparsable input is returned unchanged.
func Key(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Clean projects a visited set onto its normalized form relative to
// startURL. The result is sorted, deduplicated and does not contain the
// normalized start URL itself. URLs that fail to normalize are dropped.
func Clean(urls []string, startURL string, opts ...Option) []string {
	self, selfErr := Normalize(startURL, startURL, opts...)

	seen := make(map[string]struct{}, len(urls))
	cleaned := make([]string, 0, len(urls))
	for _, raw := range urls {
		n, err := Normalize(startURL, raw, opts...)
		if err != nil {
			continue
		}
		if selfErr == nil && n == self {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		cleaned = append(cleaned, n)
	}
	slices.Sort(cleaned)
	return cleaned
}
