package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// newSiteServer serves a small site:
//
//	/      -> /a, /b
//	/a     -> /c, /
//	/b     -> /missing (404)
//	/c     -> nothing
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string][]string{
		"/":  {"/a", "/b"},
		"/a": {"/c", "/"},
		"/b": {"/missing"},
		"/c": nil,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		links, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>")
		for _, l := range links {
			fmt.Fprintf(w, `<a href="%s">%s</a>`, l, l)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeSeedFile writes a crawler-config.yml listing urls and returns its path.
func writeSeedFile(t *testing.T, urls ...string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("urls:\n")
	for _, u := range urls {
		fmt.Fprintf(&sb, "  - %s\n", u)
	}
	if len(urls) == 0 {
		sb.Reset()
		sb.WriteString("urls: []\n")
	}
	path := filepath.Join(t.TempDir(), "crawler-config.yml")
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}
