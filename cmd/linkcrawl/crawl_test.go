package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/linkcrawl/internal/config"
	"github.com/nao1215/linkcrawl/internal/model"
)

func TestNewCrawlCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()
	flagsWithShort := map[string]string{
		"depth":       "d",
		"clean":       "C",
		"timeout":     "t",
		"concurrency": "n",
		"config":      "c",
		"all":         "a",
		"batch":       "b",
		"json":        "j",
		"markdown":    "m",
		"output":      "o",
		"save":        "s",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
	for _, flag := range []string{"keep-query", "rate", "burst", "per-host", "proxy", "user-agent", "max-body-size", "db-dir"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}
	if got := cmd.Flags().Lookup("depth").DefValue; got != "2" {
		t.Errorf("expected default depth 2, got %s", got)
	}
}

func TestCrawlCmd(t *testing.T) {
	t.Parallel()

	t.Run("crawls to the requested depth", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)

		stdout, stderr, err := executeCommand(t, "", "crawl", srv.URL, "-d", "1", "--no-color")
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		if !strings.Contains(stdout, "URLS: 3") {
			t.Errorf("expected three URLs at depth 1\n%s", stdout)
		}
		if strings.Contains(stdout, srv.URL+"/c") {
			t.Errorf("depth 2 page should not be visited\n%s", stdout)
		}
		if !strings.Contains(stderr, "Crawling completed successfully. Total links found: 3") {
			t.Errorf("expected success message\n%s", stderr)
		}
	})

	t.Run("json report", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)

		stdout, _, err := executeCommand(t, "", "crawl", srv.URL, "-d", "2", "--json", "--log-level", "ERROR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result model.CrawlResult
		if err := json.Unmarshal([]byte(stdout), &result); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		for _, u := range []string{srv.URL, srv.URL + "/a", srv.URL + "/b", srv.URL + "/c", srv.URL + "/missing"} {
			if !slices.Contains(result.URLs, u) {
				t.Errorf("expected %s in %v", u, result.URLs)
			}
		}
		if result.Stats.HTTPErrors != 1 {
			t.Errorf("expected the 404 to be recorded, got %+v", result.Stats)
		}
	})

	t.Run("clean mode excludes the start url", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)

		stdout, _, err := executeCommand(t, "", "crawl", srv.URL+"/a", "-d", "1", "--clean", "--json", "--log-level", "ERROR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var result model.CrawlResult
		if err := json.Unmarshal([]byte(stdout), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !result.Clean || slices.Contains(result.URLs, srv.URL+"/a") {
			t.Errorf("unexpected clean result %v", result.URLs)
		}
		if !slices.Contains(result.URLs, srv.URL+"/c") {
			t.Errorf("expected linked page in %v", result.URLs)
		}
	})

	t.Run("invalid start url", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := executeCommand(t, "", "crawl", "not-a-url", "--no-color")
		if !errors.Is(err, model.ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL, got %v", err)
		}
		if !strings.Contains(stderr, "No links found during the crawl.") {
			t.Errorf("expected no links message\n%s", stderr)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "", "crawl", "https://example.com", "-j", "-m")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("negative depth", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "", "crawl", "https://example.com", "-d", "-1")
		if !errors.Is(err, config.ErrInvalidDepth) {
			t.Errorf("expected ErrInvalidDepth, got %v", err)
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "", "crawl", "https://example.com", "--log-level", "LOUD")
		if !errors.Is(err, config.ErrInvalidLogLevel) {
			t.Errorf("expected ErrInvalidLogLevel, got %v", err)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "", "crawl", "-c", filepath.Join(t.TempDir(), "nope.yml"))
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("report and log files", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)
		dir := t.TempDir()
		reportPath := filepath.Join(dir, "out", "report.md")
		logPath := filepath.Join(dir, "crawl.log")

		stdout, stderr, err := executeCommand(t, "", "crawl", srv.URL, "-d", "0", "-m", "-o", reportPath, "--log-file", logPath, "--no-color")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("report should go to the file, stdout has %q", stdout)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		if !strings.Contains(string(content), "# Linkcrawl Report") {
			t.Errorf("unexpected report\n%s", content)
		}

		logContent, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("log not written: %v", err)
		}
		if !strings.Contains(string(logContent), "level=SUCCESS") {
			t.Errorf("expected success records in log file\n%s", logContent)
		}
		if !strings.Contains(stderr, "Logs have been written to "+logPath+".") {
			t.Errorf("expected log file notice\n%s", stderr)
		}
	})
}

func TestCrawlCmdInteractive(t *testing.T) {
	t.Parallel()

	t.Run("picks a seed and asks for depth", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)
		seedFile := writeSeedFile(t, "https://unused.example", srv.URL)

		stdout, _, err := executeCommand(t, "2\n0\n", "crawl", "-c", seedFile, "--log-level", "ERROR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"1. https://unused.example",
			"0. Enter a new URL",
			"Enter the maximum depth (default 2): ",
			"URLS: 1",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q\n%s", want, stdout)
			}
		}
	})

	t.Run("depth flag skips the depth prompt", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)
		seedFile := writeSeedFile(t)

		stdout, _, err := executeCommand(t, srv.URL+"\n", "crawl", "-c", seedFile, "-d", "0", "--log-level", "ERROR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Enter the URL to start crawling: ") {
			t.Errorf("expected URL prompt\n%s", stdout)
		}
		if strings.Contains(stdout, "maximum depth") {
			t.Errorf("depth should not be asked\n%s", stdout)
		}
	})

	t.Run("malformed seed file falls back to the URL prompt", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)
		seedFile := filepath.Join(t.TempDir(), "crawler-config.yml")
		if err := os.WriteFile(seedFile, []byte("urls: [unterminated\n"), 0600); err != nil {
			t.Fatalf("failed to write seed file: %v", err)
		}

		stdout, stderr, err := executeCommand(t, srv.URL+"\n", "crawl", "-c", seedFile, "-d", "0",
			"--log-level", "ERROR", "--no-color")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Enter the URL to start crawling: ") {
			t.Errorf("expected URL prompt\n%s", stdout)
		}
		if strings.Contains(stdout, "Available URLs from config:") {
			t.Errorf("no seeds should be listed\n%s", stdout)
		}
		if !strings.Contains(stderr, "failed to load configuration file") {
			t.Errorf("expected load error to be logged\n%s", stderr)
		}
	})

	t.Run("closed stdin", func(t *testing.T) {
		t.Parallel()
		seedFile := writeSeedFile(t, "https://example.com")

		_, _, err := executeCommand(t, "", "crawl", "-c", seedFile)
		if !errors.Is(err, ErrNoInput) {
			t.Errorf("expected ErrNoInput, got %v", err)
		}
	})
}

func TestCrawlCmdBatch(t *testing.T) {
	t.Parallel()

	t.Run("crawls every seed and archives the results", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)
		seedFile := writeSeedFile(t, srv.URL, srv.URL+"/a")
		dbDir := t.TempDir()

		stdout, stderr, err := executeCommand(t, "", "crawl", "--all", "-c", seedFile, "-d", "0", "-b", "2",
			"--save", "--db-dir", dbDir, "--no-color")
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		if strings.Count(stdout, "LINKCRAWL REPORT") != 2 {
			t.Errorf("expected one report per seed\n%s", stdout)
		}
		if strings.Count(stderr, "crawl saved") != 2 {
			t.Errorf("expected both results to be saved\n%s", stderr)
		}

		history, _, err := executeCommand(t, "", "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(history, "Archived start URLs (2)") {
			t.Errorf("unexpected history\n%s", history)
		}
	})

	t.Run("a failing seed does not stop the others", func(t *testing.T) {
		t.Parallel()
		srv := newSiteServer(t)
		seedFile := writeSeedFile(t, "not-a-url", srv.URL)

		stdout, _, err := executeCommand(t, "", "crawl", "--all", "-c", seedFile, "-d", "0", "--log-level", "ERROR")
		if err == nil || !strings.Contains(err.Error(), "1 of 2 seeds failed") {
			t.Fatalf("expected one failed seed, got %v", err)
		}
		if !strings.Contains(stdout, srv.URL) {
			t.Errorf("expected report of the good seed\n%s", stdout)
		}
	})

	t.Run("malformed seed file means no seeds", func(t *testing.T) {
		t.Parallel()
		seedFile := filepath.Join(t.TempDir(), "crawler-config.yml")
		if err := os.WriteFile(seedFile, []byte("urls: [unterminated\n"), 0600); err != nil {
			t.Fatalf("failed to write seed file: %v", err)
		}

		_, _, err := executeCommand(t, "", "crawl", "--all", "-c", seedFile, "--log-level", "ERROR")
		if err == nil || !strings.Contains(err.Error(), "no seeds") {
			t.Errorf("expected no seeds error, got %v", err)
		}
	})

	t.Run("no seeds", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "", "crawl", "--all", "-c", writeSeedFile(t))
		if err == nil || !strings.Contains(err.Error(), "no seeds") {
			t.Errorf("expected no seeds error, got %v", err)
		}
	})

	t.Run("all with a start url", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "", "crawl", "--all", "https://example.com")
		if err == nil {
			t.Error("expected an error")
		}
	})
}
