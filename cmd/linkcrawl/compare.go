package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkcrawl/internal/database"
	"github.com/nao1215/linkcrawl/internal/model"
	"github.com/nao1215/linkcrawl/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <start-url>",
		Short: "Compare archived crawl runs of a start URL",
		Long: `Compare shows which URLs appeared or disappeared between two archived
runs of the same start URL.

By default the latest run is compared with the one before it. Use
--with-run to pick the older run explicitly, or --since to compare with
the first run on or after a date.

Examples:
  # Compare latest two runs
  linkcrawl compare https://example.com

  # Compare with a specific run (see 'linkcrawl history <url>')
  linkcrawl compare --with-run 0b5c... https://example.com

  # Compare with the first run of 2025
  linkcrawl compare --since 2025-01-01 https://example.com

  # Output comparison in JSON format
  linkcrawl compare --json https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("with-run", "i", "",
		"Compare the latest run with this run ID")
	cmd.Flags().String("since", "",
		"Compare with the first run on or after this date (format: YYYY-MM-DD)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("with-run", "since")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	withRun, err := cmd.Flags().GetString("with-run")
	if err != nil {
		return err
	}
	since, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}
	var sinceDate time.Time
	if since != "" {
		sinceDate, err = time.Parse("2006-01-02", since)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	format := report.FormatText
	if boolFlag(cmd, "json") {
		format = report.FormatJSON
	} else if boolFlag(cmd, "markdown") {
		format = report.FormatMarkdown
	}

	db, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	comparison, err := buildComparison(cmd.Context(), db, args[0], withRun, sinceDate)
	if err != nil {
		return err
	}

	_, err = report.NewWriter(format, cmd.OutOrStdout()).WriteComparison(comparison)
	return err
}

// buildComparison picks the two runs to compare. The newer run is always
// the latest run of startURL.
func buildComparison(ctx context.Context, db *database.CrawlDB, startURL, withRun string, since time.Time) (*report.Comparison, error) {
	latest, err := db.LatestRuns(ctx, startURL, 2)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, fmt.Errorf("no crawl history found for %s", startURL)
	}
	newer := latest[0]

	var older *model.CrawlResult
	switch {
	case withRun != "":
		older, err = db.GetRun(ctx, withRun)
		if err != nil {
			return nil, fmt.Errorf("failed to get run %s: %w", withRun, err)
		}
		if older == nil {
			return nil, fmt.Errorf("run %s not found", withRun)
		}
		if older.StartURL != startURL {
			return nil, fmt.Errorf("run %s belongs to %s, not %s", withRun, older.StartURL, startURL)
		}
	case !since.IsZero():
		older, err = firstRunSince(ctx, db, startURL, since)
		if err != nil {
			return nil, err
		}
		if older.ID == newer.ID {
			return nil, fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison",
				since.Format("2006-01-02"))
		}
	default:
		if len(latest) < 2 {
			return nil, errors.New("at least 2 runs are required for comparison (found 1)")
		}
		older = latest[1]
	}

	return report.NewComparison(older, newer), nil
}

// firstRunSince returns the oldest run of startURL started on or after since.
func firstRunSince(ctx context.Context, db *database.CrawlDB, startURL string, since time.Time) (*model.CrawlResult, error) {
	history, err := db.GetRunHistory(ctx, startURL)
	if err != nil {
		return nil, err
	}
	// History is newest first.
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].StartedAt.Before(since) {
			run, err := db.GetRun(ctx, history[i].ID)
			if err != nil {
				return nil, err
			}
			if run != nil {
				return run, nil
			}
		}
	}
	return nil, fmt.Errorf("no runs found since %s", since.Format("2006-01-02"))
}
