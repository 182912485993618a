package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/linkcrawl/internal/config"
	"github.com/nao1215/linkcrawl/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [start-url]",
		Short: "List archived crawl runs",
		Long: `History lists crawl runs saved with 'linkcrawl crawl --save'.

Without arguments it lists every archived start URL. With a start URL it
lists the runs of that seed, newest first.

Examples:
  # List archived start URLs
  linkcrawl history

  # List runs of one seed
  linkcrawl history https://example.com

  # List every run that reached a given URL
  linkcrawl history --url https://example.com/about`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"List runs whose result contains this URL")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	containing, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}

	db, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case containing != "":
		runs, err := db.RunsWithURL(ctx, containing)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(out, "No archived run contains %s\n", containing)
			return nil
		}
		fmt.Fprintf(out, "Runs containing %s (%d):\n", containing, len(runs))
		renderRuns(out, runs, true)
		return nil
	case len(args) == 1:
		return listRunHistory(ctx, out, db, args[0])
	default:
		return listStartURLs(ctx, out, db)
	}
}

// openArchive opens the archive database named by the --db-dir flag.
func openArchive(cmd *cobra.Command) (*database.CrawlDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func listStartURLs(ctx context.Context, out io.Writer, db *database.CrawlDB) error {
	urls, err := db.ListStartURLs(ctx)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(out, "No archived crawls found in the database.")
		fmt.Fprintln(out, "\nUse 'linkcrawl crawl <url> --save' to archive a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Archived start URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(out, "  • %s\n", u)
	}
	fmt.Fprintln(out, "\nUse 'linkcrawl history <url>' to see the runs of a start URL.")
	return nil
}

func listRunHistory(ctx context.Context, out io.Writer, db *database.CrawlDB, startURL string) error {
	runs, err := db.GetRunHistory(ctx, startURL)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No crawl history found for %s\n", startURL)
		fmt.Fprintln(out, "\nUse 'linkcrawl crawl <url> --save' to archive a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Crawl history for %s (%d runs):\n", startURL, len(runs))
	renderRuns(out, runs, false)
	fmt.Fprintln(out, "\nUse 'linkcrawl compare <url>' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'linkcrawl compare --with-run <id> <url>' to compare with a specific run.")
	return nil
}

// renderRuns prints run metadata as a table.
func renderRuns(out io.Writer, runs []database.RunMetadata, withStartURL bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Run ID", "Started", "Depth", "Clean", "URLs", "Failed", "Duration"}
	if withStartURL {
		header = append(header, "Start URL")
	}
	t.AppendHeader(header)

	for _, r := range runs {
		row := table.Row{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.MaxDepth,
			strconv.FormatBool(r.Clean),
			r.URLCount,
			r.FailedCount,
			r.Duration().Round(time.Millisecond),
		}
		if withStartURL {
			row = append(row, r.StartURL)
		}
		t.AppendRow(row)
	}
	t.Render()
}
