package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkcrawl/internal/batch"
	"github.com/nao1215/linkcrawl/internal/config"
	"github.com/nao1215/linkcrawl/internal/crawler"
	"github.com/nao1215/linkcrawl/internal/database"
	"github.com/nao1215/linkcrawl/internal/fetcher"
	"github.com/nao1215/linkcrawl/internal/log"
	"github.com/nao1215/linkcrawl/internal/model"
	"github.com/nao1215/linkcrawl/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url]",
		Short: "Crawl a website breadth-first and list the links found",
		Long: `Crawl fetches the start URL, extracts its hyperlinks, and follows them
breadth-first until the maximum depth is reached. Every page is fetched at
most once. Pages that fail to load are reported but never stop the crawl.

Without a start URL, the seeds of crawler-config.yml are listed and one
can be picked interactively.

Examples:
  # Crawl two levels deep
  linkcrawl crawl https://example.com -d 2

  # Return normalized URLs without query strings and fragments
  linkcrawl crawl https://example.com --clean

  # Pick a seed from crawler-config.yml
  linkcrawl crawl

  # Crawl every seed of the config file, 4 at a time, and archive results
  linkcrawl crawl --all --batch 4 --save

  # Be gentle: 2 requests per second per host through a SOCKS5 proxy
  linkcrawl crawl https://example.com --rate 2 --per-host --proxy 127.0.0.1:9050

  # Write a Markdown report
  linkcrawl crawl https://example.com -m -o report.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (0 fetches only the start URL)")
	cmd.Flags().BoolP("clean", "C", false,
		"Return normalized URLs (lowercase scheme/host, no query or fragment) excluding the start URL")
	cmd.Flags().Bool("keep-query", false,
		"Keep query strings when cleaning")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("concurrency", "n", 0,
		"Maximum concurrent fetches per round (0 = unlimited)")

	// Politeness and transport flags
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second (0 = unlimited)")
	cmd.Flags().Int("burst", config.DefaultBurst,
		"Burst size for --rate")
	cmd.Flags().Bool("per-host", false,
		"Apply --rate to each host separately")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("user-agent", "",
		"User-Agent header to send")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of body bytes read per page")

	// Seed selection flags
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: crawler-config.yml in current directory)")
	cmd.Flags().BoolP("all", "a", false,
		"Crawl every seed of the configuration file")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of seeds crawled concurrently with --all")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Archive flags
	cmd.Flags().BoolP("save", "s", false,
		"Archive the result in the local database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	// The seed file is only needed when no URL was given.
	if cfg.StartURL == "" {
		if cfg.Seeds, err = loadSeeds(cfg.ConfigFilePath, logger); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.All {
		return runBatchCrawl(ctx, cmd, cfg, logger)
	}

	// Interactive seed and depth selection when no URL was given.
	if cfg.StartURL == "" {
		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		cfg.StartURL, err = p.chooseSeed(cfg.Seeds)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("depth") {
			cfg.MaxDepth, err = p.askDepth(cfg.MaxDepth)
			if err != nil {
				return err
			}
		}
	}

	return runSingleCrawl(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the seed file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.Clean, err = flags.GetBool("clean"); err != nil {
		return nil, err
	}
	if cfg.KeepQuery, err = flags.GetBool("keep-query"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.Burst, err = flags.GetInt("burst"); err != nil {
		return nil, err
	}
	if cfg.PerHost, err = flags.GetBool("per-host"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.All, err = flags.GetBool("all"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	applyLogFlags(cmd, cfg)

	if len(args) > 0 {
		cfg.StartURL = args[0]
	}
	if cfg.All && cfg.StartURL != "" {
		return nil, errors.New("--all crawls the configured seeds and takes no start URL")
	}

	return cfg, nil
}

// loadSeeds reads the seed URLs from the configuration file.
// An explicitly named file must exist; a missing default file means no
// seeds. A file that exists but cannot be loaded is logged and also yields
// no seeds, so an interactive crawl falls back to asking for a URL.
func loadSeeds(explicitPath string, logger log.Logger) ([]string, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
		}
		return nil, nil
	}
	f, err := config.LoadConfigFile(path)
	if err != nil {
		var le *config.LoadError
		if errors.As(err, &le) {
			logger.Error("failed to load configuration file", "path", le.Path, "error", le.Err)
			return nil, nil
		}
		return nil, err
	}
	return f.Seeds(), nil
}

// newEngine wires the crawl engine from the configuration.
func newEngine(cfg *config.Config, logger log.Logger) *crawler.Engine {
	fetcherOpts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	}
	if limiter := fetcher.NewRateLimiter(cfg.RateLimit, cfg.Burst, cfg.PerHost); limiter != nil {
		fetcherOpts = append(fetcherOpts, fetcher.WithRateLimiter(limiter))
	}
	if cfg.ProxyAddress != "" {
		fetcherOpts = append(fetcherOpts, fetcher.WithProxy(cfg.ProxyAddress))
	}
	if cfg.UserAgent != "" {
		fetcherOpts = append(fetcherOpts, fetcher.WithUserAgent(cfg.UserAgent))
	}

	engineOpts := []crawler.EngineOption{
		crawler.WithLogger(logger),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithFetcherOptions(fetcherOpts...),
	}
	if cfg.KeepQuery {
		engineOpts = append(engineOpts, crawler.WithKeepQuery())
	}
	return crawler.NewEngine(engineOpts...)
}

// crawlOptions returns the per-crawl options for cfg.
func crawlOptions(cfg *config.Config) []crawler.CrawlOption {
	if cfg.Clean {
		return []crawler.CrawlOption{crawler.WithClean()}
	}
	return nil
}

// runSingleCrawl crawls cfg.StartURL and reports the result.
func runSingleCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *log.Sink) error {
	engine := newEngine(cfg, logger)

	startTime := time.Now()
	result, crawlErr := engine.Crawl(ctx, cfg.StartURL, cfg.MaxDepth, crawlOptions(cfg)...)
	logger.Info("crawl finished", "url", cfg.StartURL, "elapsed", time.Since(startTime).Round(time.Millisecond))

	announceResult(logger, result)

	out, closeOut, err := openReportOutput(cmd.OutOrStdout(), cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut()

	if _, err := report.NewWriter(reportFormat(cfg), out).Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.ReportFile != "" {
		logger.Success("report written", "file", cfg.ReportFile)
	}

	if cfg.SaveToDB && crawlErr == nil {
		if err := saveResults(ctx, cfg, logger, result); err != nil {
			return err
		}
	}

	announceLogFile(logger, cfg)
	return crawlErr
}

// runBatchCrawl crawls every configured seed concurrently and streams the
// reports as crawls finish.
func runBatchCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *log.Sink) error {
	if len(cfg.Seeds) == 0 {
		return errors.New("no seeds to crawl (add URLs to crawler-config.yml or run 'linkcrawl init')")
	}

	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	out, closeOut, err := openReportOutput(cmd.OutOrStdout(), cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut()
	writer := report.NewWriter(reportFormat(cfg), out)

	engine := newEngine(cfg, logger)
	opts := crawlOptions(cfg)
	processor := batch.NewProcessor(
		func(ctx context.Context, seed string) (*model.CrawlResult, error) {
			return engine.Crawl(ctx, seed, cfg.MaxDepth, opts...)
		},
		batch.WithConcurrency(cfg.BatchSize),
		batch.WithLogger(logger),
	)

	var (
		mu     sync.Mutex
		done   int
		failed int
	)
	err = processor.ProcessWithCallback(ctx, cfg.Seeds, func(item batch.Item) {
		mu.Lock()
		defer mu.Unlock()

		done++
		logger.Header(fmt.Sprintf("[%d/%d] crawl completed", done, len(cfg.Seeds)), "url", item.Seed)
		announceResult(logger, item.Result)
		if item.Err != nil {
			failed++
			return
		}

		if _, err := writer.Write(item.Result); err != nil {
			logger.Error("failed to write report", "url", item.Seed, "error", err)
		}
		if db != nil {
			if _, err := db.SaveCrawlResult(ctx, item.Result); err != nil {
				logger.Error("failed to save crawl result", "url", item.Seed, "error", err)
			} else {
				logger.Success("crawl saved", "url", item.Seed, "run_id", item.Result.ID)
			}
		}
	})

	announceLogFile(logger, cfg)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d seeds failed", failed, len(cfg.Seeds))
	}
	return nil
}

// announceResult logs the outcome of one crawl.
func announceResult(logger log.Logger, result *model.CrawlResult) {
	if result.Len() > 0 {
		logger.Success(fmt.Sprintf("Crawling completed successfully. Total links found: %d", result.Len()),
			"url", result.StartURL)
		return
	}
	logger.Error("No links found during the crawl.", "url", result.StartURL)
}

// announceLogFile tells the user where the log file is.
func announceLogFile(logger log.Logger, cfg *config.Config) {
	if cfg.LogFile != "" {
		logger.Info(fmt.Sprintf("Logs have been written to %s.", cfg.LogFile))
	}
}

// saveResults archives results in the database configured in cfg.
func saveResults(ctx context.Context, cfg *config.Config, logger log.Logger, results ...*model.CrawlResult) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, r := range results {
		id, err := db.SaveCrawlResult(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to save crawl result: %w", err)
		}
		logger.Success("crawl saved", "url", r.StartURL, "run_id", id)
	}
	return nil
}

// reportFormat maps the report flags to a format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// openReportOutput returns stdout, or the report file when one is set.
// The returned function closes the file.
func openReportOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
