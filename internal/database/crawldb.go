package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkcrawl/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "linkcrawl.db"

// storedTimeLayout is fixed-width, so text ordering matches time ordering.
const storedTimeLayout = "2006-01-02 15:04:05.000000000"

// ErrNilResult is returned when SaveCrawlResult is given no result.
var ErrNilResult = errors.New("crawl result is nil")

// CrawlDB provides SQLite-based storage for crawl runs.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// newID generates run identifiers.
	newID func() string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	// busy_timeout lets concurrent openers of one file wait for the lock.
	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := dbPath + "?mode=" + mode + "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
		newID:  func() string { return uuid.NewString() },
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per saved crawl invocation
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		clean INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		url_count INTEGER NOT NULL DEFAULT 0,
		failed_count INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_start_url ON crawl_runs(start_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON crawl_runs(started_at);

	-- Result URLs of each run
	CREATE TABLE IF NOT EXISTS crawl_urls (
		run_id TEXT NOT NULL REFERENCES crawl_runs(id),
		url TEXT NOT NULL,
		PRIMARY KEY (run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_urls_url ON crawl_urls(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata summarizes an archived run without its URLs.
type RunMetadata struct {
	ID          string
	StartURL    string
	MaxDepth    int
	Clean       bool
	StartedAt   time.Time
	FinishedAt  time.Time
	URLCount    int
	FailedCount int
}

// Duration returns how long the run took.
func (m RunMetadata) Duration() time.Duration {
	if m.StartedAt.IsZero() || m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// SaveCrawlResult archives a crawl result and returns its run ID.
// A result without an ID gets a new UUID, which is also written back to
// result.ID. A result without a start time is stamped with the current time.
func (cdb *CrawlDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) (string, error) {
	if result == nil {
		return "", ErrNilResult
	}
	if result.ID == "" {
		result.ID = cdb.newID()
	}
	if result.StartedAt.IsZero() {
		result.StartedAt = time.Now()
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize crawl result: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (id, start_url, max_depth, clean, started_at, finished_at, url_count, failed_count, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		result.StartURL,
		result.MaxDepth,
		result.Clean,
		formatTimestamp(result.StartedAt),
		formatTimestamp(result.FinishedAt),
		result.Len(),
		len(result.Failures()),
		string(resultJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save crawl run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO crawl_urls (run_id, url) VALUES (?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare url insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range result.URLs {
		if _, err := stmt.ExecContext(ctx, result.ID, u); err != nil {
			return "", fmt.Errorf("failed to save url %s: %w", u, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit crawl run: %w", err)
	}
	return result.ID, nil
}

// GetRun retrieves a run by ID. It returns nil, nil when no run has that ID.
func (cdb *CrawlDB) GetRun(ctx context.Context, id string) (*model.CrawlResult, error) {
	var resultJSON string
	err := cdb.db.QueryRowContext(ctx, `SELECT result_json FROM crawl_runs WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}
	return decodeResult(resultJSON)
}

// LatestRuns returns up to limit runs of startURL, newest first.
func (cdb *CrawlDB) LatestRuns(ctx context.Context, startURL string, limit int) ([]*model.CrawlResult, error) {
	query := `
	SELECT result_json FROM crawl_runs
	WHERE start_url = ?
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, startURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var results []*model.CrawlResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result, err := decodeResult(resultJSON)
		if err != nil {
			continue // Skip malformed runs
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// ListStartURLs returns every seed that has at least one archived run.
func (cdb *CrawlDB) ListStartURLs(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT start_url FROM crawl_runs ORDER BY start_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list start urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan start url: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// GetRunHistory returns run metadata, newest first.
// An empty startURL returns the runs of every seed.
func (cdb *CrawlDB) GetRunHistory(ctx context.Context, startURL string) ([]RunMetadata, error) {
	query := `
	SELECT id, start_url, max_depth, clean, started_at, finished_at, url_count, failed_count
	FROM crawl_runs
	WHERE ? = '' OR start_url = ?
	ORDER BY started_at DESC, rowid DESC
	`
	return cdb.queryMetadata(ctx, query, startURL, startURL)
}

// RunsWithURL returns metadata of every run whose result contains u, newest first.
func (cdb *CrawlDB) RunsWithURL(ctx context.Context, u string) ([]RunMetadata, error) {
	query := `
	SELECT r.id, r.start_url, r.max_depth, r.clean, r.started_at, r.finished_at, r.url_count, r.failed_count
	FROM crawl_runs r
	JOIN crawl_urls c ON c.run_id = r.id
	WHERE c.url = ?
	ORDER BY r.started_at DESC, r.rowid DESC
	`
	return cdb.queryMetadata(ctx, query, u)
}

func (cdb *CrawlDB) queryMetadata(ctx context.Context, query string, args ...any) ([]RunMetadata, error) {
	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta       RunMetadata
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(
			&meta.ID,
			&meta.StartURL,
			&meta.MaxDepth,
			&meta.Clean,
			&startedAt,
			&finishedAt,
			&meta.URLCount,
			&meta.FailedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			meta.FinishedAt = parseTimestamp(finishedAt.String)
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

func decodeResult(s string) (*model.CrawlResult, error) {
	var result model.CrawlResult
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("failed to parse crawl result: %w", err)
	}
	return &result, nil
}

// formatTimestamp stores times in UTC. The zero time is stored as an empty string.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimeLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
