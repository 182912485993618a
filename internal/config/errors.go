package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can branch on them with errors.Is.
var (
	// ErrInvalidDepth is returned when the max depth is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency cap is negative.
	// Use 0 for no cap.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidBurst is returned when a rate limit is set with a burst below 1.
	ErrInvalidBurst = errors.New("invalid burst: must be at least 1 when a rate limit is set")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrInvalidLogLevel is returned for a log level other than
	// ERROR, WARNING, INFO, SUCCESS or ALL.
	ErrInvalidLogLevel = errors.New("invalid log level: must be one of ERROR, WARNING, INFO, SUCCESS, ALL")

	// ErrInvalidLogFormat is returned for a log format other than console, text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be one of console, text, json")

	// ErrNoDBDir is returned when saving is requested without a database directory.
	ErrNoDBDir = errors.New("no database directory: --db-dir must not be empty with --save")
)
