package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadDirPerm is the permission for attachment output directories.
	DownloadDirPerm = 0750
)

// HTTP client defaults.
const (
	// DefaultBaseURL is the Quickbase JSON API endpoint.
	DefaultBaseURL = "https://api.quickbase.com/v1"

	// DefaultUserAgent identifies the client in request headers.
	DefaultUserAgent = "qbapi-client/1.0"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry policy. The transport budgets attempts, not elapsed time; a degraded
// upstream is bounded only by DefaultRetryAttempts * DefaultRetryWaitMax.
const (
	// DefaultRetryAttempts is the total number of attempts per request.
	DefaultRetryAttempts = 5

	// DefaultRetryWaitMin is the base delay before the first retry.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax caps the exponential backoff delay.
	DefaultRetryWaitMax = 64 * time.Second

	// RetryJitterMin and RetryJitterMax bound the random backoff scale factor.
	RetryJitterMin = 0.5
	RetryJitterMax = 1.5
)

// Concurrency and batching limits.
const (
	// DefaultMaxConcurrency limits in-flight chunk and download requests.
	DefaultMaxConcurrency = 8

	// DefaultChunkSize is the number of records requested per query chunk.
	DefaultChunkSize = 1000

	// MaxChunkSize is the per-request record ceiling enforced by the API.
	// Treated as configuration; override via qbapi.Config.MaxChunkSize.
	MaxChunkSize = 1000
)

// Well-known Quickbase field IDs.
const (
	// RecordIDFieldID is the built-in Record ID# field present in every table.
	RecordIDFieldID = 3
)

// Cache sizing defaults.
const (
	// DefaultCacheSize is the default cache entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)

// Output formatting.
const (
	// ExportDateFormat names exported CSV files.
	ExportDateFormat = "2006-01-02"
)
