package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as health checks.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries for idempotent requests.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination.
const (
	// DefaultPageSize mirrors the server's default page size.
	DefaultPageSize = 20

	// LargePageSize is used for full-collection scans and purges. The server caps page_size at 100.
	LargePageSize = 100

	// MaxPageSize is the largest page size the server honors.
	MaxPageSize = 100

	// DefaultMaxPages bounds a full-collection scan when the server does not report total_pages.
	DefaultMaxPages = 10000
)

// Batch reporting.
const (
	// ProgressInterval is the number of completed items between progress reports.
	ProgressInterval = 10
)

// Caching.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// CategoriesCacheTTL is the TTL for the item category list.
	CategoriesCacheTTL = 10 * time.Minute

	// StatsCacheTTL is the TTL for dashboard statistics.
	StatsCacheTTL = 30 * time.Second

	// DefaultNATSBucket is the KV bucket name used when none is configured.
	DefaultNATSBucket = "csclient-cache"
)

// Output formatting.
const (
	// JSONIndentSize is the number of spaces for JSON and YAML indentation.
	JSONIndentSize = 2

	// DateFormat is the wire format for calendar dates.
	DateFormat = "2006-01-02"

	// DateTimeFormat is used when rendering timestamps in tables.
	DateTimeFormat = "2006-01-02 15:04:05"
)

// Defaults for client identification.
const (
	// DefaultUserAgent is sent when the caller does not provide one.
	DefaultUserAgent = "csclient/1.0"

	// APIPathPrefix is the path prefix every API route lives under.
	APIPathPrefix = "/api"
)
