package domain

import "time"

// Default values for application settings.
const (
	// DefaultFetchTimeout bounds a single remote document fetch.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultFetchRate is the sustained remote fetch rate (requests/second).
	DefaultFetchRate = 2.0

	// DefaultMaxDocumentBytes caps the size of a fetched or uploaded document.
	DefaultMaxDocumentBytes = 32 << 20

	// DefaultRuleTableName is the snapshot name used when none is configured.
	DefaultRuleTableName = "default"

	// DefaultServerPort is the HTTP API port.
	DefaultServerPort = 8080
)

// FetchSettings holds remote document fetch configuration.
type FetchSettings struct {
	// Timeout bounds one fetch including reading the body.
	Timeout time.Duration

	// RatePerSecond throttles consecutive fetches.
	RatePerSecond float64

	// MaxBytes is the largest accepted response body.
	MaxBytes int64
}

// RuleSettings holds rule table configuration.
type RuleSettings struct {
	// TableName selects the persisted snapshot.
	TableName string
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DataDir is where the snapshot database lives.
	// Empty means ~/.wordcheck/data.
	DataDir string
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Port is the HTTP listen port.
	Port int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Fetch   FetchSettings
	Rules   RuleSettings
	Storage StorageSettings
	Server  ServerSettings
}

// DefaultAppSettings returns settings with default values.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Fetch: FetchSettings{
			Timeout:       DefaultFetchTimeout,
			RatePerSecond: DefaultFetchRate,
			MaxBytes:      DefaultMaxDocumentBytes,
		},
		Rules: RuleSettings{
			TableName: DefaultRuleTableName,
		},
		Server: ServerSettings{
			Port: DefaultServerPort,
		},
	}
}
