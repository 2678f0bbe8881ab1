package driving

import "github.com/custodia-labs/wordcheck/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by key, validating the value.
	Set(key, value string) error

	// Value returns the effective value of one setting as a string.
	Value(key string) (string, error)

	// Keys returns the recognised setting keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
