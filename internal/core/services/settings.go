package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyFetchTimeout  = "fetch.timeout_seconds"
	KeyFetchRate     = "fetch.rate_per_second"
	KeyFetchMaxBytes = "fetch.max_bytes"
	KeyRulesTable    = "rules.table"
	KeyDataDir       = "storage.data_dir"
	KeyServerPort    = "server.port"
)

var settingKeys = []string{
	KeyFetchTimeout,
	KeyFetchRate,
	KeyFetchMaxBytes,
	KeyRulesTable,
	KeyDataDir,
	KeyServerPort,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout := defaults.Fetch.Timeout
	if secs := s.configStore.GetInt(KeyFetchTimeout); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	settings := &domain.AppSettings{
		Fetch: domain.FetchSettings{
			Timeout:       timeout,
			RatePerSecond: s.getFloat(KeyFetchRate, defaults.Fetch.RatePerSecond),
			MaxBytes:      int64(s.getInt(KeyFetchMaxBytes, int(defaults.Fetch.MaxBytes))),
		},
		Rules: domain.RuleSettings{
			TableName: s.getString(KeyRulesTable, defaults.Rules.TableName),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(KeyDataDir), // Empty selects ~/.wordcheck/data
		},
		Server: domain.ServerSettings{
			Port: s.getPort(defaults.Server.Port),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyFetchTimeout, int(settings.Fetch.Timeout / time.Second)},
		{KeyFetchRate, settings.Fetch.RatePerSecond},
		{KeyFetchMaxBytes, settings.Fetch.MaxBytes},
		{KeyRulesTable, settings.Rules.TableName},
		{KeyDataDir, settings.Storage.DataDir},
		{KeyServerPort, settings.Server.Port},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var parsed any
	switch key {
	case KeyFetchTimeout, KeyFetchMaxBytes:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case KeyServerPort:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("%w: %s must be between 1 and 65535", domain.ErrInvalidInput, key)
		}
		parsed = n
	case KeyFetchRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case KeyRulesTable:
		if value == "" {
			return fmt.Errorf("%w: %s cannot be empty", domain.ErrInvalidInput, key)
		}
		parsed = value
	case KeyDataDir:
		parsed = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Value returns the effective value of key, formatted as Set accepts it.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case KeyFetchTimeout:
		return strconv.Itoa(int(settings.Fetch.Timeout / time.Second)), nil
	case KeyFetchRate:
		return strconv.FormatFloat(settings.Fetch.RatePerSecond, 'g', -1, 64), nil
	case KeyFetchMaxBytes:
		return strconv.FormatInt(settings.Fetch.MaxBytes, 10), nil
	case KeyRulesTable:
		return settings.Rules.TableName, nil
	case KeyDataDir:
		return settings.Storage.DataDir, nil
	case KeyServerPort:
		return strconv.Itoa(settings.Server.Port), nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Keys returns the recognised setting keys.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getPort(defaultVal int) int {
	port := s.configStore.GetInt(KeyServerPort)
	if port <= 0 || port > 65535 {
		return defaultVal
	}
	return port
}
