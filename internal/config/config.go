// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
	Currency  CurrencyConfig
	Backend   BackendConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds durable key-value store configuration.
type StorageConfig struct {
	// DataPath is the directory for the embedded database and key material.
	DataPath string
}

// AuthConfig holds session and token configuration.
type AuthConfig struct {
	// AccessTokenTTL is the access token lifetime (default: 1h).
	AccessTokenTTL time.Duration
	// RefreshTokenTTL is the refresh token lifetime (default: 720h).
	RefreshTokenTTL time.Duration
	// RefreshInterval is how often the background refresher runs (default: 5m).
	RefreshInterval time.Duration
}

// RateLimitConfig holds login lockout policy.
type RateLimitConfig struct {
	// MaxAttempts is the failure count that triggers a lockout (default: 5).
	MaxAttempts int
	// BlockDuration is how long a lockout lasts (default: 15m).
	BlockDuration time.Duration
}

// CatalogConfig holds book listing configuration.
type CatalogConfig struct {
	// ItemsPerPage is the page size for catalog fetches (default: 12).
	ItemsPerPage int
	// MaxPages is the simulated backend's page cutoff (default: 5).
	MaxPages int
}

// CurrencyConfig holds exchange-rate configuration.
type CurrencyConfig struct {
	// APIBaseURL is the exchange-rate endpoint a real client would call.
	APIBaseURL string
	// APIKey authenticates against the rate provider. Unused by the mock.
	APIKey string
	// BaseCurrency is the currency prices are stored in (default: TRY).
	BaseCurrency string
	// DefaultCurrency is the display currency before the user picks one.
	DefaultCurrency string
	// ValidityWindow is how long a rate snapshot stays fresh (default: 30m).
	ValidityWindow time.Duration
}

// BackendConfig holds mock backend behavior.
type BackendConfig struct {
	// Latency is the simulated network delay per call (default: 300ms).
	// Tests set this to zero.
	Latency time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Directory for local storage")

	accessTTL := flag.String("access-token-ttl", "", "Access token lifetime (e.g., 1h)")
	refreshTTL := flag.String("refresh-token-ttl", "", "Refresh token lifetime (e.g., 720h)")
	refreshInterval := flag.String("refresh-interval", "", "Background session refresh interval (e.g., 5m)")

	maxAttempts := flag.String("login-max-attempts", "", "Failed logins before lockout (default: 5)")
	blockDuration := flag.String("login-block-duration", "", "Login lockout duration (default: 15m)")

	itemsPerPage := flag.String("items-per-page", "", "Catalog page size (default: 12)")
	maxPages := flag.String("max-pages", "", "Simulated catalog page cutoff (default: 5)")

	currencyURL := flag.String("currency-api-url", "", "Exchange rate API base URL")
	currencyKey := flag.String("currency-api-key", "", "Exchange rate API key")
	baseCurrency := flag.String("base-currency", "", "Base currency code (default: TRY)")
	defaultCurrency := flag.String("default-currency", "", "Default display currency (default: TRY)")
	validityWindow := flag.String("rates-validity-window", "", "Rate cache validity window (default: 30m)")

	backendLatency := flag.String("backend-latency", "", "Simulated network latency (default: 300ms)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: getIntConfigValue(*maxAttempts, "LOGIN_MAX_ATTEMPTS", 5),
		},
		Catalog: CatalogConfig{
			ItemsPerPage: getIntConfigValue(*itemsPerPage, "ITEMS_PER_PAGE", 12),
			MaxPages:     getIntConfigValue(*maxPages, "MAX_PAGES", 5),
		},
		Currency: CurrencyConfig{
			APIBaseURL:      getConfigValue(*currencyURL, "CURRENCY_API_URL", "https://api.freecurrencyapi.com/v1"),
			APIKey:          getConfigValue(*currencyKey, "CURRENCY_API_KEY", ""),
			BaseCurrency:    getConfigValue(*baseCurrency, "BASE_CURRENCY", "TRY"),
			DefaultCurrency: getConfigValue(*defaultCurrency, "DEFAULT_CURRENCY", "TRY"),
		},
	}

	// Parse durations.
	durations := []struct {
		dest   *time.Duration
		flag   string
		envKey string
		def    string
	}{
		{&cfg.Auth.AccessTokenTTL, *accessTTL, "ACCESS_TOKEN_TTL", "1h"},
		{&cfg.Auth.RefreshTokenTTL, *refreshTTL, "REFRESH_TOKEN_TTL", "720h"},
		{&cfg.Auth.RefreshInterval, *refreshInterval, "REFRESH_INTERVAL", "5m"},
		{&cfg.RateLimit.BlockDuration, *blockDuration, "LOGIN_BLOCK_DURATION", "15m"},
		{&cfg.Currency.ValidityWindow, *validityWindow, "RATES_VALIDITY_WINDOW", "30m"},
		{&cfg.Backend.Latency, *backendLatency, "BACKEND_LATENCY", "300ms"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.RateLimit.MaxAttempts < 1 {
		return fmt.Errorf("login max attempts must be positive, got %d", c.RateLimit.MaxAttempts)
	}

	if c.Catalog.ItemsPerPage < 1 {
		return fmt.Errorf("items per page must be positive, got %d", c.Catalog.ItemsPerPage)
	}
	if c.Catalog.MaxPages < 1 {
		return fmt.Errorf("max pages must be positive, got %d", c.Catalog.MaxPages)
	}

	if len(c.Currency.BaseCurrency) != 3 {
		return fmt.Errorf("base currency must be a 3-letter code, got %q", c.Currency.BaseCurrency)
	}
	if len(c.Currency.DefaultCurrency) != 3 {
		return fmt.Errorf("default currency must be a 3-letter code, got %q", c.Currency.DefaultCurrency)
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Bookhaven/data when unset.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Bookhaven", "data")

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
