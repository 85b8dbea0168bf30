// Package config loads server configuration from command-line flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Catalog CatalogConfig
	Storage StorageConfig
	Server  ServerConfig
	Browse  BrowseConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	Locale      string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// CatalogConfig points at an optional catalog file. Empty means the embedded catalog.
type CatalogConfig struct {
	Path string
}

// StorageConfig selects where the borrow ledger is persisted.
type StorageConfig struct {
	Backend       string
	DataPath      string // badger directory and sqlite file live here
	RedisAddr     string
	RedisPassword string
	LedgerKey     string // slot name (default: borrowedBooks)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	// TrustProxyHeaders takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets them.
	TrustProxyHeaders bool
}

// BrowseConfig tunes per-client browse sessions.
type BrowseConfig struct {
	BorrowRateLimit    int           // borrow events per minute per client
	SessionIdleTimeout time.Duration // sessions unused this long are evicted
}

// LoadConfig loads configuration from the process arguments with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit arguments.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookshelf", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	locale := fs.String("locale", "", "Locale for borrowed dates (default: en-US)")
	catalogPath := fs.String("catalog-path", "", "Catalog YAML file (default: embedded catalog)")
	backend := fs.String("storage-backend", "", "Ledger storage: badger, sqlite, redis or memory (default: badger)")
	dataPath := fs.String("data-path", "", "Directory for persisted state (default: ~/Bookshelf/data)")
	redisAddr := fs.String("redis-addr", "", "Redis address (default: localhost:6379)")
	ledgerKey := fs.String("ledger-key", "", "Persisted slot name (default: borrowedBooks)")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")
	trustProxy := fs.String("trust-proxy-headers", "", "Use X-Forwarded-For/X-Real-IP for client addresses (default: false)")
	borrowRate := fs.String("borrow-rate-limit", "", "Borrow events per minute per client (default: 30)")
	sessionIdle := fs.String("session-idle-timeout", "", "Browse session idle eviction (default: 30m)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			Locale:      getConfigValue(*locale, "LOCALE", "en-US"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			Path: getConfigValue(*catalogPath, "CATALOG_PATH", ""),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getConfigValue(*backend, "STORAGE_BACKEND", BackendBadger)),
			DataPath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			RedisAddr:     getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
			LedgerKey:     getConfigValue(*ledgerKey, "LEDGER_KEY", "borrowedBooks"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		Browse: BrowseConfig{
			BorrowRateLimit: getIntConfigValue(*borrowRate, "BORROW_RATE_LIMIT", 30),
		},
	}

	var err error
	rawTrust := getConfigValue(*trustProxy, "TRUST_PROXY_HEADERS", "false")
	if cfg.Server.TrustProxyHeaders, err = strconv.ParseBool(rawTrust); err != nil {
		return nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS %q: %w", rawTrust, err)
	}

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*sessionIdle, "SESSION_IDLE_TIMEOUT", "30m", &cfg.Browse.SessionIdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		if *d.dst, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and within range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
		if c.Storage.DataPath == "" {
			return fmt.Errorf("DATA_PATH is required for the %s backend", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be badger, sqlite, redis, or memory)", c.Storage.Backend)
	}

	if strings.TrimSpace(c.Storage.LedgerKey) == "" {
		return errors.New("LEDGER_KEY cannot be empty")
	}
	if c.Browse.BorrowRateLimit <= 0 {
		return fmt.Errorf("BORROW_RATE_LIMIT must be positive, got %d", c.Browse.BorrowRateLimit)
	}
	if c.Browse.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}

	return nil
}

// BadgerPath is the badger directory under the data path.
func (c *Config) BadgerPath() string {
	return filepath.Join(c.Storage.DataPath, "ledger")
}

// SQLitePath is the sqlite file under the data path.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Storage.DataPath, "ledger.db")
}

// SearchPath is the bleve index directory under the data path.
func (c *Config) SearchPath() string {
	return filepath.Join(c.Storage.DataPath, "search")
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Storage.DataPath, err = expandPath(c.Storage.DataPath, filepath.Join(home, "Bookshelf", "data")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Catalog.Path != "" {
		if c.Catalog.Path, err = expandPath(c.Catalog.Path, ""); err != nil {
			return fmt.Errorf("invalid catalog path: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default. Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file.
// Variables already present in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- config file path is operator supplied
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

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
