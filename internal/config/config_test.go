package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development", Locale: "en-US"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{Backend: BackendBadger, DataPath: "/data", LedgerKey: "borrowedBooks"},
		Browse:  BrowseConfig{BorrowRateLimit: 30, SessionIdleTimeout: time.Minute},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"PRODUCTION", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Backends(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"badger", func(c *Config) {}, ""},
		{"sqlite", func(c *Config) { c.Storage.Backend = BackendSQLite }, ""},
		{"memory without path", func(c *Config) { c.Storage.Backend = BackendMemory; c.Storage.DataPath = "" }, ""},
		{"redis", func(c *Config) { c.Storage.Backend = BackendRedis; c.Storage.RedisAddr = "localhost:6379" }, ""},
		{"redis without addr", func(c *Config) { c.Storage.Backend = BackendRedis }, "REDIS_ADDR"},
		{"badger without path", func(c *Config) { c.Storage.DataPath = "" }, "DATA_PATH"},
		{"unknown", func(c *Config) { c.Storage.Backend = "etcd" }, "invalid storage backend"},
		{"empty ledger key", func(c *Config) { c.Storage.LedgerKey = " " }, "LEDGER_KEY"},
		{"zero rate", func(c *Config) { c.Browse.BorrowRateLimit = 0 }, "BORROW_RATE_LIMIT"},
		{"bad log level", func(c *Config) { c.Logger.Level = "trace" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"ENV", "LOG_LEVEL", "DATA_PATH", "STORAGE_BACKEND", "LEDGER_KEY", "LOCALE", "CATALOG_PATH", "SERVER_PORT", "BORROW_RATE_LIMIT", "SESSION_IDLE_TIMEOUT", "CORS_ALLOWED_ORIGINS", "TRUST_PROXY_HEADERS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "en-US", cfg.App.Locale)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, "Bookshelf", "data"), cfg.Storage.DataPath)
	assert.Equal(t, "borrowedBooks", cfg.Storage.LedgerKey)
	assert.Empty(t, cfg.Catalog.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.TrustProxyHeaders)
	assert.Equal(t, 30, cfg.Browse.BorrowRateLimit)
	assert.Equal(t, 30*time.Minute, cfg.Browse.SessionIdleTimeout)
	assert.Equal(t, filepath.Join(home, "Bookshelf", "data", "ledger"), cfg.BadgerPath())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load([]string{"-storage-backend", "memory", "-data-path", dir, "-port", "9100"})
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_TrustProxyHeaders(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load([]string{"-data-path", t.TempDir()})
	require.NoError(t, err)
	assert.True(t, cfg.Server.TrustProxyHeaders)

	t.Setenv("TRUST_PROXY_HEADERS", "sometimes")
	_, err = Load([]string{"-data-path", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUST_PROXY_HEADERS")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_IDLE_TIMEOUT", "soon")

	_, err := Load([]string{"-data-path", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_IDLE_TIMEOUT")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# bookshelf\nLEDGER_KEY=\"shelf\"\n\nLOCALE=en-GB\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LEDGER_KEY", "")
	t.Setenv("LOCALE", "de-DE")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "shelf", os.Getenv("LEDGER_KEY"))
	assert.Equal(t, "de-DE", os.Getenv("LOCALE"), "existing env wins")
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))

	err := loadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/shelf", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shelf"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)

	got, err = expandPath("/a/../b", "")
	require.NoError(t, err)
	assert.Equal(t, "/b", got)
}
