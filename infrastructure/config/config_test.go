package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.ServerAddress)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "mindmap-data.json", cfg.DataFile)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(50<<20), cfg.MaxBodyBytes)
	assert.True(t, cfg.IsDevelopment())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_backend: sqlite
sqlite_path: /tmp/file.db
log_level: debug
read_timeout: 3s
cors_allowed_origins: ["http://localhost:3000"]
`), 0o644))

	t.Setenv("SQLITE_PATH", "/tmp/env.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "/tmp/env.db", cfg.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestPortFallback(t *testing.T) {
	t.Setenv("PORT", "9000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ServerAddress)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_backend: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, "STORAGE_BACKEND"},
		{"postgres without dsn", func(c *Config) { c.StorageBackend = BackendPostgres }, "POSTGRES_DSN"},
		{"mongo without url", func(c *Config) { c.StorageBackend = BackendMongo }, "MONGO_URL"},
		{"dynamodb without table", func(c *Config) {
			c.StorageBackend = BackendDynamoDB
			c.DynamoDBTable = ""
		}, "DYNAMODB_TABLE"},
		{"bad medication format", func(c *Config) { c.MedicationFormat = "xml" }, "MEDICATION_FORMAT"},
		{"bad metrics provider", func(c *Config) { c.MetricsProvider = "statsd" }, "METRICS_PROVIDER"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, "MAX_BODY_BYTES"},
		{"sample rate out of range", func(c *Config) { c.TracingSampleRate = 2 }, "TRACING_SAMPLE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
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

func TestWatcherAppliesLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w, err := NewConfigWatcher(cfg, level, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *Config, 1)
	w.OnChange(func(c *Config) { changed <- c })

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	assert.Equal(t, "debug", w.Config().LogLevel)
}

func TestWatcherInertOutsideDevelopment(t *testing.T) {
	cfg := Default()
	cfg.Environment = Production
	cfg.ConfigFile = "config.yaml"

	w, err := NewConfigWatcher(cfg, zap.NewAtomicLevel(), zap.NewNop())
	require.NoError(t, err)
	w.Stop()
}
