package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"INCIDENTS_SERVER_PORT":             "server.port",
		"INCIDENTS_SERVER_METRICS_PORT":     "server.metrics_port",
		"INCIDENTS_DATABASE_MAX_OPEN_CONNS": "database.max_open_conns",
		"INCIDENTS_EXPORT_MAX_ROWS":         "export.max_rows",
		"INCIDENTS_CORS_ALLOWED_ORIGINS":    "cors.allowed_origins",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, def.Database.MaxOpenConns, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5000, cfg.Export.MaxRows)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "8081"
  read_timeout: 3s
database:
  url: postgres://file/db
  max_open_conns: 20
log:
  level: debug
export:
  max_rows: 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("INCIDENTS_DATABASE_MAX_OPEN_CONNS", "7")
	t.Setenv("INCIDENTS_LOG_FORMAT", "text")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres://file/db", cfg.Database.URL)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 250, cfg.Export.MaxRows)
	// untouched keys keep their defaults
	assert.Equal(t, Default().Server.MetricsPort, cfg.Server.MetricsPort)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"empty database url", func(c *Config) { c.Database.URL = "" }, "Config.Database.URL"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "Config.Log.Level"},
		{"export rows zero", func(c *Config) { c.Export.MaxRows = 0 }, "Config.Export.MaxRows"},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 50 }, "Config.Database.MaxIdleConns"},
		{"non numeric port", func(c *Config) { c.Server.Port = "http" }, "Config.Server.Port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

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
