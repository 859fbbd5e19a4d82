package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "TZ_NAME", "LOG_LEVEL", "REFRESH_INTERVAL"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		check   func(*testing.T, Config)
		wantErr bool
	}{
		{
			name: "file overrides defaults",
			file: "port: \"9090\"\ndriver: sqlite\ndatabase_url: tasks.db\nrefresh_interval: 30s\ntimezone: UTC\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "9090", cfg.Port)
				assert.Equal(t, "sqlite", cfg.Driver)
				assert.Equal(t, "tasks.db", cfg.DatabaseURL)
				assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
				assert.Equal(t, time.UTC, cfg.Location)
			},
		},
		{
			name: "environment overrides file",
			file: "driver: sqlite\nlog_level: debug\n",
			env:  map[string]string{"DB_DRIVER": "mysql", "REFRESH_INTERVAL": "5m"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "mysql", cfg.Driver)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
			},
		},
		{name: "malformed yaml", file: "port: [", wantErr: true},
		{name: "unknown timezone", file: "timezone: Mars/Olympus\n", wantErr: true},
		{name: "bad interval", env: map[string]string{"REFRESH_INTERVAL": "soon"}, wantErr: true},
		{name: "non-positive interval", file: "refresh_interval: 0s\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
