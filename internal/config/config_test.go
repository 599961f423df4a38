package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "portfolio.db", cfg.Database.DSN)
	assert.Equal(t, 14*24*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "/media/", cfg.Media.URL)
	assert.Equal(t, 22, cfg.SFTP.Port)
	assert.False(t, cfg.Server.Debug)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9000"
  canonical_host: www.example.com
  debug: true
site:
  base_url: https://www.example.com/
database:
  driver: postgres
  dsn: postgres://file
sftp:
  host: files.example.com
  insecure_ignore_host_key: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("PORT", "")
	t.Setenv("PORTFOLIO_DATABASE_DSN", "postgres://env")
	t.Setenv("PORTFOLIO_SESSION_MAX_AGE", "1h")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "www.example.com", cfg.Server.CanonicalHost)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "https://www.example.com", cfg.Site.BaseURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "files.example.com", cfg.SFTP.Host)
	assert.True(t, cfg.SFTP.InsecureIgnoreHostKey)
}

func TestPortOverride(t *testing.T) {
	t.Setenv("PORT", "5050")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "5050", cfg.Server.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PORTFOLIO_DATABASE_DRIVER", "mysql")
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "unsupported database.driver")
}
