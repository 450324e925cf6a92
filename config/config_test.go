package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Media.Timeout)
	assert.Equal(t, 300.0, cfg.Office.Radius)
	assert.Equal(t, []string{"ind", "eng"}, cfg.OCR.Languages)
	assert.Equal(t, time.Minute, cfg.OCR.Timeout)
	assert.Empty(t, cfg.Admin.Numbers)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "postgres://bot@localhost/keubot")
	t.Setenv("ADMIN_NUMBERS", "62811, 62822@s.whatsapp.net")
	t.Setenv("SESSION_TIMEOUT", "3m")
	t.Setenv("OFFICE_RADIUS", "150")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://bot@localhost/keubot", cfg.Database.DSN)
	assert.Equal(t, []string{"62811", "62822@s.whatsapp.net"}, cfg.Admin.Numbers)
	assert.Equal(t, 3*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 150.0, cfg.Office.Radius)
}

func TestLoadFileAndValidation(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("office:\n  radius: 0\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "Radius")

	require.NoError(t, os.WriteFile(path, []byte("chart:\n  timeout: 5s\nserver:\n  addr: \":9000\"\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Chart.Timeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
