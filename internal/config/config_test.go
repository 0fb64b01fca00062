package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := `
db:
  host: db.internal
  port: 6543
finance:
  defaultprofitmargin: 30
  upcomingdays: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("MARGINLY_DB_HOST", "db.from.env")
	t.Setenv("MARGINLY_HTTP_RATELIMIT", "10-S")

	// when
	cfg, err := Load(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, "db.from.env", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "marginly", cfg.Database.Name)
	assert.Equal(t, float64(30), cfg.Finance.DefaultProfitMargin)
	assert.Equal(t, 7, cfg.Finance.UpcomingDays)
	assert.Equal(t, float64(90), cfg.Finance.WarningThreshold)
	assert.Equal(t, "10-S", cfg.Http.RateLimit)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: [unclosed"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}
