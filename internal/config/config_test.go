package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Quota.DailyFreeLimit)
	assert.Equal(t, int64(10), cfg.Quota.MessageCost)
	assert.Equal(t, int64(50), cfg.Match.CrushCost)
	assert.Equal(t, "UTC", cfg.Quota.Location.String())
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/spark")
	assert.Len(t, cfg.Packages, 3)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FREE_MESSAGES_PER_DAY", "3")
	t.Setenv("MESSAGE_COST_POINTS", "25")
	t.Setenv("QUOTA_TIMEZONE", "Africa/Lagos")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("FANOUT_REDIS", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Quota.DailyFreeLimit)
	assert.Equal(t, int64(25), cfg.Quota.MessageCost)
	assert.Equal(t, "Africa/Lagos", cfg.Quota.Location.String())
	assert.Contains(t, cfg.DB.DSN, "dbname=spark")
	assert.True(t, cfg.Fanout.UseRedis)
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spark.yaml")
	body := `
env: development
db:
  driver: sqlite
quota:
  dailyFreeLimit: 2
packages:
  - id: tiny
    points: 5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.ENV)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 2, cfg.Quota.DailyFreeLimit)

	p, ok := cfg.Package("tiny")
	require.True(t, ok)
	assert.Equal(t, int64(5), p.Total())
	_, ok = cfg.Package("premium")
	assert.False(t, ok)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("MESSAGE_COST_POINTS", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MESSAGE_COST_POINTS", "10")
	t.Setenv("QUOTA_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("QUOTA_TIMEZONE", "UTC")
	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load()
	assert.Error(t, err)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}
