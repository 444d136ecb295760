package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithSQLite(t *testing.T) {
	t.Setenv("FLORA_DB_DRIVER", DriverSQLite)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, "file:flora.db?_foreign_keys=on", cfg.DB.DSN)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "flora", cfg.Metrics.Namespace)
}

func TestLoadBuildsPostgresDSN(t *testing.T) {
	t.Setenv("FLORA_DB_DRIVER", DriverPostgres)
	t.Setenv("FLORA_DB_USER", "shop")
	t.Setenv("FLORA_DB_PASSWORD", "secret")
	t.Setenv("FLORA_DB_NAME", "flora")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.DB.DSN, "user=shop")
	assert.Contains(t, cfg.DB.DSN, "dbname=flora")
	assert.Contains(t, cfg.DB.DSN, "TimeZone=UTC")
}

func TestLoadRejectsPostgresWithoutCredentials(t *testing.T) {
	t.Setenv("FLORA_DB_DRIVER", DriverPostgres)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimeZone(t *testing.T) {
	t.Setenv("FLORA_DB_DRIVER", DriverSQLite)
	t.Setenv("FLORA_TIME_ZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
