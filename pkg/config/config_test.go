package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "out")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "fund_data", cfg.DataDir)
	assert.Equal(t, LedgerBackendCSV, cfg.Ledger.Backend)
	assert.Equal(t, "out/positions.csv", cfg.Ledger.File)
	assert.Equal(t, "out/archive", cfg.ArchiveDir)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, "0 0 16 * * 1-5", cfg.ScanSchedule)
	assert.Equal(t, 3, cfg.JobMaxRetries)
	assert.Equal(t, time.Minute, cfg.JobRetryDelay)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATA_DIR", "/data/bars")
	t.Setenv("WORKERS", "3")
	t.Setenv("LEDGER_BACKEND", "sqlite")
	t.Setenv("LEDGER_SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RESTRICT_TO_LIST", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/data/bars", cfg.DataDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, LedgerBackendSQLite, cfg.Ledger.Backend)
	assert.Equal(t, "/tmp/ledger.db", cfg.Ledger.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.RestrictToList)
}

func TestValidatePostgresNeedsURL(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateUnknownBackend(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	t.Setenv("TEST_INT", "100")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BAD_INT", "abc")

	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))
	assert.Equal(t, 50, getEnvAsInt("TEST_BAD_INT", 50))
	assert.InDelta(t, 2.5, getEnvAsFloat("TEST_FLOAT", 1), 1e-9)
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_MISSING_DURATION", "1h"))
}
