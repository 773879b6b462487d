package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Empty(t, cfg.Server.CORSOrigins)

	assert.Equal(t, "fiscal_ledger", cfg.Database.DBName)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)

	assert.Equal(t, 6379, cfg.Redis.Port)

	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "pos-fiscal-ledger", cfg.JWT.Issuer)

	assert.Empty(t, cfg.Signing.Key, "no certified key unless provisioned")
	assert.Equal(t, "postgres", cfg.Ledger.Storage)
	assert.Equal(t, "UTC", cfg.Ledger.Timezone)
	assert.Equal(t, 50000, cfg.Ledger.VerifyMaxTickets)
	assert.Equal(t, 24*time.Hour, cfg.Ledger.IdempotencyTTL)
	assert.Equal(t, 10*time.Second, cfg.Archive.Timeout)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  port: 9090
  mode: "release"
  cors_origins:
    - "https://till.example.com"
    - "https://backoffice.example.com"
database:
  host: "db.example.com"
  dbname: "ledger_test"
signing:
  key: "certified-secret"
  key_id: "nf525-2025"
ledger:
  storage: "memory"
  timezone: "Europe/Paris"
  verify_max_tickets: 1000
archive:
  url: "https://archive.example.com/closures"
  secret: "archive-secret"
log:
  level: "debug"
  pretty: true
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"https://till.example.com", "https://backoffice.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "ledger_test", cfg.Database.DBName)
	assert.Equal(t, "certified-secret", cfg.Signing.Key)
	assert.Equal(t, "nf525-2025", cfg.Signing.KeyID)
	assert.Equal(t, "memory", cfg.Ledger.Storage)
	assert.Equal(t, 1000, cfg.Ledger.VerifyMaxTickets)
	assert.Equal(t, "https://archive.example.com/closures", cfg.Archive.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	loc, err := cfg.Ledger.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POS_SERVER_PORT", "3000")
	t.Setenv("POS_DATABASE_HOST", "env-db-host")
	t.Setenv("POS_SIGNING_KEY", "env-signing-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "env-db-host", cfg.Database.Host)
	assert.Equal(t, "env-signing-key", cfg.Signing.Key)
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("POS_LEDGER_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
}

func TestLedgerConfig_LocationDefaultsToUTC(t *testing.T) {
	loc, err := LedgerConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "ledger",
		Password: "pw",
		DBName:   "fiscal_ledger",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://ledger:pw@localhost:5432/fiscal_ledger?sslmode=disable", dbCfg.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "redis.local:6380", RedisConfig{Host: "redis.local", Port: 6380}.Addr())
}
