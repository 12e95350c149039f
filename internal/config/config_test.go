package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
[database]
dbname = "appointments"

[user_service]
url = "http://users:8080"

[business_service]
url = "http://business:8080"

[orders]
token_secret = "from-file"
timezone = "Europe/Moscow"

[links]
base_url = "https://smc.example"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv(EnvTokenSecret, "")

	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "from-file", cfg.Orders.TokenSecret)
	assert.Equal(t, 72*time.Hour, cfg.Orders.TokenExpiry())
	assert.Equal(t, 3*time.Hour, cfg.Orders.AutoDeclineDelay())
	assert.Equal(t, SchedulerPostgres, cfg.Scheduler.Backend)
	assert.Equal(t, TransportLog, cfg.Notifications.Transport)

	loc, err := cfg.Orders.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvTokenSecret, "from-env")
	t.Setenv(EnvDBPassword, "pg-secret")

	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Orders.TokenSecret)
	assert.Equal(t, "pg-secret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=pg-secret")
}

func TestLoadValidation(t *testing.T) {
	t.Setenv(EnvTokenSecret, "")

	_, err := Load(writeConfig(t, `
[scheduler]
backend = "kafka"

[notifications]
transport = "smtp"
`))
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, part := range []string{"database.dbname", "orders.token_secret", "scheduler.backend", "smtp.host", "links.base_url"} {
		assert.Contains(t, err.Error(), part)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
