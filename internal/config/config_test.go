// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123456:test-token")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123456:test-token", cfg.Bot.Token)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "secret", cfg.Admin.Password)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 14, cfg.Loan.DefaultDays)
	assert.Equal(t, ":8080", cfg.Ops.Addr)
	assert.False(t, cfg.Telemetry.Enable)
	assert.Equal(t, "librabot", cfg.Telemetry.ServiceName)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "/var/lib/librabot/library.db")
	t.Setenv("LOAN_DAYS", "30")
	t.Setenv("OPS_ADDR", ":9090")
	t.Setenv("OTEL_ENABLE", "true")
	t.Setenv("OTEL_SERVICE_NAME", "librabot-staging")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/var/lib/librabot/library.db", cfg.Database.URL)
	assert.Equal(t, 30, cfg.Loan.DefaultDays)
	assert.Equal(t, ":9090", cfg.Ops.Addr)
	assert.True(t, cfg.Telemetry.Enable)
	assert.Equal(t, "librabot-staging", cfg.Telemetry.ServiceName)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoadMissingCredential(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123456:test-token")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
}

func TestLoadBadDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoadBadLoanDays(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOAN_DAYS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOAN_DAYS")
}
