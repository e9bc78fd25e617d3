package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perrada/internal/models"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TIMEZONE", "")
	t.Setenv("SESSION_TOKEN_TTL", "")
	t.Setenv("ORDER_STATUS_WRITES", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", cfg.Location.String())
	assert.Equal(t, 12*time.Hour, cfg.SessionTokenTTL)
	assert.True(t, cfg.OrderStatusWrites)
	assert.Equal(t, []string{"http://localhost:9002"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SESSION_TOKEN_TTL", "2")
	t.Setenv("ORDER_STATUS_WRITES", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 2*time.Hour, cfg.SessionTokenTTL)
	assert.False(t, cfg.OrderStatusWrites)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromEnvRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := fromEnv()
	assert.Error(t, err)
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SESSION_TOKEN_TTL", "-3")
	t.Setenv("ORDER_STATUS_WRITES", "maybe")

	assert.Equal(t, 12*time.Hour, getDurationEnv("SESSION_TOKEN_TTL", 12, time.Hour))
	assert.True(t, getBoolEnv("ORDER_STATUS_WRITES", true))
}

func TestTransferAccounts(t *testing.T) {
	t.Setenv("TRANSFER_ACCOUNTS", "")
	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, []models.PaymentAccount{
		{Bank: "Bancolombia Ahorros", Number: "569-1234567-89"},
		{Bank: "Nequi", Number: "316-123-4567"},
	}, cfg.TransferAccounts)

	t.Setenv("TRANSFER_ACCOUNTS", "Daviplata = 310-000-0000, broken ,=123")
	assert.Equal(t, []models.PaymentAccount{{Bank: "Daviplata", Number: "310-000-0000"}},
		getAccountsEnv("TRANSFER_ACCOUNTS", defaultTransferAccounts))
}
