package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetOrderConfig_Defaults(t *testing.T) {
	cfg := GetOrderConfig()

	assert.Equal(t, 10*time.Minute, cfg.PaymentGrace)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
}

func TestGetOrderConfig_FromEnv(t *testing.T) {
	t.Setenv("ORDER_PAYMENT_GRACE", "15m")
	t.Setenv("ORDER_SWEEP_INTERVAL", "5s")

	cfg := GetOrderConfig()

	assert.Equal(t, 15*time.Minute, cfg.PaymentGrace)
	assert.Equal(t, 5*time.Second, cfg.SweepInterval)
}

func TestGetDatabaseConfig_PoolSizing(t *testing.T) {
	cfg := GetDatabaseConfig()
	assert.Equal(t, int32(50), cfg.MaxConns)
	assert.Equal(t, int32(10), cfg.MinConns)

	t.Setenv("DB_MAX_CONNS", "80")
	t.Setenv("DB_MIN_CONNS", "8")

	cfg = GetDatabaseConfig()
	assert.Equal(t, int32(80), cfg.MaxConns)
	assert.Equal(t, int32(8), cfg.MinConns)
}

func TestGetCheckoutConfig_FromEnv(t *testing.T) {
	t.Setenv("CHECKOUT_GATEWAY_URL", "https://pay.example.com/init")
	t.Setenv("CHECKOUT_CURRENCY", "USD")

	cfg := GetCheckoutConfig()

	assert.Equal(t, "https://pay.example.com/init", cfg.GatewayURL)
	assert.Equal(t, "USD", cfg.Currency)
}

func TestLoadTestConfig(t *testing.T) {
	cfg := LoadTestConfig()

	assert.Equal(t, "5433", cfg.Database.Port)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, 1, cfg.Redis.DB)
}
