package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.True(t, decimal.RequireFromString("5.00").Equal(cfg.Pricing.DeliveryFee))
	assert.True(t, decimal.RequireFromString("2.00").Equal(cfg.Pricing.DriverFee))
}

func TestLoad_DotEnvAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nDELIVERY_FEE=4.50\n"), 0o600))
	t.Setenv("DRIVER_FEE", "1.25")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DELIVERY_FEE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, decimal.RequireFromString("4.50").Equal(cfg.Pricing.DeliveryFee))
	assert.True(t, decimal.RequireFromString("1.25").Equal(cfg.Pricing.DriverFee))
	assert.Equal(t, []byte("test-secret"), JWTSecret)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"negative fee", "DELIVERY_FEE", "-1"},
		{"bad fee", "DRIVER_FEE", "two"},
		{"bad pool size", "DB_MAX_OPEN_CONNS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
