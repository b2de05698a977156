package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// JWTSecret used to sign tokens, read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "food_marketplace_dev_secret"))

type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	DB struct {
		Driver       string // "sqlite" or "postgres"
		DSN          string
		MaxOpenConns int
	}

	Stripe struct {
		SecretKey string
		APIBase   string // optional override, e.g. a local Stripe twin
	}

	Pricing struct {
		DeliveryFee decimal.Decimal
		DriverFee   decimal.Decimal
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads an optional .env file at path, then the process environment.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.GinMode = getEnv("GIN_MODE", "debug")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.DB.Driver = getEnv("DB_DRIVER", "sqlite")
	cfg.DB.DSN = getEnv("DB_DSN", "food_marketplace.db")
	maxOpen, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "10"))
	if err != nil || maxOpen < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be a positive integer")
	}
	cfg.DB.MaxOpenConns = maxOpen

	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.APIBase = os.Getenv("STRIPE_API_BASE")

	if cfg.Pricing.DeliveryFee, err = moneyEnv("DELIVERY_FEE", "5.00"); err != nil {
		return nil, err
	}
	if cfg.Pricing.DriverFee, err = moneyEnv("DRIVER_FEE", "2.00"); err != nil {
		return nil, err
	}

	JWTSecret = []byte(getEnv("JWT_SECRET", string(JWTSecret)))
	return cfg, nil
}

func moneyEnv(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d.Round(2), nil
}
