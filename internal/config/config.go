package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the storefront service.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	RabbitMQURL string // empty disables order events

	// RecomputeTotal makes checkout derive the order total from catalog prices
	// instead of trusting the submitted value.
	RecomputeTotal bool

	LoginRateLimit float64 // requests per second per client
	LoginRateBurst int

	SeedCatalog bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", "change_me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CHECKOUT_RECOMPUTE_TOTAL", false)
	v.SetDefault("LOGIN_RATE_LIMIT", 2.0)
	v.SetDefault("LOGIN_RATE_BURST", 5)
	v.SetDefault("SEED_CATALOG", false)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RecomputeTotal: v.GetBool("CHECKOUT_RECOMPUTE_TOTAL"),
		LoginRateLimit: v.GetFloat64("LOGIN_RATE_LIMIT"),
		LoginRateBurst: v.GetInt("LOGIN_RATE_BURST"),
		SeedCatalog:    v.GetBool("SEED_CATALOG"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.LoginRateLimit <= 0 || c.LoginRateBurst <= 0 {
		return fmt.Errorf("login rate limit and burst must be positive")
	}
	return nil
}
