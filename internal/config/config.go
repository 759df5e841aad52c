package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pennywise"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pennywise"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Auth struct {
		Secret        string        `envconfig:"JWT_SECRET"`
		TTL           time.Duration `envconfig:"JWT_TTL" default:"30m"`
		RestoreWindow time.Duration `envconfig:"RESTORE_WINDOW" default:"720h"`
	}

	Ledger struct {
		BudgetPolicy ledger.BudgetPolicy `envconfig:"BUDGET_POLICY" default:"soft"`
		PageSize     int                 `envconfig:"PAGE_SIZE" default:"10"`
	}

	Cache struct {
		RedisAddr string        `envconfig:"REDIS_ADDR"`
		TTL       time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	if !c.Ledger.BudgetPolicy.Valid() {
		return fmt.Errorf("unknown BUDGET_POLICY %q", c.Ledger.BudgetPolicy)
	}

	if c.Auth.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	return nil
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
