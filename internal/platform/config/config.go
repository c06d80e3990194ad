package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel int    `env:"LOG_LEVEL" envDefault:"0"`

	// StorageBackend selects the account store: "memory" or "postgres".
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// ChallengeBackend selects the verification-code store: "memory" or "redis".
	ChallengeBackend string `env:"CHALLENGE_BACKEND" envDefault:"memory"`
	RedisAddr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	JWT  JWT  `envPrefix:"JWT_"`
	Code Code `envPrefix:"CODE_"`
}

// JWT contains session-token parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	Issuer string        `env:"ISSUER" envDefault:"reader-api"`
	TTL    time.Duration `env:"TTL" envDefault:"720h"`
}

// Code contains verification-code parameters.
type Code struct {
	TTL time.Duration `env:"TTL" envDefault:"10m"`

	// Mode "static" wires the fixed local-dev code instead of random
	// generation. Never use it in production.
	Mode string `env:"MODE" envDefault:"random"`

	StaticValue string `env:"STATIC_VALUE" envDefault:"123456"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}
	if cfg.Code.TTL <= 0 {
		return Config{}, fmt.Errorf("CODE_TTL must be positive")
	}
	return cfg, nil
}
