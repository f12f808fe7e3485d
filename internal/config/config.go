// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	// Server
	Host    string `env:"HOST,default=0.0.0.0"`
	Port    string `env:"PORT,default=8080"`
	GinMode string `env:"GIN_MODE,default=release"`

	// Storage
	Driver        string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURL      string `env:"MONGO_URL"`
	MongoDatabase string `env:"MONGO_DATABASE,default=storefront"`

	// Cache
	RedisURL   string        `env:"REDIS_URL"`
	SessionTTL time.Duration `env:"SESSION_TTL,default=24h"`

	// JWT
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiration time.Duration `env:"JWT_EXPIRES_IN,default=1h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	// CORS
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS,default=*"`

	// Rate limiting for login and password reset
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=10"`
}

// Load reads envFile when it exists, then decodes the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Driver)
	}
	if c.JWTSecret == "" && c.Driver != DriverMemory {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// AllowOrigins splits CORS_ALLOW_ORIGINS on commas.
func (c *Config) AllowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
