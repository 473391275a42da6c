package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "default-jwt-secret-change-me"

type Config struct {
	Port         string   `envconfig:"PORT" default:"5000"`
	Environment  string   `envconfig:"APP_ENV" default:"development"`
	Version      string   `envconfig:"APP_VERSION" default:"1.0.0"`
	JWTSecret    string   `envconfig:"JWT_SECRET" default:"default-jwt-secret-change-me"`
	DBDriver     string   `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseURL  string   `envconfig:"DATABASE_URL" default:"project_board.db"`
	LogLevel     string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins  []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	OpenAIAPIKey string   `envconfig:"OPENAI_API_KEY"`

	RateLimitEnabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitRPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"2"`
	RateLimitBurst   int     `envconfig:"RATE_LIMIT_BURST" default:"4"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
