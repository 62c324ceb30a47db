// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the server configuration. DATABASE_URL is the only required value.
type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	Port        string        `env:"PORT"              envDefault:"5000"`
	Environment string        `env:"APP_ENV"           envDefault:"development"`
	LogLevel    string        `env:"LOG_LEVEL"         envDefault:"info"`
	StaticDir   string        `env:"STATIC_DIR"        envDefault:"./static"`
	Retention   time.Duration `env:"CONTACT_RETENTION" envDefault:"8760h"`
	SMTP        SMTP          `envPrefix:"SMTP_"`

	// ToEmail is the older name for SMTP_TO, used when SMTP_TO is unset.
	ToEmail string `env:"TO_EMAIL"`
}

// SMTP holds the optional mail settings used to notify about new messages.
type SMTP struct {
	Host string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port string `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	To   string `env:"TO"`
}

// Enabled reports whether enough is configured to send mail.
func (s SMTP) Enabled() bool {
	return s.User != "" && s.Pass != "" && s.To != ""
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SMTP.To == "" {
		cfg.SMTP.To = cfg.ToEmail
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid APP_ENV %q: want %s, %s or %s", c.Environment, EnvDevelopment, EnvProduction, EnvTest)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("CONTACT_RETENTION must be positive, got %s", c.Retention)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
