// Package config centralises runtime configuration. Values are loaded from
// environment variables via struct tags, with an optional .env file for
// local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the top-level runtime configuration.
type Config struct {
	// Env selects the deployment environment. "production" switches the
	// Secure attribute on for auth cookies.
	Env string `env:"APP_ENV" envDefault:"development"`

	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	Auth  AuthConfig
	Admin AdminConfig

	AllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ReadTimeoutSec  int      `env:"HTTP_READ_TIMEOUT" envDefault:"15"`
	WriteTimeoutSec int      `env:"HTTP_WRITE_TIMEOUT" envDefault:"15"`
	IdleTimeoutSec  int      `env:"HTTP_IDLE_TIMEOUT" envDefault:"60"`
}

// AuthConfig groups the authentication secrets and token settings.
type AuthConfig struct {
	// Secret signs and verifies admin tokens. There is no default: the
	// system refuses to start without one rather than signing with a
	// guessable value.
	Secret string `env:"AUTH_SECRET,required,notEmpty"`

	// SessionKey keys the HMAC fallback session mechanism. Externalized
	// configuration like the signing secret, never hard-coded.
	SessionKey string `env:"SESSION_KEY,required,notEmpty"`

	Issuer string `env:"AUTH_ISSUER" envDefault:"lotusspa"`
}

// AdminConfig optionally seeds an initial administrative login at startup.
// Both fields empty disables seeding.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Name     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	Password string `env:"ADMIN_PASSWORD"`
}

// SeedEnabled reports whether an initial admin should be ensured at startup.
func (c AdminConfig) SeedEnabled() bool {
	return c.Email != "" && c.Password != ""
}

// IsProduction reports whether the production environment is configured.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ReadTimeout returns the HTTP read timeout as a duration.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the HTTP write timeout as a duration.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

// IdleTimeout returns the HTTP idle timeout as a duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

// Load reads configuration from the environment, preloading a .env file when
// one is present in the working directory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("loading .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.sanitize()
	return cfg, nil
}

func (c *Config) sanitize() {
	if !strings.Contains(c.HTTPPort, ":") {
		c.HTTPPort = ":" + c.HTTPPort
	}
	origins := c.AllowedOrigins[:0]
	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = append(origins, "*")
	}
	c.AllowedOrigins = origins
}
