// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string        `env:"APP_ENV" envDefault:"development"`
	Port       string        `env:"PORT" envDefault:"5000"`
	CORSOrigin string        `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`
	JWTSecret  string        `env:"JWT_SECRET,required"`
	JWTExpiry  time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	SentryDSN  string        `env:"SENTRY_DSN"`

	// RateLimitAuth is requests per minute per client IP on /auth routes. 0 disables it.
	RateLimitAuth int `env:"RATE_LIMIT_AUTH" envDefault:"20"`

	DB     DB
	GitHub GitHub
}

type DB struct {
	Driver      string `env:"DB_DRIVER" envDefault:"pgx"`
	URL         string `env:"DATABASE_URL"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD"`
	Name        string `env:"DB_NAME" envDefault:"movie_app_db"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	Path        string `env:"DB_PATH" envDefault:"data/movies.db"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// GitHub OAuth settings. The OAuth routes are only mounted when all three are set.
type GitHub struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	CallbackURL  string `env:"GITHUB_CALLBACK_URL"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config: loading .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("config: DB_DRIVER must be pgx or sqlite, got %q", c.DB.Driver)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	if c.RateLimitAuth < 0 {
		return fmt.Errorf("config: RATE_LIMIT_AUTH must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// DSN returns the data source name for the configured driver.
// DATABASE_URL takes precedence over the individual DB_* parts.
func (d DB) DSN() string {
	if d.Driver == "sqlite" {
		if d.URL != "" {
			return d.URL
		}
		return d.Path
	}
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	return u.String()
}

func (g GitHub) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}
