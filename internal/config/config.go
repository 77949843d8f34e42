// Package config loads the server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the catalog server.
type Config struct {
	Addr         string     `env:"BOOKAPI_ADDR" envDefault:":8080"`
	DatabasePath string     `env:"BOOKAPI_DB_PATH" envDefault:"./master.db"`
	LogLevel     slog.Level `env:"BOOKAPI_LOG_LEVEL" envDefault:"INFO"`

	// RedisAddr enables login throttling when set.
	RedisAddr string `env:"REDIS_CONNSTRING"`

	JWT       JWTConfig       `envPrefix:"BOOKAPI_JWT_"`
	Password  PasswordConfig  `envPrefix:"BOOKAPI_PASSWORD_"`
	Throttle  ThrottleConfig  `envPrefix:"BOOKAPI_LOGIN_"`
	Telemetry TelemetryConfig `envPrefix:"OTEL_"`
}

// JWTConfig controls token signing. Secret has no default on purpose.
type JWTConfig struct {
	Secret   string        `env:"SECRET,required,notEmpty"`
	Issuer   string        `env:"ISSUER"`
	Audience string        `env:"AUDIENCE"`
	TTL      time.Duration `env:"TTL" envDefault:"7h"`
}

// PasswordConfig mirrors auth.PasswordPolicy.
type PasswordConfig struct {
	MinLength     int  `env:"MIN_LENGTH" envDefault:"6"`
	RequireDigit  bool `env:"REQUIRE_DIGIT" envDefault:"true"`
	RequireLower  bool `env:"REQUIRE_LOWER" envDefault:"true"`
	RequireUpper  bool `env:"REQUIRE_UPPER" envDefault:"true"`
	RequireSymbol bool `env:"REQUIRE_SYMBOL" envDefault:"false"`
}

// ThrottleConfig bounds failed login attempts per username.
type ThrottleConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	Window      time.Duration `env:"WINDOW" envDefault:"15m"`
}

// TelemetryConfig points the OTLP exporters at a collector.
type TelemetryConfig struct {
	Enabled       bool   `env:"ENABLED" envDefault:"false"`
	CollectorAddr string `env:"COLLECTOR_ADDR" envDefault:"otel-collector:4317"`
	ServiceName   string `env:"SERVICE_NAME" envDefault:"book-catalog"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("invalid token ttl %s", cfg.JWT.TTL)
	}
	return &cfg, nil
}

// ThrottleEnabled reports whether failed logins are tracked.
func (c *Config) ThrottleEnabled() bool {
	return c.RedisAddr != "" && c.Throttle.MaxAttempts > 0
}
