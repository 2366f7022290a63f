// Package config defines the application configuration and its loader.
package config

import (
	"fmt"
	"time"
)

// Config holds the authorization server's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Issuer    IssuerConfig    `mapstructure:"issuer"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
	PprofEnabled bool   `mapstructure:"pprof_enabled"`
}

// IssuerConfig configures token issuance.
type IssuerConfig struct {
	// BaseURL is the issuer identifier placed in the iss claim and the
	// discovery document. No trailing slash.
	BaseURL string `mapstructure:"base_url"`
	// LoginURL is the interactive login page users are redirected to from
	// the authorization endpoint.
	LoginURL string `mapstructure:"login_url"`
	// SigningKeyPath points to a PEM-encoded RSA private key. When empty an
	// ephemeral key is generated at startup (development only).
	SigningKeyPath string `mapstructure:"signing_key_path"`
	// KeyID is the kid header applied to signed tokens and the JWKS entry.
	KeyID string `mapstructure:"key_id"`

	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	CodeTTL         time.Duration `mapstructure:"code_ttl"`
}

// DatabaseConfig configures the postgres pool.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig configures the redis client used for the code store, pending
// authorization store, revocation denylist, and rate limiter.
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// KafkaConfig configures the optional audit event publisher.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// RateLimitConfig configures the token/authorize endpoint rate limiter.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	Environment    string `mapstructure:"environment"`
}

// Validate checks essential configuration values.
func (c *Config) Validate() error {
	if c.Issuer.BaseURL == "" {
		return fmt.Errorf("issuer.base_url is required")
	}
	if c.Issuer.LoginURL == "" {
		return fmt.Errorf("issuer.login_url is required")
	}
	if c.Issuer.AccessTokenTTL <= 0 {
		return fmt.Errorf("issuer.access_token_ttl must be positive")
	}
	if c.Issuer.RefreshTokenTTL <= 0 {
		return fmt.Errorf("issuer.refresh_token_ttl must be positive")
	}
	if c.Issuer.CodeTTL <= 0 {
		return fmt.Errorf("issuer.code_ttl must be positive")
	}
	return nil
}
