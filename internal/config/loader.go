package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wangov/sso/pkg/constants"
)

// LoadConfig loads configuration from file and environment variables.
// File lookup order: /etc/wangov-sso/config.yaml, then ./config.yaml.
// Environment variables use the SSO_ prefix with dots replaced by
// underscores, e.g. SSO_SERVER_PORT.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.pprof_enabled", false)

	v.SetDefault("issuer.base_url", "http://localhost:8080")
	v.SetDefault("issuer.login_url", "http://localhost:3000/login")
	v.SetDefault("issuer.key_id", "sso-signing-key-1")
	v.SetDefault("issuer.access_token_ttl", constants.AccessTokenTTL)
	v.SetDefault("issuer.refresh_token_ttl", constants.RefreshTokenTTL)
	v.SetDefault("issuer.code_ttl", constants.AuthorizationCodeTTL)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sso")
	v.SetDefault("database.database", "sso")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "sso.audit")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 60)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "wangov-sso")
	v.SetDefault("tracing.environment", "development")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/wangov-sso/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SSO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
