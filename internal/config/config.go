// Package config loads process settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinKeyLength is the minimum BACKEND_KEY length in bytes.
const MinKeyLength = 32

var (
	ErrMissingBackendURL = errors.New("BACKEND_URL is required")
	ErrMissingBackendKey = errors.New("BACKEND_KEY is required")
	ErrShortBackendKey   = fmt.Errorf("BACKEND_KEY must be at least %d bytes", MinKeyLength)
)

// Config is the resolved process configuration.
type Config struct {
	BackendURL string `mapstructure:"backend_url"`
	BackendKey string `mapstructure:"backend_key"`

	Addr        string `mapstructure:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	Env         string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`

	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`

	ResendKey   string `mapstructure:"resend_key"`
	EmailFrom   string `mapstructure:"email_from"`
	OfficeEmail string `mapstructure:"office_email"`

	RedisURL         string `mapstructure:"redis_url"`
	KafkaBrokers     string `mapstructure:"kafka_brokers"`
	KafkaTopic       string `mapstructure:"kafka_topic"`
	ElasticsearchURL string `mapstructure:"elasticsearch_url"`
	SentryDSN        string `mapstructure:"sentry_dsn"`

	UploadDir     string `mapstructure:"upload_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	Timezone      string `mapstructure:"timezone"`

	SlowQueryMS        int     `mapstructure:"slow_query_ms"`
	SlowRequestMS      int     `mapstructure:"slow_request_ms"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`
	CORSOrigins        string  `mapstructure:"cors_origins"`
}

var keys = []string{
	"backend_url", "backend_key", "addr", "metrics_addr", "env", "log_level",
	"admin_email", "admin_password", "resend_key", "email_from", "office_email",
	"redis_url", "kafka_brokers", "kafka_topic", "elasticsearch_url", "sentry_dsn",
	"upload_dir", "public_base_url", "timezone",
	"slow_query_ms", "slow_request_ms", "rate_limit_per_second", "cors_origins",
}

// Load reads envFile (when present) into the environment, then resolves
// settings from the environment over defaults.
// POST: returns an error when a required setting is missing or malformed
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("metrics_addr", "127.0.0.1:9090")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("email_from", "Despacho <noreply@despacho.example>")
	v.SetDefault("kafka_topic", "lawoffice.events")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("timezone", "America/Mexico_City")
	v.SetDefault("slow_query_ms", 50)
	v.SetDefault("slow_request_ms", 500)
	v.SetDefault("rate_limit_per_second", 10.0)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about, so bind every key explicitly.
	for _, k := range keys {
		_ = v.BindEnv(k, strings.ToUpper(k))
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks required settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrMissingBackendURL
	}
	if c.BackendKey == "" {
		return ErrMissingBackendKey
	}
	if len(c.BackendKey) < MinKeyLength {
		return ErrShortBackendKey
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c Config) IsProduction() bool { return c.Env == "production" }

// SlowQuery returns the slow query threshold.
func (c Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// SlowRequest returns the slow request threshold.
func (c Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORSOrigins on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
