package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/authsession/redis"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/adapters/memory"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/application"
)

// Config carries the settings shared by the API, worker and purger processes.
type Config struct {
	Port               string
	Environment        string
	LogLevel           string
	OTLPEndpoint       string
	OTLPInsecure       bool
	MarketplaceBaseURL string
	MarketplaceTimeout time.Duration
	HomeRoute          string
	SessionTTL         time.Duration
	PostgresDSN        string
	AuditRetention     time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisChannel       string
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
}

// LoadConfig reads and validates the configuration of the API and worker processes.
func LoadConfig() (Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ReadConfig reads an optional config.yaml from the working directory or
// /etc/provider-onboarding and lets environment variables override every key. It does not
// validate, so tools that need a subset of the settings can check their own.
func ReadConfig() (Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/provider-onboarding")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return decodeConfig(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_insecure", true)
	v.SetDefault("marketplace_base_url", "")
	v.SetDefault("marketplace_timeout", 10*time.Second)
	v.SetDefault("provider_home_route", application.DefaultHomeRoute)
	v.SetDefault("session_ttl", memory.DefaultSessionTTL)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("audit_retention", 30*24*time.Hour)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_channel", redis.DefaultChannel)
	v.SetDefault("temporal_address", client.DefaultHostPort)
	v.SetDefault("temporal_namespace", client.DefaultNamespace)
	v.SetDefault("temporal_disabled", false)
	v.AutomaticEnv()
	return v
}

func decodeConfig(v *viper.Viper) Config {
	return Config{
		Port:               strings.TrimSpace(v.GetString("port")),
		Environment:        v.GetString("environment"),
		LogLevel:           v.GetString("log_level"),
		OTLPEndpoint:       strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint")),
		OTLPInsecure:       v.GetBool("otel_exporter_otlp_insecure"),
		MarketplaceBaseURL: strings.TrimSpace(v.GetString("marketplace_base_url")),
		MarketplaceTimeout: v.GetDuration("marketplace_timeout"),
		HomeRoute:          strings.TrimSpace(v.GetString("provider_home_route")),
		SessionTTL:         v.GetDuration("session_ttl"),
		PostgresDSN:        strings.TrimSpace(v.GetString("postgres_dsn")),
		AuditRetention:     v.GetDuration("audit_retention"),
		RedisAddr:          strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),
		RedisChannel:       strings.TrimSpace(v.GetString("redis_channel")),
		TemporalAddress:    strings.TrimSpace(v.GetString("temporal_address")),
		TemporalNamespace:  strings.TrimSpace(v.GetString("temporal_namespace")),
		TemporalDisabled:   v.GetBool("temporal_disabled"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.MarketplaceBaseURL == "" {
		errs = append(errs, errors.New("MARKETPLACE_BASE_URL is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.MarketplaceTimeout <= 0 {
		errs = append(errs, errors.New("MARKETPLACE_TIMEOUT must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.AuditRetention <= 0 {
		errs = append(errs, errors.New("AUDIT_RETENTION must be positive"))
	}
	if c.RedisDB < 0 {
		errs = append(errs, errors.New("REDIS_DB must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
