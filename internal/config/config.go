package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Load when BRIGHTDATA_API_KEY is not set.
var ErrMissingAPIKey = errors.New("BRIGHTDATA_API_KEY is required")

const (
	DefaultDatasetID     = "gd_l1viktl72bvl7bjuj0"
	DefaultSERPZone      = "serp_api1"
	DefaultUnlockerZone  = "web_unlocker1"
	DefaultBaseURL       = "https://api.brightdata.com"
	DefaultProxyHost     = "brd.superproxy.io:33335"
	defaultEnvFile       = "configs/.env"
	redactedPlaceholder  = "[redacted]"
	defaultSnapshotTTL   = 7 * 24 * time.Hour
	defaultSnapshotStore = "bbolt"
)

// Config holds the application configuration loaded from the environment.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIKey       string `mapstructure:"brightdata_api_key"`
	BaseURL      string `mapstructure:"brightdata_base_url"`
	DatasetID    string `mapstructure:"brightdata_dataset_id"`
	SERPZone     string `mapstructure:"brightdata_serp_zone"`
	UnlockerZone string `mapstructure:"brightdata_unlocker_zone"`

	CustomerID    string `mapstructure:"brightdata_customer_id"`
	ProxyZone     string `mapstructure:"brightdata_proxy_zone"`
	ProxyPassword string `mapstructure:"brightdata_proxy_password"`
	ProxyHost     string `mapstructure:"brightdata_proxy_host"`

	RequestTimeoutSeconds  int64         `mapstructure:"request_timeout_seconds"`
	UnlockerTimeoutSeconds int64         `mapstructure:"unlocker_timeout_seconds"`
	RequestTimeout         time.Duration `mapstructure:"-"`
	UnlockerTimeout        time.Duration `mapstructure:"-"`

	SnapshotStore      string        `mapstructure:"snapshot_store"`
	SnapshotDBPath     string        `mapstructure:"snapshot_db_path"`
	SnapshotTTLSeconds int64         `mapstructure:"snapshot_ttl_seconds"`
	SnapshotTTL        time.Duration `mapstructure:"-"`

	SinksFile  string `mapstructure:"sinks_file"`
	ServerAddr string `mapstructure:"server_addr"`
}

// Load reads configuration from configs/.env (when present) and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load(defaultEnvFile)

	v := viper.New()

	v.SetDefault("app_name", "brightdata-go")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("brightdata_api_key", "")
	v.SetDefault("brightdata_base_url", DefaultBaseURL)
	v.SetDefault("brightdata_dataset_id", DefaultDatasetID)
	v.SetDefault("brightdata_serp_zone", DefaultSERPZone)
	v.SetDefault("brightdata_unlocker_zone", DefaultUnlockerZone)

	v.SetDefault("brightdata_customer_id", "")
	v.SetDefault("brightdata_proxy_zone", "")
	v.SetDefault("brightdata_proxy_password", "")
	v.SetDefault("brightdata_proxy_host", DefaultProxyHost)

	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("unlocker_timeout_seconds", 60)

	v.SetDefault("snapshot_store", defaultSnapshotStore)
	v.SetDefault("snapshot_db_path", "./data/snapshots.db")
	v.SetDefault("snapshot_ttl_seconds", int64(defaultSnapshotTTL/time.Second))

	v.SetDefault("sinks_file", "")
	v.SetDefault("server_addr", ":8080")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.DatasetID = fallback(c.DatasetID, DefaultDatasetID)
	c.SERPZone = fallback(c.SERPZone, DefaultSERPZone)
	c.UnlockerZone = fallback(c.UnlockerZone, DefaultUnlockerZone)
	c.ProxyHost = fallback(c.ProxyHost, DefaultProxyHost)

	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if c.UnlockerTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid unlocker_timeout_seconds (must be positive seconds)")
	}
	c.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second
	c.UnlockerTimeout = time.Duration(c.UnlockerTimeoutSeconds) * time.Second

	if c.SnapshotTTLSeconds <= 0 {
		return fmt.Errorf("invalid snapshot_ttl_seconds (must be positive seconds)")
	}
	c.SnapshotTTL = time.Duration(c.SnapshotTTLSeconds) * time.Second

	return nil
}

// HasProxyCredentials reports whether the proxy variant can be used.
func (c *Config) HasProxyCredentials() bool {
	return c != nil && c.CustomerID != "" && c.ProxyZone != "" && c.ProxyPassword != ""
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = redactedPlaceholder
	}
	if c.ProxyPassword != "" {
		c.ProxyPassword = redactedPlaceholder
	}
	return c
}

func fallback(val, def string) string {
	if v := strings.TrimSpace(val); v != "" {
		return v
	}
	return def
}
