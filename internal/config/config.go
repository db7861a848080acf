// Package config loads server configuration from flags, environment variables
// (prefixed FEEDBACK_) and an optional feedbackboard.yaml file.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix is prepended to every environment variable, e.g. FEEDBACK_PORT
const EnvPrefix = "FEEDBACK"

// DevSessionSecret is the default secret. It is refused in production.
const DevSessionSecret = "dev-session-secret-change-me"

// Config holds application configuration values
type Config struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Storage     string `mapstructure:"storage"`
	DatabaseURL string `mapstructure:"database_url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`

	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`

	FlashStore string `mapstructure:"flash_store"`
	RedisURL   string `mapstructure:"redis_url"`

	StaticDir string `mapstructure:"static_dir"`
}

// New returns a viper instance with defaults and environment binding applied
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", 8080)
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("storage", "memory")
	v.SetDefault("database_url", "")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("session_secret", DevSessionSecret)
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("bcrypt_cost", 0)
	v.SetDefault("flash_store", "cookie")
	v.SetDefault("redis_url", "redis://localhost:6379")
	v.SetDefault("static_dir", "")
}

// Load reads the config file (if any) and decodes all sources into a Config.
// An explicit file must exist; the default feedbackboard.yaml is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("feedbackboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required values are present and consistent
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("unknown log_format %q: must be json or text", c.LogFormat)
	}

	switch c.Storage {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when storage is %s", c.Storage)
		}
	default:
		return fmt.Errorf("unknown storage %q: must be memory, sqlite or postgres", c.Storage)
	}

	switch c.FlashStore {
	case "cookie":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("redis_url is required when flash_store is redis")
		}
	default:
		return fmt.Errorf("unknown flash_store %q: must be cookie or redis", c.FlashStore)
	}

	if c.SessionSecret == "" {
		return errors.New("session_secret is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}

	// zero selects bcrypt.DefaultCost
	if c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("bcrypt_cost %d is out of range: must be 0 or %d-%d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.IsProduction() {
		if c.SessionSecret == DevSessionSecret {
			return errors.New("session_secret must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("session_secret must be at least 32 characters in production")
		}
	}
	return nil
}
