package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns sensible defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        "postgres",
			Host:          "localhost",
			Port:          5432,
			User:          "bookstore",
			Password:      "bookstore",
			Name:          "bookstore",
			SSLMode:       "disable",
			Path:          "bookstore.db",
			MigrationsDir: "migrations",
		},
		App: AppConfig{
			Dev: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Shop: ShopConfig{
			ShippingFee:     "5.00",
			RecommendLimit:  4,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
	}
}

// Load reads defaults, then the config file if any, then environment
// variables, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"port":                 "server.port",
	"server_read_timeout":  "server.read_timeout",
	"server_write_timeout": "server.write_timeout",
	"server_idle_timeout":  "server.idle_timeout",
	"shutdown_timeout":     "server.shutdown_timeout",

	"db_driver":         "database.driver",
	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_password":       "database.password",
	"db_name":           "database.name",
	"db_sslmode":        "database.sslmode",
	"db_path":           "database.path",
	"db_debug":          "database.debug",
	"db_migrations_dir": "database.migrations_dir",

	"dev":                  "app.dev",
	"migrations":           "app.migrations",
	"db_seed":              "app.seed",
	"registration_enabled": "app.registration_enabled",
	"session_secret":       "app.session_secret",

	"log_level":  "log.level",
	"log_format": "log.format",
	"log_caller": "log.caller",

	"shipping_fee":      "shop.shipping_fee",
	"recommend_limit":   "shop.recommend_limit",
	"login_rate_limit":  "shop.login_rate_limit",
	"login_rate_window": "shop.login_rate_window",
}

// envTransformFunc maps known environment variables onto config keys.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
