// Package config provides application configuration layered from defaults,
// an optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Shop     ShopConfig     `koanf:"shop"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds connection settings. Driver selects postgres or sqlite;
// Path is only used by sqlite.
type DatabaseConfig struct {
	Driver        string `koanf:"driver"`
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	User          string `koanf:"user"`
	Password      string `koanf:"password"`
	Name          string `koanf:"name"`
	SSLMode       string `koanf:"sslmode"`
	Path          string `koanf:"path"`
	Debug         bool   `koanf:"debug"`
	MigrationsDir string `koanf:"migrations_dir"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `koanf:"dev"`
	Migrations bool `koanf:"migrations"`
	Seed       bool `koanf:"seed"`
	// RegistrationEnabled makes /register/ persist new accounts.
	RegistrationEnabled bool   `koanf:"registration_enabled"`
	SessionSecret       string `koanf:"session_secret"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ShopConfig holds storefront business settings.
type ShopConfig struct {
	ShippingFee     string        `koanf:"shipping_fee"`
	RecommendLimit  int           `koanf:"recommend_limit"`
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

// Fee returns the shipping fee as a decimal. Validate guarantees it parses.
func (s ShopConfig) Fee() decimal.Decimal {
	d, err := decimal.NewFromString(s.ShippingFee)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by
// golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return errors.New("database.path is required for sqlite")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	fee, err := decimal.NewFromString(c.Shop.ShippingFee)
	if err != nil {
		return fmt.Errorf("shop.shipping_fee: %w", err)
	}
	if fee.IsNegative() {
		return errors.New("shop.shipping_fee must not be negative")
	}
	if c.Shop.RecommendLimit <= 0 {
		return errors.New("shop.recommend_limit must be positive")
	}
	if c.Shop.LoginRateLimit < 0 {
		return errors.New("shop.login_rate_limit must not be negative")
	}
	if !c.App.Dev && c.App.SessionSecret == "" {
		return errors.New("app.session_secret is required outside dev mode")
	}
	return nil
}
