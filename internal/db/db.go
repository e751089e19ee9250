// Package db opens the relational store, applies the schema and seeds
// reference data.
package db

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/models"
)

const connectAttempts = 10

var passwordRe = regexp.MustCompile(`(password=)(\S+)`)

// Open connects to the configured database, retrying while postgres starts.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.Path))
	default:
		dialector = postgres.Open(cfg.DSN())
	}
	gcfg := gormConfig(cfg.Debug)

	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		gdb, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		logging.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed, retrying")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := Ping(gdb); err != nil {
		return nil, err
	}

	target := cfg.Path
	if cfg.Driver != "sqlite" {
		target = passwordRe.ReplaceAllString(cfg.DSN(), `${1}***`)
	}
	logging.Info().Str("driver", cfg.Driver).Str("dsn", target).Msg("database connected")
	return gdb, nil
}

// OpenSQLite opens a sqlite database from a raw DSN; used for tests and
// local runs.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(SQLiteDSN(dsn)), gormConfig(false))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return gdb, nil
}

// SQLiteDSN turns on foreign key enforcement for every connection opened
// from dsn. sqlite leaves it off by default, which would make the ON DELETE
// rules of the schema no-ops.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

// Ping runs a trivial query against the database.
func Ping(gdb *gorm.DB) error {
	if err := gdb.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

// AutoMigrate creates or updates every table from the gorm models.
func AutoMigrate(gdb *gorm.DB) error {
	for _, m := range models.All() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}
