package db

import (
	"errors"
	"fmt"
	"path/filepath"

	migrate "github.com/golang-migrate/migrate/v4"
	// registers the postgres driver and file source for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/logging"
)

// coreTables must exist once the schema is applied.
var coreTables = []string{"users", "customers", "books", "carts", "cart_items", "orders", "order_items", "payments", "shippings"}

// Migrate applies the schema. Postgres deployments with app.migrations set
// run the versioned SQL files; everything else uses AutoMigrate.
func Migrate(gdb *gorm.DB, dbCfg config.DatabaseConfig, useSQL bool) error {
	if useSQL && dbCfg.Driver == "postgres" {
		logging.Info().Str("dir", dbCfg.MigrationsDir).Msg("running sql migrations")
		if err := RunSQLMigrations(dbCfg.MigrationsDir, dbCfg.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(gdb); err != nil {
		return err
	}

	for _, table := range coreTables {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations executes the migrations in dir with golang-migrate.
func RunSQLMigrations(dir, databaseURL string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
