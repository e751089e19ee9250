// Package dbtest opens isolated in-memory sqlite databases for tests.
package dbtest

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/db"
)

// New returns a migrated in-memory database private to t. Each test gets its
// own shared-cache name so parallel packages do not collide.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenSQLite("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
