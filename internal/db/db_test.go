package db_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/db"
	"github.com/diewo77/go-bookstore/internal/db/dbtest"
	"github.com/diewo77/go-bookstore/internal/models"
)

func TestMigrate_AutoMigrateCreatesCoreTables(t *testing.T) {
	gdb, err := db.OpenSQLite("file:migrate_core?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	// SQL migrations are postgres-only; sqlite falls back to AutoMigrate
	err = db.Migrate(gdb, config.DatabaseConfig{Driver: "sqlite"}, true)
	require.NoError(t, err)
	for _, table := range []string{"books", "cart_items", "order_histories", "import_slip_details", "profile_permissions"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestPing(t *testing.T) {
	assert.NoError(t, db.Ping(dbtest.New(t)))
}

func TestSeedIdempotent(t *testing.T) {
	gdb := dbtest.New(t)
	require.NoError(t, db.Seed(gdb))
	require.NoError(t, db.Seed(gdb))

	var books, users, profiles, staff, customers int64
	gdb.Model(&models.Book{}).Count(&books)
	gdb.Model(&models.User{}).Count(&users)
	gdb.Model(&models.Profile{}).Count(&profiles)
	gdb.Model(&models.Staff{}).Count(&staff)
	gdb.Model(&models.Customer{}).Count(&customers)

	assert.EqualValues(t, 8, books)
	assert.EqualValues(t, 2, users)
	assert.EqualValues(t, 2, profiles)
	assert.EqualValues(t, 1, staff)
	assert.EqualValues(t, 1, customers)

	var authors int64
	gdb.Model(&models.Author{}).Where("name = ?", "Ursula K. Le Guin").Count(&authors)
	assert.EqualValues(t, 1, authors, "authors shared by several books are created once")
}

func TestSeedProfiles_Permissions(t *testing.T) {
	gdb := dbtest.New(t)
	require.NoError(t, db.SeedProfiles(gdb))

	var clerk models.Profile
	require.NoError(t, gdb.Preload("Permissions").Where("name = ?", models.RoleClerk).First(&clerk).Error)
	codes := make([]string, 0, len(clerk.Permissions))
	for _, p := range clerk.Permissions {
		codes = append(codes, p.Code())
	}
	assert.ElementsMatch(t, []string{"book:view", "inventory:list", "order:*", "import:*"}, codes)

	var manager models.Profile
	require.NoError(t, gdb.Preload("Permissions").Where("name = ?", models.RoleManager).First(&manager).Error)
	require.Len(t, manager.Permissions, 1)
	assert.Equal(t, "*:*", manager.Permissions[0].Code())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=on", db.SQLiteDSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", db.SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "app.db?_fk=1", db.SQLiteDSN("app.db?_fk=1"))
}

func TestDeleteRules(t *testing.T) {
	gdb := dbtest.New(t)

	author := &models.Author{Name: "Frank Herbert"}
	publisher := &models.Publisher{Name: "Chilton Books"}
	category := &models.Category{Type: "fiction"}
	for _, v := range []any{author, publisher, category} {
		require.NoError(t, gdb.Create(v).Error)
	}
	book := &models.Book{Title: "Dune", Price: decimal.NewFromInt(18),
		AuthorID: &author.ID, PublisherID: &publisher.ID, CategoryType: &category.Type}
	require.NoError(t, gdb.Create(book).Error)

	u := &models.User{Username: "ann", Password: "x"}
	require.NoError(t, gdb.Create(u).Error)
	require.NoError(t, gdb.Create(&models.Customer{UserID: u.ID}).Error)
	cart := &models.Cart{CustomerID: u.ID}
	require.NoError(t, gdb.Create(cart).Error)
	require.NoError(t, gdb.Create(&models.CartItem{CartID: cart.ID, BookID: book.ID, Quantity: 1}).Error)

	require.NoError(t, gdb.Delete(author).Error)
	require.NoError(t, gdb.Delete(publisher).Error)
	require.NoError(t, gdb.Delete(category).Error)

	var got models.Book
	require.NoError(t, gdb.First(&got, "id = ?", book.ID).Error)
	assert.Nil(t, got.AuthorID)
	assert.Nil(t, got.PublisherID)
	assert.Nil(t, got.CategoryType)

	require.NoError(t, gdb.Delete(cart).Error)
	var items int64
	gdb.Model(&models.CartItem{}).Count(&items)
	assert.Zero(t, items, "cart items go with their cart")

	err := gdb.Create(&models.Staff{UserID: u.ID, Role: "nobody"}).Error
	assert.Error(t, err, "a staff role must name an existing profile")
}
