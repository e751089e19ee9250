package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/models"
)

func newUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x", Fullname: username}
	require.NoError(t, db.Create(u).Error)
	return u
}

// newCustomer creates a user with a customer profile and returns its id.
func newCustomer(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	u := newUser(t, db, username)
	require.NoError(t, db.Create(&models.Customer{UserID: u.ID}).Error)
	return u.ID
}

type bookOpt func(*models.Book)

func byAuthor(a *models.Author) bookOpt {
	return func(b *models.Book) { b.AuthorID = &a.ID }
}

func inCategory(c string) bookOpt {
	return func(b *models.Book) { b.CategoryType = &c }
}

func newBook(t *testing.T, db *gorm.DB, title, price string, opts ...bookOpt) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Price: decimal.RequireFromString(price), Instock: 10}
	for _, o := range opts {
		o(b)
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
