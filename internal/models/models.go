// Package models holds the gorm-mapped entities of the bookstore.
//
// Identifiers are opaque UUID strings assigned in BeforeCreate hooks, except
// Address (auto-increment) and Category (keyed by its type string). Money is
// carried as decimal.Decimal and stored as decimal(12,2).
package models

import "github.com/google/uuid"

// ensureID returns id unchanged, or a fresh UUID when it is empty.
func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Permission{}, &Profile{},
		&User{}, &Address{}, &Customer{}, &Staff{}, &Membership{},
		&Category{}, &Author{}, &Publisher{}, &Book{},
		&Cart{}, &CartItem{},
		&Voucher{}, &Order{}, &OrderItem{}, &Payment{}, &Shipping{}, &Invoice{}, &OrderHistory{},
		&Rating{},
		&Supplier{}, &ImportSlip{}, &ImportSlipDetail{},
	}
}
