package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single active cart of a customer; the unique index on
// CustomerID backs the get-or-create upsert.
type Cart struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	CustomerID string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"customer_id"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// CartItem is a (cart, book) pair; the composite unique index makes repeated
// adds increment Quantity instead of inserting a second row.
type CartItem struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	CartID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_cart_book" json:"cart_id"`
	Cart     *Cart  `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
	BookID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_cart_book" json:"book_id"`
	Book     *Book  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
	Quantity int    `gorm:"not null;default:1" json:"quantity"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	i.ID = ensureID(i.ID)
	return nil
}

// LineTotal is price × quantity; zero when the book is not loaded.
func (i *CartItem) LineTotal() decimal.Decimal {
	if i.Book == nil {
		return decimal.Zero
	}
	return i.Book.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// GetUserID implements the Ownable interface: the owner of a cart item is
// the customer of its cart. Returns "" when the cart is not loaded.
func (i *CartItem) GetUserID() string {
	if i.Cart == nil {
		return ""
	}
	return i.Cart.CustomerID
}
