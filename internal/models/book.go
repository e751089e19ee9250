package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is a catalog item. Author, publisher and category are optional
// references; deleting one of them nulls the reference and keeps the book.
type Book struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Title     string          `gorm:"size:500;not null;index" json:"title"`
	Instock   int             `gorm:"not null;default:0" json:"instock"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// Rate caches the average rating score; Ratings remain the source of truth.
	Rate decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rate"`

	AuthorID     *string    `gorm:"type:varchar(36);index" json:"author_id,omitempty"`
	Author       *Author    `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	PublisherID  *string    `gorm:"type:varchar(36);index" json:"publisher_id,omitempty"`
	Publisher    *Publisher `gorm:"foreignKey:PublisherID;constraint:OnDelete:SET NULL" json:"publisher,omitempty"`
	CategoryType *string    `gorm:"size:100;index" json:"category,omitempty"`
	Category     *Category  `gorm:"foreignKey:CategoryType;references:Type;constraint:OnDelete:SET NULL" json:"-"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	b.ID = ensureID(b.ID)
	return nil
}

// InStock reports whether at least one copy is available.
func (b *Book) InStock() bool {
	return b.Instock > 0
}

// AuthorName returns the author's name or "" when the book has none.
func (b *Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.Name
}

// PublisherName returns the publisher's name or "".
func (b *Book) PublisherName() string {
	if b.Publisher == nil {
		return ""
	}
	return b.Publisher.Name
}

// CategoryName returns the category type or "".
func (b *Book) CategoryName() string {
	if b.CategoryType == nil {
		return ""
	}
	return *b.CategoryType
}

type Author struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Address     string     `gorm:"size:500" json:"address,omitempty"`
	Email       string     `gorm:"size:254" json:"email,omitempty"`
}

func (a *Author) BeforeCreate(*gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

type Publisher struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Address   string    `gorm:"size:500" json:"address,omitempty"`
}

func (p *Publisher) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// Category is keyed by its type string ("fiction", "science", ...).
type Category struct {
	Type        string `gorm:"size:100;primaryKey" json:"type"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}
