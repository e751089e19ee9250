package models

import (
	"time"

	"gorm.io/gorm"
)

// Score bounds of a rating.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating is a customer's score for a book. A customer may rate the same book
// several times.
type Rating struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Score      int       `gorm:"not null" json:"score"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	CustomerID string    `gorm:"type:varchar(36);index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BookID     string    `gorm:"type:varchar(36);index;not null" json:"book_id"`
	Book       *Book     `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}
