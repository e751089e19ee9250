package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer extends a User with shopping capability. Its primary key is the
// owning user's id, so a customer id and a user id are interchangeable.
type Customer struct {
	UserID    string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	User      *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Email     *string  `gorm:"uniqueIndex;size:254" json:"email,omitempty"`
	Tel       string   `gorm:"size:20" json:"tel,omitempty"`
	AddressID *uint    `gorm:"index" json:"address_id,omitempty"`
	Address   *Address `gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL" json:"address,omitempty"`
}

// Fullname returns the owning user's full name, or "" when not loaded.
func (c *Customer) Fullname() string {
	if c.User == nil {
		return ""
	}
	return c.User.Fullname
}

// Address is a free-form postal address belonging to a user.
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Num       string    `gorm:"size:20" json:"num,omitempty"`
	Street    string    `gorm:"size:200" json:"street,omitempty"`
	City      string    `gorm:"size:100" json:"city,omitempty"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// String formats the address on one line, skipping empty parts.
func (a Address) String() string {
	line := strings.TrimSpace(a.Num + " " + a.Street)
	if a.City == "" {
		return line
	}
	if line == "" {
		return a.City
	}
	return fmt.Sprintf("%s, %s", line, a.City)
}

// Membership tracks loyalty points of a customer.
type Membership struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Point      int       `gorm:"default:0" json:"point"`
	Level      string    `gorm:"size:50" json:"level,omitempty"`
	Status     string    `gorm:"size:50" json:"status,omitempty"`
	CustomerID string    `gorm:"type:varchar(36);index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Membership) BeforeCreate(*gorm.DB) error {
	m.ID = ensureID(m.ID)
	return nil
}
