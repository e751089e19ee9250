package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated identity. Shopping and back-office
// capabilities hang off it as 1:1 Customer and Staff extensions.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed in JSON
	Fullname  string    `gorm:"size:255" json:"fullname"`
	IsStaff   bool      `gorm:"default:false" json:"is_staff"`

	Customer *Customer `gorm:"foreignKey:UserID" json:"customer,omitempty"`
	Staff    *Staff    `gorm:"foreignKey:UserID" json:"staff,omitempty"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

// Staff extends a User with back-office capability.
// Role names the authorization Profile granting the staff member's permissions.
type Staff struct {
	UserID  string   `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role    string   `gorm:"size:50;not null;index" json:"role"`
	Profile *Profile `gorm:"foreignKey:Role;references:Name" json:"profile,omitempty"`
}

// Well-known staff roles seeded at startup.
const (
	RoleManager = "manager"
	RoleClerk   = "clerk"
)
