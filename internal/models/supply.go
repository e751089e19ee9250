package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supplier provides books for stock imports.
type Supplier struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Address   string    `gorm:"size:500" json:"address,omitempty"`
	Tel       string    `gorm:"size:20" json:"tel,omitempty"`
	Email     string    `gorm:"size:254" json:"email,omitempty"`
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

// ImportSlip records one stock replenishment from a supplier.
type ImportSlip struct {
	ID         string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	ImportDate time.Time          `gorm:"not null" json:"import_date"`
	Total      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"total"`
	StaffID    *string            `gorm:"type:varchar(36);index" json:"staff_id,omitempty"`
	Staff      *Staff             `gorm:"foreignKey:StaffID;references:UserID;constraint:OnDelete:SET NULL" json:"-"`
	ManagerID  *string            `gorm:"type:varchar(36);index" json:"manager_id,omitempty"`
	Manager    *Staff             `gorm:"foreignKey:ManagerID;references:UserID;constraint:OnDelete:SET NULL" json:"-"`
	SupplierID *string            `gorm:"type:varchar(36);index" json:"supplier_id,omitempty"`
	Supplier   *Supplier          `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL" json:"supplier,omitempty"`
	Details    []ImportSlipDetail `gorm:"foreignKey:ImportSlipID" json:"details,omitempty"`
}

func (s *ImportSlip) BeforeCreate(*gorm.DB) error {
	s.ID = ensureID(s.ID)
	if s.ImportDate.IsZero() {
		s.ImportDate = time.Now()
	}
	return nil
}

type ImportSlipDetail struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	ImportSlipID string          `gorm:"type:varchar(36);index;not null" json:"import_slip_id"`
	ImportSlip   *ImportSlip     `gorm:"foreignKey:ImportSlipID;constraint:OnDelete:CASCADE" json:"-"`
	BookID       string          `gorm:"type:varchar(36);index;not null" json:"book_id"`
	Book         *Book           `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
}

func (d *ImportSlipDetail) BeforeCreate(*gorm.DB) error {
	d.ID = ensureID(d.ID)
	return nil
}
