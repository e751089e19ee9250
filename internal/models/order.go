package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the immutable record of a placed cart. The customer reference is
// nulled if the customer is deleted so that the order survives.
type Order struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderDate  time.Time       `gorm:"not null;index" json:"order_date"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status     OrderStatus     `gorm:"size:50;not null;default:'pending'" json:"status"`
	CustomerID *string         `gorm:"type:varchar(36);index" json:"customer_id,omitempty"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID;references:UserID;constraint:OnDelete:SET NULL" json:"-"`
	// RequestToken makes placement idempotent for a client-supplied token.
	RequestToken *string `gorm:"size:64;uniqueIndex" json:"-"`

	Items    []OrderItem    `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payment  *Payment       `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	Shipping *Shipping      `gorm:"foreignKey:OrderID" json:"shipping,omitempty"`
	Invoice  *Invoice       `gorm:"foreignKey:OrderID" json:"invoice,omitempty"`
	History  []OrderHistory `gorm:"foreignKey:OrderID" json:"history,omitempty"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	o.ID = ensureID(o.ID)
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// ItemsTotal sums the frozen line totals of the loaded items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total)
	}
	return total
}

// GetUserID implements the Ownable interface.
func (o *Order) GetUserID() string {
	if o.CustomerID == nil {
		return ""
	}
	return *o.CustomerID
}

// OrderItem snapshots a cart line: Price and Total are copied from the book
// at order time and never recomputed.
type OrderItem struct {
	ID       string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID  string          `gorm:"type:varchar(36);index;not null" json:"order_id"`
	Order    *Order          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	BookID   *string         `gorm:"type:varchar(36);index" json:"book_id,omitempty"`
	Book     *Book           `gorm:"foreignKey:BookID;constraint:OnDelete:SET NULL" json:"book,omitempty"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	i.ID = ensureID(i.ID)
	return nil
}

// PaymentStatus is the state of a stored payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is stored alongside every order; nothing is charged.
type Payment struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status    PaymentStatus   `gorm:"size:50;not null;default:'pending'" json:"status"`
	OrderID   string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	Order     *Order          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// Shipping statuses. Shipping follows the order once it leaves pending.
const (
	ShippingStatusPending   = "pending"
	ShippingStatusShipped   = "shipped"
	ShippingStatusDelivered = "delivered"
	ShippingStatusCancelled = "cancelled"
)

type Shipping struct {
	ID             string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	TrackingNumber *string         `gorm:"size:100;uniqueIndex" json:"tracking_number,omitempty"`
	Fee            decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"fee"`
	Status         string          `gorm:"size:50;not null;default:'pending'" json:"status"`
	OrderID        string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	Order          *Order          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Shipping) BeforeCreate(*gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

// OrderHistory is an append-only log of order status changes.
type OrderHistory struct {
	ID       string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Status   OrderStatus `gorm:"size:50;not null" json:"status"`
	UpdateAt time.Time   `gorm:"autoCreateTime" json:"update_at"`
	OrderID  string      `gorm:"type:varchar(36);index;not null" json:"order_id"`
	Order    *Order      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (h *OrderHistory) BeforeCreate(*gorm.DB) error {
	h.ID = ensureID(h.ID)
	return nil
}

type Voucher struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Code      string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Discount  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

func (v *Voucher) BeforeCreate(*gorm.DB) error {
	v.ID = ensureID(v.ID)
	return nil
}

type Invoice struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Date      time.Time       `gorm:"not null" json:"date"`
	VoucherID *string         `gorm:"type:varchar(36);index" json:"voucher_id,omitempty"`
	Voucher   *Voucher        `gorm:"foreignKey:VoucherID;constraint:OnDelete:SET NULL" json:"-"`
	OrderID   string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	Order     *Order          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	i.ID = ensureID(i.ID)
	return nil
}
