package services

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-bookstore/internal/models"
)

// Line is a cart item with its derived line total.
type Line struct {
	Item  models.CartItem `json:"item"`
	Total decimal.Decimal `json:"total"`
}

// CartView is a priced cart. Totals are always derived from the current
// book prices and never stored.
type CartView struct {
	CartID string          `json:"cart_id,omitempty"`
	Items  []Line          `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// Empty reports whether the cart has no lines.
func (v *CartView) Empty() bool { return v == nil || len(v.Items) == 0 }

// CheckoutView previews an order before placement.
type CheckoutView struct {
	Cart        *CartView       `json:"cart"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
	// Token makes the following place-order request idempotent.
	Token string `json:"token"`
}

// PriceItems computes line totals and the grand total of items. Books must
// be preloaded.
func PriceItems(items []models.CartItem) ([]Line, decimal.Decimal) {
	lines := make([]Line, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		lt := it.LineTotal()
		lines = append(lines, Line{Item: it, Total: lt})
		total = total.Add(lt)
	}
	return lines, total
}

// NewCheckout adds the shipping fee to a priced cart.
func NewCheckout(cart *CartView, fee decimal.Decimal, token string) *CheckoutView {
	return &CheckoutView{
		Cart:        cart,
		Subtotal:    cart.Total,
		ShippingFee: fee,
		Total:       cart.Total.Add(fee),
		Token:       token,
	}
}
