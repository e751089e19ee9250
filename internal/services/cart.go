package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-bookstore/gate"
	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/metrics"
	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/repository"
)

// Authorizer decides whether a user may act on a resource.
type Authorizer interface {
	Authorize(ctx context.Context, user string, action gate.Action, resourceType string, resource any) error
}

// CartService runs the cart, checkout and order placement flow.
type CartService struct {
	db     *gorm.DB
	books  *repository.Repository[models.Book]
	orders *repository.Repository[models.Order]
	authz  Authorizer
	fee    decimal.Decimal
}

func NewCartService(db *gorm.DB, authz Authorizer, shippingFee decimal.Decimal) *CartService {
	return &CartService{
		db:     db,
		books:  repository.New[models.Book](db),
		orders: repository.New[models.Order](db),
		authz:  authz,
		fee:    shippingFee,
	}
}

// ShippingFee is the flat fee added at checkout.
func (s *CartService) ShippingFee() decimal.Decimal { return s.fee }

func requireCustomer(ctx context.Context, db *gorm.DB, userID string) error {
	if userID == "" {
		return ErrNoCustomer
	}
	var n int64
	if err := db.WithContext(ctx).Model(&models.Customer{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNoCustomer
	}
	return nil
}

// RequireCustomer returns ErrNoCustomer unless userID has a customer profile.
func (s *CartService) RequireCustomer(ctx context.Context, userID string) error {
	return requireCustomer(ctx, s.db, userID)
}

// cartFor returns the customer's cart, creating it when absent. The unique
// index on customer_id turns concurrent creations into a no-op.
func cartFor(ctx context.Context, db *gorm.DB, customerID string) (*models.Cart, error) {
	q := db.WithContext(ctx)
	if err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		DoNothing: true,
	}).Create(&models.Cart{CustomerID: customerID}).Error; err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	var cart models.Cart
	if err := q.Where("customer_id = ?", customerID).First(&cart).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &cart, nil
}

func loadItems(ctx context.Context, db *gorm.DB, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.WithContext(ctx).
		Preload("Book").Preload("Book.Author").
		Joins("JOIN books ON books.id = cart_items.book_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("books.title").
		Find(&items).Error
	return items, err
}

// View returns the customer's priced cart, creating an empty one if needed.
func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	if err := requireCustomer(ctx, s.db, userID); err != nil {
		return nil, err
	}
	cart, err := cartFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, s.db, cart.ID)
	if err != nil {
		return nil, err
	}
	lines, total := PriceItems(items)
	return &CartView{CartID: cart.ID, Items: lines, Total: total}, nil
}

// AddItem puts one copy of a book in the customer's cart. Adding a book that
// is already present increments its quantity. Stock is not checked.
func (s *CartService) AddItem(ctx context.Context, userID, bookID string) (*models.CartItem, error) {
	book, err := s.books.Get(ctx, bookID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := requireCustomer(ctx, s.db, userID); err != nil {
		return nil, err
	}
	cart, err := cartFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx)
	err = q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("cart_items.quantity + 1")}),
	}).Create(&models.CartItem{CartID: cart.ID, BookID: book.ID, Quantity: 1}).Error
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	var item models.CartItem
	if err := q.Preload("Book").Where("cart_id = ? AND book_id = ?", cart.ID, book.ID).First(&item).Error; err != nil {
		return nil, err
	}
	metrics.CartAddsTotal.Inc()
	logging.Ctx(ctx).Debug().Str("cart_id", cart.ID).Str("book_id", book.ID).Int("quantity", item.Quantity).Msg("cart item added")
	return &item, nil
}

// RemoveItem deletes a cart line owned by the user.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	var item models.CartItem
	err := s.db.WithContext(ctx).Preload("Cart").Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, userID, gate.ActionDelete, "cart_item", &item); err != nil {
		logging.Ctx(ctx).Warn().Str("user_id", userID).Str("item_id", itemID).Msg("cart item removal denied")
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", item.ID).Error
}

// Checkout prices the cart and adds the shipping fee.
func (s *CartService) Checkout(ctx context.Context, userID string) (*CheckoutView, error) {
	cart, err := s.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}
	return NewCheckout(cart, s.fee, uuid.NewString()), nil
}

// PlaceOrder converts the customer's cart into an order. Order, items,
// payment, shipping and the first history entry are written and the cart is
// emptied in one transaction. A token already used by this customer returns
// the existing order.
func (s *CartService) PlaceOrder(ctx context.Context, userID, token string) (*models.Order, error) {
	if err := requireCustomer(ctx, s.db, userID); err != nil {
		return nil, err
	}
	if existing, err := s.orderByToken(ctx, userID, token); existing != nil || err != nil {
		return existing, err
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Where("customer_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		items, err := loadItems(ctx, tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		customerID := userID
		o := &models.Order{Status: models.OrderStatusPending, CustomerID: &customerID}
		if token != "" {
			o.RequestToken = &token
		}
		for _, it := range items {
			bookID := it.BookID
			o.Items = append(o.Items, models.OrderItem{
				BookID:   &bookID,
				Quantity: it.Quantity,
				Price:    it.Book.Price,
				Total:    it.LineTotal(),
			})
		}
		o.TotalPrice = o.ItemsTotal()
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		payment := &models.Payment{OrderID: o.ID, Amount: o.TotalPrice, Status: models.PaymentStatusPending}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		shipping := &models.Shipping{OrderID: o.ID, Fee: s.fee, Status: models.ShippingStatusPending}
		if err := tx.Create(shipping).Error; err != nil {
			return fmt.Errorf("create shipping: %w", err)
		}
		if err := tx.Create(&models.OrderHistory{OrderID: o.ID, Status: models.OrderStatusPending}).Error; err != nil {
			return fmt.Errorf("create order history: %w", err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		o.Payment = payment
		o.Shipping = shipping
		order = o
		return nil
	})
	if err != nil {
		// a concurrent submit with the same token may have won the unique index
		existing, lookupErr := s.orderByToken(ctx, userID, token)
		switch {
		case existing != nil:
			return existing, nil
		case errors.Is(lookupErr, ErrNotOwner):
			return nil, lookupErr
		}
		return nil, err
	}

	metrics.OrdersPlacedTotal.Inc()
	metrics.OrderValueTotal.Add(order.TotalPrice.InexactFloat64())
	logging.Ctx(ctx).Info().Str("order_id", order.ID).Str("customer_id", userID).Str("total", order.TotalPrice.StringFixed(2)).Msg("order placed")
	return order, nil
}

// orderByToken returns the order already placed with token, or nil when
// there is none. An order placed by someone else yields ErrNotOwner.
func (s *CartService) orderByToken(ctx context.Context, userID, token string) (*models.Order, error) {
	if token == "" {
		return nil, nil
	}
	existing, err := s.orders.First(ctx, repository.Where("request_token = ?", token))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if err := s.authz.Authorize(ctx, userID, gate.ActionView, "order", existing); err != nil {
		logging.Ctx(ctx).Warn().Str("user_id", userID).Str("order_id", existing.ID).Msg("order token reused by another customer")
		return nil, ErrNotOwner
	}
	return existing, nil
}

// History lists the customer's orders, newest first.
func (s *CartService) History(ctx context.Context, userID string) ([]models.Order, error) {
	if err := requireCustomer(ctx, s.db, userID); err != nil {
		return nil, err
	}
	return s.orders.Find(ctx,
		repository.Where("customer_id = ?", userID),
		repository.Preload("Items"), repository.Preload("Items.Book"),
		repository.OrderBy("order_date DESC"),
	)
}
