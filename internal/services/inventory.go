package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/repository"
	"github.com/diewo77/go-bookstore/validation"
)

// InventoryService backs the staff back office.
type InventoryService struct {
	db     *gorm.DB
	books  *repository.Repository[models.Book]
	orders *repository.Repository[models.Order]
	slips  *repository.Repository[models.ImportSlip]
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{
		db:     db,
		books:  repository.New[models.Book](db),
		orders: repository.New[models.Order](db),
		slips:  repository.New[models.ImportSlip](db),
	}
}

// DashboardStats summarises the store for the staff home page.
type DashboardStats struct {
	BookCount     int64           `json:"book_count"`
	OrderCount    int64           `json:"order_count"`
	PendingOrders int64           `json:"pending_orders"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

func (s *InventoryService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.BookCount, err = s.books.Count(ctx); err != nil {
		return nil, err
	}
	if st.OrderCount, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if st.PendingOrders, err = s.orders.Count(ctx, repository.Where("status = ?", models.OrderStatusPending)); err != nil {
		return nil, err
	}
	books, err := s.books.Find(ctx, repository.Where("instock > 0"))
	if err != nil {
		return nil, err
	}
	st.StockValue = decimal.Zero
	for _, b := range books {
		st.StockValue = st.StockValue.Add(b.Price.Mul(decimal.NewFromInt(int64(b.Instock))))
	}
	return &st, nil
}

// NewBook is the add-book form.
type NewBook struct {
	Title       string          `form:"title" validate:"required,max=500"`
	Price       decimal.Decimal `form:"price" validate:"gt=0"`
	Instock     int             `form:"instock" validate:"gte=0"`
	AuthorID    string          `form:"author_id" validate:"required"`
	PublisherID string          `form:"publisher_id" validate:"required"`
	Category    string          `form:"category" validate:"required"`
}

// AddBook validates the form, resolves its references and creates the book.
// Validation failures are returned as validation.Violations; unknown
// references wrap ErrUnknownReference.
func (s *InventoryService) AddBook(ctx context.Context, in NewBook) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	v := validation.Struct(in)
	validation.MaxPlaces("price", in.Price, 2, v)
	if !v.Empty() {
		return nil, v
	}

	q := s.db.WithContext(ctx)
	var author models.Author
	if err := q.Where("id = ?", in.AuthorID).First(&author).Error; err != nil {
		return nil, referenceErr("author", in.AuthorID, err)
	}
	var publisher models.Publisher
	if err := q.Where("id = ?", in.PublisherID).First(&publisher).Error; err != nil {
		return nil, referenceErr("publisher", in.PublisherID, err)
	}
	var category models.Category
	if err := q.Where("type = ?", in.Category).First(&category).Error; err != nil {
		return nil, referenceErr("category", in.Category, err)
	}

	book := &models.Book{
		Title:        in.Title,
		Price:        in.Price,
		Instock:      in.Instock,
		AuthorID:     &author.ID,
		PublisherID:  &publisher.ID,
		CategoryType: &category.Type,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	book.Author, book.Publisher, book.Category = &author, &publisher, &category
	logging.Ctx(ctx).Info().Str("book_id", book.ID).Str("title", book.Title).Msg("book added")
	return book, nil
}

func referenceErr(kind, key string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %q", ErrUnknownReference, kind, key)
	}
	return err
}

// Inventory lists every book with its references.
func (s *InventoryService) Inventory(ctx context.Context) ([]models.Book, error) {
	return s.books.Find(ctx, append(withReferences(), repository.OrderBy("title"))...)
}

// References holds the choices offered by the add-book form.
type References struct {
	Authors    []models.Author    `json:"authors"`
	Publishers []models.Publisher `json:"publishers"`
	Categories []models.Category  `json:"categories"`
}

func (s *InventoryService) References(ctx context.Context) (*References, error) {
	var refs References
	q := s.db.WithContext(ctx)
	if err := q.Order("name").Find(&refs.Authors).Error; err != nil {
		return nil, err
	}
	if err := q.Order("name").Find(&refs.Publishers).Error; err != nil {
		return nil, err
	}
	if err := q.Order("type").Find(&refs.Categories).Error; err != nil {
		return nil, err
	}
	return &refs, nil
}

// Orders lists every order, newest first.
func (s *InventoryService) Orders(ctx context.Context) ([]models.Order, error) {
	return s.orders.Find(ctx, repository.Preload("Shipping"), repository.OrderBy("order_date DESC"))
}

// UpdateOrderStatus moves an order to next, appending to its history. When
// the order ships, the shipping record follows and takes the tracking
// number if one is given.
func (s *InventoryService) UpdateOrderStatus(ctx context.Context, orderID string, next models.OrderStatus, tracking string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Shipping").Where("id = ?", orderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !order.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatus, order.Status, next)
		}
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.OrderHistory{OrderID: order.ID, Status: next}).Error; err != nil {
			return err
		}
		if order.Shipping == nil {
			return nil
		}
		updates := map[string]any{}
		switch next {
		case models.OrderStatusShipped:
			updates["status"] = models.ShippingStatusShipped
			if t := strings.TrimSpace(tracking); t != "" {
				updates["tracking_number"] = t
			}
		case models.OrderStatusDelivered:
			updates["status"] = models.ShippingStatusDelivered
		case models.OrderStatusCancelled:
			updates["status"] = models.ShippingStatusCancelled
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(order.Shipping).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("order_id", order.ID).Str("status", string(next)).Msg("order status changed")
	return &order, nil
}

// Suppliers lists suppliers by name.
func (s *InventoryService) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// ImportLine is one book of a stock import.
type ImportLine struct {
	BookID   string
	Quantity int
	Price    decimal.Decimal
}

// ImportStock records an import slip and increments book stock. Lines with
// a zero quantity are skipped.
func (s *InventoryService) ImportStock(ctx context.Context, staffID, supplierID string, lines []ImportLine) (*models.ImportSlip, error) {
	slip := &models.ImportSlip{Total: decimal.Zero}
	if staffID != "" {
		slip.StaffID = &staffID
	}
	if supplierID != "" {
		slip.SupplierID = &supplierID
	}
	for _, l := range lines {
		if l.Quantity == 0 {
			continue
		}
		if l.Quantity < 0 || l.Price.IsNegative() {
			return nil, validation.Violations{"quantity": "too_small"}
		}
		v := validation.Violations{}
		validation.MaxPlaces("price", l.Price, 2, v)
		if !v.Empty() {
			return nil, v
		}
		total := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		slip.Details = append(slip.Details, models.ImportSlipDetail{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price, Total: total})
		slip.Total = slip.Total.Add(total)
	}
	if len(slip.Details) == 0 {
		return nil, validation.Violations{"quantity": "required"}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if supplierID != "" {
			var n int64
			if err := tx.Model(&models.Supplier{}).Where("id = ?", supplierID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: supplier %q", ErrUnknownReference, supplierID)
			}
		}
		for _, d := range slip.Details {
			res := tx.Model(&models.Book{}).Where("id = ?", d.BookID).
				Update("instock", gorm.Expr("instock + ?", d.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: book %q", ErrUnknownReference, d.BookID)
			}
		}
		return tx.Create(slip).Error
	})
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("slip_id", slip.ID).Int("lines", len(slip.Details)).Msg("stock imported")
	return slip, nil
}

// RecentImports lists the latest import slips.
func (s *InventoryService) RecentImports(ctx context.Context, limit int) ([]models.ImportSlip, error) {
	return s.slips.Find(ctx,
		repository.Preload("Supplier"),
		repository.OrderBy("import_date DESC"),
		func(db *gorm.DB) *gorm.DB { return db.Limit(limit) },
	)
}
