package recommend

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/models"
)

// GormSource implements Source over the relational schema.
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

// orderLines joins order items to their orders, ignoring lines whose book
// was deleted.
func (s *GormSource) orderLines(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.book_id IS NOT NULL")
}

func (s *GormSource) PurchasedBookIDs(ctx context.Context, customerID string) ([]string, error) {
	var ids []string
	err := s.orderLines(ctx).
		Where("orders.customer_id = ?", customerID).
		Distinct().Order("order_items.book_id").
		Pluck("order_items.book_id", &ids).Error
	return ids, err
}

func (s *GormSource) SimilarCustomers(ctx context.Context, customerID string, bookIDs []string) ([]string, error) {
	var ids []string
	if len(bookIDs) == 0 {
		return ids, nil
	}
	err := s.orderLines(ctx).
		Where("order_items.book_id IN ?", bookIDs).
		Where("orders.customer_id IS NOT NULL AND orders.customer_id <> ?", customerID).
		Distinct().Order("orders.customer_id").
		Pluck("orders.customer_id", &ids).Error
	return ids, err
}

type rankedRow struct {
	BookID string
	Score  float64
}

func bookIDsOf(rows []rankedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.BookID
	}
	return out
}

func (s *GormSource) CoPurchased(ctx context.Context, customers, exclude []string, limit int) ([]string, error) {
	if len(customers) == 0 {
		return nil, nil
	}
	q := s.orderLines(ctx).
		Select("order_items.book_id AS book_id, COUNT(*) AS score").
		Where("orders.customer_id IN ?", customers)
	if len(exclude) > 0 {
		q = q.Where("order_items.book_id NOT IN ?", exclude)
	}
	var rows []rankedRow
	err := q.Group("order_items.book_id").
		Order("score DESC, order_items.book_id").
		Limit(limit).
		Scan(&rows).Error
	return bookIDsOf(rows), err
}

func (s *GormSource) Categories(ctx context.Context, bookIDs []string) ([]string, error) {
	var cats []string
	if len(bookIDs) == 0 {
		return cats, nil
	}
	err := s.db.WithContext(ctx).Model(&models.Book{}).
		Where("id IN ? AND category_type IS NOT NULL", bookIDs).
		Distinct().Order("category_type").
		Pluck("category_type", &cats).Error
	return cats, err
}

func (s *GormSource) TopRated(ctx context.Context, categories, exclude []string, limit int) ([]string, error) {
	q := s.db.WithContext(ctx).
		Table("ratings").
		Select("ratings.book_id AS book_id, AVG(ratings.score) AS score").
		Joins("JOIN books ON books.id = ratings.book_id")
	if len(categories) > 0 {
		q = q.Where("books.category_type IN ?", categories)
	}
	if len(exclude) > 0 {
		q = q.Where("ratings.book_id NOT IN ?", exclude)
	}
	var rows []rankedRow
	err := q.Group("ratings.book_id").
		Order("score DESC, ratings.book_id").
		Limit(limit).
		Scan(&rows).Error
	return bookIDsOf(rows), err
}

func (s *GormSource) Books(ctx context.Context, bookIDs []string) ([]models.Book, error) {
	var books []models.Book
	if len(bookIDs) == 0 {
		return books, nil
	}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("id IN ?", bookIDs).
		Find(&books).Error
	return books, err
}
