package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/repository"
	"github.com/diewo77/go-bookstore/validation"
)

// CatalogService serves book browsing, search and rating.
type CatalogService struct {
	db      *gorm.DB
	books   *repository.Repository[models.Book]
	ratings *repository.Repository[models.Rating]
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		db:      db,
		books:   repository.New[models.Book](db),
		ratings: repository.New[models.Rating](db),
	}
}

func withReferences() []repository.Scope {
	return []repository.Scope{repository.Preload("Author"), repository.Preload("Publisher"), repository.Preload("Category")}
}

// List returns every book ordered by title.
func (s *CatalogService) List(ctx context.Context) ([]models.Book, error) {
	return s.books.Find(ctx, append(withReferences(), repository.OrderBy("title"))...)
}

// Detail returns one book with its references.
func (s *CatalogService) Detail(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.Get(ctx, id, withReferences()...)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

// Search matches q case-insensitively against title, author name and
// category type. A book matching several fields is returned once. A blank
// query matches nothing.
func (s *CatalogService) Search(ctx context.Context, q string) ([]models.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Book{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	match := func(db *gorm.DB) *gorm.DB {
		authors := s.db.Model(&models.Author{}).Select("id").Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern)
		return db.Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern).
			Or("author_id IN (?)", authors).
			Or("LOWER(category_type) LIKE ? ESCAPE '\\'", pattern)
	}
	return s.books.Find(ctx, append(withReferences(), match, repository.OrderBy("title"))...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ratings lists a book's ratings, newest first.
func (s *CatalogService) Ratings(ctx context.Context, bookID string) ([]models.Rating, error) {
	return s.ratings.Find(ctx, repository.Where("book_id = ?", bookID), repository.OrderBy("created_at DESC"))
}

// Rate records a customer's score for a book and refreshes the book's cached
// average in the same transaction.
func (s *CatalogService) Rate(ctx context.Context, userID, bookID string, score int, comment string) (*models.Rating, error) {
	if score < models.MinScore || score > models.MaxScore {
		return nil, validation.Violations{"score": "out_of_range"}
	}
	if err := requireCustomer(ctx, s.db, userID); err != nil {
		return nil, err
	}
	if _, err := s.Detail(ctx, bookID); err != nil {
		return nil, err
	}

	rating := &models.Rating{CustomerID: userID, BookID: bookID, Score: score, Comment: strings.TrimSpace(comment)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}
		var scores []int
		if err := tx.Model(&models.Rating{}).Where("book_id = ?", bookID).Pluck("score", &scores).Error; err != nil {
			return err
		}
		return tx.Model(&models.Book{}).Where("id = ?", bookID).Update("rate", averageScore(scores)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("rate book: %w", err)
	}
	return rating, nil
}

func averageScore(scores []int) decimal.Decimal {
	if len(scores) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, sc := range scores {
		sum += sc
	}
	return decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(len(scores))), 2)
}
