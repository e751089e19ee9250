// Package recommend suggests books to a customer from purchase history and
// ratings.
//
// Three tiers are tried in order, each chosen by the presence of its signal
// rather than by how many results it yields:
//
//   - cold start: the customer bought nothing, so the best rated books win;
//   - collaborative: other customers bought at least one of the same books,
//     so what they bought most often is suggested;
//   - category: history exists but nobody shares it, so the best rated
//     books of the purchased categories are suggested.
//
// A book the customer already bought is never suggested.
package recommend

import (
	"context"
	"fmt"

	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/metrics"
	"github.com/diewo77/go-bookstore/internal/models"
)

// DefaultLimit is the number of books returned when no limit is configured.
const DefaultLimit = 4

// Tier names the strategy that produced a result.
type Tier string

const (
	TierColdStart     Tier = "cold_start"
	TierCollaborative Tier = "collaborative"
	TierCategory      Tier = "category"
)

// Source provides the purchase and rating data the engine ranks. Ranked id
// lists are ordered best first with ties broken by ascending book id.
type Source interface {
	// PurchasedBookIDs lists the distinct books the customer ordered.
	PurchasedBookIDs(ctx context.Context, customerID string) ([]string, error)
	// SimilarCustomers lists the other customers who ordered any of bookIDs.
	SimilarCustomers(ctx context.Context, customerID string, bookIDs []string) ([]string, error)
	// CoPurchased ranks books ordered by customers by number of order lines,
	// skipping exclude.
	CoPurchased(ctx context.Context, customers, exclude []string, limit int) ([]string, error)
	// Categories lists the distinct categories of bookIDs.
	Categories(ctx context.Context, bookIDs []string) ([]string, error)
	// TopRated ranks rated books by average score. An empty categories
	// slice means every category.
	TopRated(ctx context.Context, categories, exclude []string, limit int) ([]string, error)
	// Books loads books by id, in any order.
	Books(ctx context.Context, ids []string) ([]models.Book, error)
}

// Result is a recommendation with the tier that produced it.
type Result struct {
	Tier  Tier          `json:"tier"`
	Books []models.Book `json:"books"`
}

type Engine struct {
	src   Source
	limit int
}

// NewEngine builds an engine returning at most limit books.
func NewEngine(src Source, limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{src: src, limit: limit}
}

// Recommend returns up to the configured number of books for customerID.
func (e *Engine) Recommend(ctx context.Context, customerID string) ([]models.Book, error) {
	res, err := e.Explain(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return res.Books, nil
}

// Explain is Recommend plus the tier used.
func (e *Engine) Explain(ctx context.Context, customerID string) (*Result, error) {
	tier, ids, err := e.rank(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("recommend %s: %w", tier, err)
	}
	books, err := e.load(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load recommended books: %w", err)
	}
	metrics.RecommendationsTotal.WithLabelValues(string(tier)).Inc()
	logging.Ctx(ctx).Debug().Str("customer_id", customerID).Str("tier", string(tier)).Int("count", len(books)).Msg("recommendations computed")
	return &Result{Tier: tier, Books: books}, nil
}

func (e *Engine) rank(ctx context.Context, customerID string) (Tier, []string, error) {
	purchased, err := e.src.PurchasedBookIDs(ctx, customerID)
	if err != nil {
		return TierColdStart, nil, err
	}
	if len(purchased) == 0 {
		ids, err := e.src.TopRated(ctx, nil, nil, e.limit)
		return TierColdStart, ids, err
	}

	similar, err := e.src.SimilarCustomers(ctx, customerID, purchased)
	if err != nil {
		return TierCollaborative, nil, err
	}
	if len(similar) > 0 {
		ids, err := e.src.CoPurchased(ctx, similar, purchased, e.limit)
		return TierCollaborative, ids, err
	}

	categories, err := e.src.Categories(ctx, purchased)
	if err != nil || len(categories) == 0 {
		return TierCategory, nil, err
	}
	ids, err := e.src.TopRated(ctx, categories, purchased, e.limit)
	return TierCategory, ids, err
}

// load fetches books and restores the ranking order.
func (e *Engine) load(ctx context.Context, ids []string) ([]models.Book, error) {
	if len(ids) > e.limit {
		ids = ids[:e.limit]
	}
	if len(ids) == 0 {
		return []models.Book{}, nil
	}
	books, err := e.src.Books(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	out := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
