// Package repository provides a small generic data-access layer over gorm.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Get when no row matches.
var ErrNotFound = errors.New("record not found")

// Scope narrows a query, e.g. a WHERE clause or a Preload.
type Scope func(*gorm.DB) *gorm.DB

// Repository is a gorm-backed store for one entity type.
type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create %T: %w", entity, err)
	}
	return nil
}

// Get loads the row with primary key id.
func (r *Repository[T]) Get(ctx context.Context, id any, scopes ...Scope) (*T, error) {
	var entity T
	err := r.apply(ctx, scopes).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// First loads the first row matching scopes.
func (r *Repository[T]) First(ctx context.Context, scopes ...Scope) (*T, error) {
	var entity T
	err := r.apply(ctx, scopes).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Find lists rows matching scopes.
func (r *Repository[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	var out []T
	if err := r.apply(ctx, scopes).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := r.apply(ctx, scopes).Model(new(T)).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Exists reports whether a row matches scopes.
func (r *Repository[T]) Exists(ctx context.Context, scopes ...Scope) (bool, error) {
	n, err := r.Count(ctx, scopes...)
	return n > 0, err
}

func (r *Repository[T]) apply(ctx context.Context, scopes []Scope) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, s := range scopes {
		q = s(q)
	}
	return q
}

// Where is a Scope for a condition with arguments.
func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// Preload is a Scope preloading an association.
func Preload(assoc string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(assoc, args...) }
}

// OrderBy is a Scope adding an ORDER BY clause.
func OrderBy(value string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Order(value) }
}
