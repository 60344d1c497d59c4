// Package books is the book catalog store.
//
// Books are never deduplicated: logging "the same" title twice creates two
// rows. Repositories bound to a transaction are obtained with NewRepository(tx).
//
// # Usage
//
//	repo := books.NewRepository(db)
//	err := repo.CreateBook(ctx, &entities.Book{Title: title, Author: author})
package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/entities"
)

// Repository handles book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new catalog entry.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}
