// Package readings persists Progress/Rating pairs and runs the
// Book ⋈ Progress ⋈ Rating join that backs reading-record views.
//
// Every multi-row write runs in one transaction: a Book never exists without
// its Progress and Rating, and a reader never sees a Rating update without
// the matching Progress update.
package readings

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/database/books"
	"github.com/mrlokans/readtrack/internal/entities"
)

var (
	ErrReadingNotFound = errors.New("reading record not found")
	// ErrInvalidReading wraps writes rejected by a CHECK, NOT NULL or foreign key constraint.
	ErrInvalidReading = errors.New("reading record violates a constraint")
)

const joinColumns = `progress.id AS progress_id, books.id AS book_id,
	books.title, books.author, books.description,
	progress.pagecount, progress.maxpagecount, progress.reading_status,
	ratings.rating, ratings.plot, ratings.prose, ratings.characters,
	ratings.worldbuilding, ratings.theme, ratings.content`

// Repository handles progress and rating database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new readings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReading logs a new book for the user: the Book, then its Progress
// and Rating, all in one transaction. book.ID is set on success.
func (r *Repository) CreateReading(ctx context.Context, userID uint, book *entities.Book, maxPages int) (*entities.ReadingRow, error) {
	var row *entities.ReadingRow

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := books.NewRepository(tx).CreateBook(ctx, book); err != nil {
			return err
		}

		progress := &entities.Progress{
			UserID:        userID,
			BookID:        book.ID,
			PageCount:     0,
			MaxPageCount:  maxPages,
			ReadingStatus: entities.ReadingStatusInProgress,
		}
		if err := tx.Create(progress).Error; err != nil {
			return fmt.Errorf("failed to create progress: %w", err)
		}

		rating := &entities.Rating{UserID: userID, BookID: book.ID}
		if err := tx.Create(rating).Error; err != nil {
			return fmt.Errorf("failed to create rating: %w", err)
		}

		row = newRow(book, progress, rating)
		return nil
	})
	if err != nil {
		return nil, wrapConstraint(err)
	}
	return row, nil
}

// UpdateReading loads the (user, book) Progress and Rating inside a
// transaction, lets apply modify them, and saves both. Returns
// ErrReadingNotFound when the user has not logged the book. An error from
// apply aborts the transaction.
func (r *Repository) UpdateReading(ctx context.Context, userID, bookID uint, apply func(*entities.Progress, *entities.Rating) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress entities.Progress
		err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&progress).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReadingNotFound
			}
			return fmt.Errorf("failed to load progress: %w", err)
		}

		var rating entities.Rating
		err = tx.Where("user_id = ? AND book_id = ?", userID, bookID).First(&rating).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReadingNotFound
			}
			return fmt.Errorf("failed to load rating: %w", err)
		}

		if err := apply(&progress, &rating); err != nil {
			return err
		}

		if err := tx.Save(&rating).Error; err != nil {
			return fmt.Errorf("failed to update rating: %w", err)
		}
		if err := tx.Save(&progress).Error; err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		return nil
	})
	return wrapConstraint(err)
}

// GetReading returns the reading rows for one (user, book) pair: zero or one.
func (r *Repository) GetReading(ctx context.Context, userID, bookID uint) ([]entities.ReadingRow, error) {
	var rows []entities.ReadingRow
	err := r.joined(ctx, userID).Where("progress.book_id = ?", bookID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return rows, nil
}

// IterateReadings streams the user's reading rows ordered by progress id
// without loading them all. Each range over the returned sequence issues a
// fresh query.
func (r *Repository) IterateReadings(ctx context.Context, userID uint) iter.Seq2[entities.ReadingRow, error] {
	return func(yield func(entities.ReadingRow, error) bool) {
		rows, err := r.joined(ctx, userID).Order("progress.id").Rows()
		if err != nil {
			yield(entities.ReadingRow{}, fmt.Errorf("failed to query readings: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var row entities.ReadingRow
			if err := r.db.ScanRows(rows, &row); err != nil {
				yield(entities.ReadingRow{}, fmt.Errorf("failed to scan reading: %w", err))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(entities.ReadingRow{}, err)
		}
	}
}

func (r *Repository) joined(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("progress").
		Select(joinColumns).
		Joins("JOIN books ON books.id = progress.book_id").
		Joins("JOIN ratings ON ratings.book_id = progress.book_id AND ratings.user_id = progress.user_id").
		Where("progress.user_id = ?", userID)
}

func wrapConstraint(err error) error {
	if err != nil && database.IsConstraintViolation(err) {
		return fmt.Errorf("%w: %w", ErrInvalidReading, err)
	}
	return err
}

func newRow(book *entities.Book, progress *entities.Progress, rating *entities.Rating) *entities.ReadingRow {
	return &entities.ReadingRow{
		ProgressID:    progress.ID,
		BookID:        book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		PageCount:     progress.PageCount,
		MaxPageCount:  progress.MaxPageCount,
		ReadingStatus: progress.ReadingStatus,
		Rating:        rating.Rating,
		Plot:          rating.Plot,
		Prose:         rating.Prose,
		Characters:    rating.Characters,
		Worldbuilding: rating.Worldbuilding,
		Theme:         rating.Theme,
		Content:       rating.Content,
	}
}
