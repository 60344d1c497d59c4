// Package readings keeps each user's Progress and Rating for a book
// consistent and assembles them with the Book into Records.
package readings

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/readtrack/internal/apperr"
	dbreadings "github.com/mrlokans/readtrack/internal/database/readings"
	"github.com/mrlokans/readtrack/internal/entities"
)

// Store persists readings. Implemented by database/readings.Repository.
type Store interface {
	CreateReading(ctx context.Context, userID uint, book *entities.Book, maxPages int) (*entities.ReadingRow, error)
	UpdateReading(ctx context.Context, userID, bookID uint, apply func(*entities.Progress, *entities.Rating) error) error
	IterateReadings(ctx context.Context, userID uint) iter.Seq2[entities.ReadingRow, error]
	GetReading(ctx context.Context, userID, bookID uint) ([]entities.ReadingRow, error)
}

// UserChecker answers whether a user exists. Implemented by database/users.Repository.
type UserChecker interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

// AuditLogger records reading changes. Implemented by audit.Service.
type AuditLogger interface {
	LogReading(userID, bookID uint, action, description string)
}

type Service struct {
	store Store
	users UserChecker
	views *ViewBuilder
	audit AuditLogger
	log   *zap.Logger
}

func NewService(store Store, users UserChecker, sanitizer Sanitizer, audit AuditLogger, log *zap.Logger) *Service {
	return &Service{
		store: store,
		users: users,
		views: NewViewBuilder(sanitizer),
		audit: audit,
		log:   log,
	}
}

// CreateReadingRecord logs a new book for the user with zero progress and an empty rating.
func (s *Service) CreateReadingRecord(ctx context.Context, userID uint, in CreateInput) (*Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:       *in.Title,
		Author:      *in.Author,
		Description: *in.Description,
	}
	row, err := s.store.CreateReading(ctx, userID, book, *in.MaxPageCount)
	if err != nil {
		if errors.Is(err, dbreadings.ErrInvalidReading) {
			return nil, apperr.Validation(MsgInvalidRecord)
		}
		return nil, fmt.Errorf("create reading record: %w", err)
	}

	s.log.Info("reading record created",
		zap.Uint("user_id", userID),
		zap.Uint("book_id", row.BookID),
		zap.Uint("progress_id", row.ProgressID))
	if s.audit != nil {
		s.audit.LogReading(userID, row.BookID, entities.AuditActionReadingRecordCreate, "Logged book: "+book.Title)
	}

	record := s.views.Build(*row)
	return &record, nil
}

// UpdateReadingRecord replaces the rating and merges the progress of one
// logged book, re-deriving the reading status. Both rows change together or not at all.
func (s *Service) UpdateReadingRecord(ctx context.Context, userID, bookID uint, in UpdateInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	var resolved entities.Progress
	err := s.store.UpdateReading(ctx, userID, bookID, func(progress *entities.Progress, rating *entities.Rating) error {
		resolved = ResolveProgress(*progress, in.Progress)
		*progress = resolved
		in.Rating.Apply(rating)
		return nil
	})
	if err != nil {
		if errors.Is(err, dbreadings.ErrReadingNotFound) {
			return apperr.NotFound(MsgBookNotLogged)
		}
		if errors.Is(err, dbreadings.ErrInvalidReading) {
			return apperr.Validation(MsgInvalidRecord)
		}
		return fmt.Errorf("update reading record: %w", err)
	}

	s.log.Info("reading record updated",
		zap.Uint("user_id", userID),
		zap.Uint("book_id", bookID),
		zap.String("reading_status", string(resolved.ReadingStatus)),
		zap.Int("pagecount", resolved.PageCount))
	if s.audit != nil {
		s.audit.LogReading(userID, bookID, entities.AuditActionReadingRecordUpdate,
			fmt.Sprintf("Progress %d/%d (%s)", resolved.PageCount, resolved.MaxPageCount, resolved.ReadingStatus))
	}
	return nil
}

// ListReadingRecords returns every record of the user; an existing user with
// no books yields an empty, non-nil slice.
func (s *Service) ListReadingRecords(ctx context.Context, userID uint) ([]Record, error) {
	return s.aggregate(ctx, userID, func(ctx context.Context) ([]Record, error) {
		return s.views.Collect(s.store.IterateReadings(ctx, userID))
	})
}

// GetReadingRecord returns the user's record for one book as a one-element slice.
func (s *Service) GetReadingRecord(ctx context.Context, userID, bookID uint) ([]Record, error) {
	records, err := s.aggregate(ctx, userID, func(ctx context.Context) ([]Record, error) {
		rows, err := s.store.GetReading(ctx, userID, bookID)
		if err != nil {
			return nil, err
		}
		return s.views.BuildAll(rows), nil
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.NotFound(MsgBookNotLogged)
	}
	return records, nil
}

// aggregate runs the user existence check alongside the query so an empty
// result can be told apart from a missing user.
func (s *Service) aggregate(ctx context.Context, userID uint, query func(context.Context) ([]Record, error)) ([]Record, error) {
	var (
		exists  bool
		records []Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exists, err = s.users.UserExists(gctx, userID)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = query(gctx)
		if err != nil {
			return fmt.Errorf("query readings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !exists {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	return records, nil
}

func (s *Service) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return apperr.NotFound(MsgUserNotFound)
	}
	return nil
}
