package readings

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/apperr"
	"github.com/mrlokans/readtrack/internal/database/dbtest"
	dbreadings "github.com/mrlokans/readtrack/internal/database/readings"
	"github.com/mrlokans/readtrack/internal/database/users"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/sanitize"
)

type recordedEvent struct {
	userID, bookID uint
	action         string
}

type fakeAudit struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeAudit) LogReading(userID, bookID uint, action, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{userID, bookID, action})
}

type testEnv struct {
	service *Service
	audit   *fakeAudit
	userID  uint
}

func setupService(t *testing.T) testEnv {
	t.Helper()
	db := dbtest.New(t).DB

	userRepo := users.NewRepository(db)
	user := &entities.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, userRepo.CreateUser(context.Background(), user))

	auditor := &fakeAudit{}
	svc := NewService(dbreadings.NewRepository(db), userRepo, sanitize.NewPolicy(), auditor, zap.NewNop())
	return testEnv{service: svc, audit: auditor, userID: user.ID}
}

func createInput(title string, maxPages int) CreateInput {
	return CreateInput{Title: strPtr(title), Author: strPtr("A"), Description: strPtr("D"), MaxPageCount: intPtr(maxPages)}
}

func TestService_CreateReadingRecord(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	rec, err := env.service.CreateReadingRecord(ctx, env.userID, createInput("T", 300))
	require.NoError(t, err)

	assert.NotZero(t, rec.BookID)
	assert.NotZero(t, rec.ProgressID)
	assert.Equal(t, "T", rec.Title)
	assert.Equal(t, 0, rec.PageCount)
	assert.Equal(t, 300, rec.MaxPageCount)
	assert.Equal(t, 0.0, rec.Percent)
	assert.Equal(t, entities.ReadingStatusInProgress, rec.ReadingStatus)
	assert.Equal(t, 0, rec.Rating)
	assert.Equal(t, "", rec.Content)

	require.Len(t, env.audit.events, 1)
	assert.Equal(t, entities.AuditActionReadingRecordCreate, env.audit.events[0].action)
}

func TestService_CreateReadingRecord_Validation(t *testing.T) {
	env := setupService(t)

	in := createInput("T", 300)
	in.Author = nil
	_, err := env.service.CreateReadingRecord(context.Background(), env.userID, in)
	assert.EqualError(t, err, "Missing author in request body")
	assert.Empty(t, env.audit.events)
}

func TestService_CreateReadingRecord_UnknownUser(t *testing.T) {
	env := setupService(t)

	_, err := env.service.CreateReadingRecord(context.Background(), env.userID+100, createInput("T", 300))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, MsgUserNotFound)
}

func TestService_UpdateReadingRecord_Completes(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	rec, err := env.service.CreateReadingRecord(ctx, env.userID, createInput("T", 300))
	require.NoError(t, err)

	update := UpdateInput{
		Rating:   fullRating(),
		Progress: ProgressInput{PageCount: intPtr(300), MaxPageCount: intPtr(300)},
	}
	require.NoError(t, env.service.UpdateReadingRecord(ctx, env.userID, rec.BookID, update))

	records, err := env.service.GetReadingRecord(ctx, env.userID, rec.BookID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, entities.ReadingStatusCompleted, got.ReadingStatus)
	assert.Equal(t, entities.ReadingStatusCompleted, got.Status)
	assert.Equal(t, 300, got.PageCount)
	assert.Equal(t, 1.0, got.Percent)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "ok", got.Content)

	// Idempotent.
	require.NoError(t, env.service.UpdateReadingRecord(ctx, env.userID, rec.BookID, update))
	again, err := env.service.GetReadingRecord(ctx, env.userID, rec.BookID)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestService_UpdateReadingRecord_ExplicitCompletion(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	rec, err := env.service.CreateReadingRecord(ctx, env.userID, createInput("T", 450))
	require.NoError(t, err)

	completed := entities.ReadingStatusCompleted
	err = env.service.UpdateReadingRecord(ctx, env.userID, rec.BookID, UpdateInput{
		Rating:   fullRating(),
		Progress: ProgressInput{PageCount: intPtr(12), MaxPageCount: intPtr(450), ReadingStatus: &completed},
	})
	require.NoError(t, err)

	records, err := env.service.GetReadingRecord(ctx, env.userID, rec.BookID)
	require.NoError(t, err)
	assert.Equal(t, 450, records[0].PageCount)
	assert.Equal(t, entities.ReadingStatusCompleted, records[0].ReadingStatus)
}

func TestService_UpdateReadingRecord_IncompleteRating(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	rec, err := env.service.CreateReadingRecord(ctx, env.userID, createInput("T", 300))
	require.NoError(t, err)

	rating := fullRating()
	rating.Theme = nil
	err = env.service.UpdateReadingRecord(ctx, env.userID, rec.BookID, UpdateInput{
		Rating:   rating,
		Progress: ProgressInput{PageCount: intPtr(300), MaxPageCount: intPtr(300)},
	})
	assert.EqualError(t, err, MsgRatingIncomplete)

	records, err := env.service.GetReadingRecord(ctx, env.userID, rec.BookID)
	require.NoError(t, err)
	assert.Equal(t, 0, records[0].PageCount, "nothing may be written on validation failure")
}

func TestService_UpdateReadingRecord_NotLogged(t *testing.T) {
	env := setupService(t)

	err := env.service.UpdateReadingRecord(context.Background(), env.userID, 999, UpdateInput{Rating: fullRating()})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, MsgBookNotLogged)
}

func TestService_ExistenceDisambiguation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	t.Run("list for existing user with no books", func(t *testing.T) {
		records, err := env.service.ListReadingRecords(ctx, env.userID)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("list for unknown user", func(t *testing.T) {
		_, err := env.service.ListReadingRecords(ctx, env.userID+100)
		assert.EqualError(t, err, MsgUserNotFound)
	})

	t.Run("book for unknown user", func(t *testing.T) {
		_, err := env.service.GetReadingRecord(ctx, env.userID+100, 1)
		assert.EqualError(t, err, MsgUserNotFound)
	})

	t.Run("unlogged book for existing user", func(t *testing.T) {
		_, err := env.service.GetReadingRecord(ctx, env.userID, 12345)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.EqualError(t, err, MsgBookNotLogged)
	})
}

func TestService_ListReadingRecords(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second <script>x</script>"} {
		_, err := env.service.CreateReadingRecord(ctx, env.userID, createInput(title, 100))
		require.NoError(t, err)
	}

	records, err := env.service.ListReadingRecords(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "Second &lt;script&gt;x&lt;/script&gt;", records[1].Title)
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) IterateReadings(context.Context, uint) iter.Seq2[entities.ReadingRow, error] {
	return func(yield func(entities.ReadingRow, error) bool) {
		yield(entities.ReadingRow{}, f.err)
	}
}

func (f failingStore) CreateReading(context.Context, uint, *entities.Book, int) (*entities.ReadingRow, error) {
	return nil, f.err
}

type existsAlways struct{}

func (existsAlways) UserExists(context.Context, uint) (bool, error) { return true, nil }

func TestService_ListReadingRecords_StorageFailureIsInternal(t *testing.T) {
	boom := errors.New("disk I/O error")
	svc := NewService(failingStore{err: boom}, existsAlways{}, sanitize.NewPolicy(), nil, zap.NewNop())

	_, err := svc.ListReadingRecords(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestService_CreateReadingRecord_ConstraintViolationIsValidation(t *testing.T) {
	rejected := fmt.Errorf("%w: CHECK constraint failed", dbreadings.ErrInvalidReading)
	svc := NewService(failingStore{err: rejected}, existsAlways{}, sanitize.NewPolicy(), nil, zap.NewNop())

	_, err := svc.CreateReadingRecord(context.Background(), 1, createInput("T", 10))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.EqualError(t, err, MsgInvalidRecord)
}
