package audit

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditRepo "github.com/mrlokans/readtrack/internal/database/audit"
	"github.com/mrlokans/readtrack/internal/database/dbtest"
	"github.com/mrlokans/readtrack/internal/entities"
)

func setupTestService(t *testing.T, enabled bool) (*Service, *gorm.DB) {
	db := dbtest.New(t).DB
	svc := NewService(auditRepo.NewRepository(db), enabled, zap.NewNop())
	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t, true)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventReading,
		Action:      "test_action",
		Description: "Test event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(context.Background(), event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "test_action", saved.Action)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t, true)

	t.Run("successful login", func(t *testing.T) {
		svc.LogAuth(1, entities.AuditActionLogin, "192.168.1.1", "Mozilla/5.0", true)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ? AND status = ?", entities.AuditActionLogin, entities.AuditStatusSuccess).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditEventAuth, event.EventType)
		assert.Equal(t, "192.168.1.1", event.IPAddress)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, uint(1), *event.EntityID)
	})

	t.Run("failed login for unknown user", func(t *testing.T) {
		svc.LogAuth(0, entities.AuditActionLogin, "10.0.0.1", "curl/7.68.0", false)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ? AND status = ?", entities.AuditActionLogin, entities.AuditStatusFailed).First(&event).Error
		require.NoError(t, err)
		assert.Nil(t, event.EntityID)
	})
}

func TestService_LogReading(t *testing.T) {
	svc, db := setupTestService(t, true)

	svc.LogReading(3, 42, entities.AuditActionReadingRecordCreate, "Logged Dune")
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", entities.AuditActionReadingRecordCreate).First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, entities.AuditEventReading, event.EventType)
	assert.Equal(t, uint(3), event.UserID)
	assert.Equal(t, "book", event.EntityType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(42), *event.EntityID)
	assert.Equal(t, "Logged Dune", event.Description)
}

func TestService_Disabled(t *testing.T) {
	svc, db := setupTestService(t, false)

	svc.LogReading(1, 1, entities.AuditActionReadingRecordUpdate, "ignored")
	svc.LogAuth(1, entities.AuditActionLogin, "", "", true)
	svc.Wait()

	var count int64
	require.NoError(t, db.Model(&entities.AuditEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t, true)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := svc.Log(ctx, &entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventReading,
			Action:    "test",
			Status:    entities.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{UserID: 1, EventType: entities.AuditEventAuth, Action: "login"}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{UserID: 2, EventType: entities.AuditEventAuth, Action: "login"}))

	events, total, err := svc.GetEvents(ctx, 1, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, events, 3)

	events, total, err = svc.GetEventsByType(ctx, entities.AuditEventAuth, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, "login", events[0].Action)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t, true)

	oldEvent := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventReading,
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(oldEvent).Error)

	newEvent := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(newEvent).Error)

	// Delete events older than 24 hours
	deleted, err := svc.DeleteOldEvents(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a very long string", 10, "this is..."},
		{"", 5, ""},
		{"ab€€€", 8, "ab€..."},
		{"ab€€€", 7, "ab..."},
		{"Война и мир", 10, "Вой ..."},
	}

	for _, tc := range tests {
		result := truncate(tc.input, tc.maxLen)
		assert.Equal(t, tc.expected, result)
		assert.True(t, utf8.ValidString(result), "truncate(%q, %d) split a rune", tc.input, tc.maxLen)
		assert.LessOrEqual(t, len(result), tc.maxLen)
	}
}
