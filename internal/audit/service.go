package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/database/audit"
	"github.com/mrlokans/readtrack/internal/entities"
)

// writeTimeout bounds a single background write.
const writeTimeout = 5 * time.Second

// Service provides high-level audit logging functionality.
// Writes happen in the background; a failed write is logged and otherwise ignored.
type Service struct {
	repo    *audit.Repository
	log     *zap.Logger
	enabled bool
	wg      sync.WaitGroup
}

// NewService creates a new audit service. A disabled service drops every event.
func NewService(repo *audit.Repository, enabled bool, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, enabled: enabled}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if !s.enabled {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.Log(ctx, event); err != nil {
			s.log.Warn("failed to log audit event",
				zap.String("action", event.Action),
				zap.Uint("user_id", event.UserID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until pending background writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventAuth,
		Action:     action,
		EntityType: "user",
		IPAddress:  ipAddr,
		UserAgent:  truncate(userAgent, 500),
		Status:     entities.AuditStatusSuccess,
	}
	if userID != 0 {
		event.EntityID = &userID
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogReading records a change to one of the user's reading records.
func (s *Service) LogReading(userID, bookID uint, action, description string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReading,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// GetEvents retrieves a user's audit events, most recent first.
func (s *Service) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, audit.Filter{UserID: userID, Limit: limit, Offset: offset})
}

// GetEventsByType retrieves a user's audit events filtered by type.
func (s *Service) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, audit.Filter{UserID: userID, EventType: eventType, Limit: limit, Offset: offset})
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens s to at most maxLen bytes, cutting on a rune boundary.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
