// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/config"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// TaskEnqueuer hands work to the task queue. Implemented by tasks.Client.
type TaskEnqueuer interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
}

// AuditCleanupScheduler periodically enqueues audit retention tasks.
type AuditCleanupScheduler struct {
	enqueuer TaskEnqueuer
	config   config.Audit
	log      *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(enqueuer TaskEnqueuer, cfg config.Audit, log *zap.Logger) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		enqueuer: enqueuer,
		config:   cfg,
		log:      log,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start schedules the cleanup job. It stops on its own when ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.log.Info("audit cleanup scheduler disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.CleanupSchedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.CleanupSchedule, func() {
		s.enqueue(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	s.log.Info("audit cleanup scheduler started",
		zap.String("schedule", s.config.CleanupSchedule),
		zap.Int("retention_days", s.config.RetentionDays),
		zap.Time("next_run", s.cron.Entry(entryID).Next))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.log.Info("audit cleanup scheduler stopped")
}

// RunNow enqueues a cleanup immediately, outside the schedule.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) (string, error) {
	return s.enqueuer.EnqueueAuditCleanup(ctx, s.config.RetentionDays)
}

func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// NextRunTime returns when the job fires next, or nil when not scheduled.
func (s *AuditCleanupScheduler) NextRunTime() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *AuditCleanupScheduler) enqueue(ctx context.Context) {
	id, err := s.enqueuer.EnqueueAuditCleanup(ctx, s.config.RetentionDays)
	if err != nil {
		s.log.Error("failed to enqueue audit cleanup", zap.Error(err))
		return
	}
	s.log.Info("audit cleanup enqueued", zap.String("task_id", id))
}
