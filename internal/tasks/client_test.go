package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/config"
)

func testConfig() config.Tasks {
	return config.Tasks{
		Enabled:         true,
		Workers:         1,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "readtrack-tasks.db"), TasksDBPath(filepath.Join("data", "readtrack.db")))
	assert.Equal(t, "readtrack-tasks", TasksDBPath("readtrack"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()

	client, err := NewClient(filepath.Join(tmpDir, "test.db"), testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopWithoutStart(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type fakeCleaner struct {
	mu        sync.Mutex
	retention []time.Duration
	done      chan struct{}
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.mu.Lock()
	f.retention = append(f.retention, retention)
	f.mu.Unlock()
	f.done <- struct{}{}
	return 3, nil
}

func TestCleanupAuditEventsTask_Config(t *testing.T) {
	cfg := CleanupAuditEventsTask{}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{done: make(chan struct{}, 2)}
	process := CleanupAuditEventsProcessor(cleaner, zap.NewNop())

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))

	assert.Equal(t, []time.Duration{7 * 24 * time.Hour, DefaultAuditRetentionDays * 24 * time.Hour}, cleaner.retention)

	assert.Error(t, CleanupAuditEventsProcessor(nil, zap.NewNop())(context.Background(), CleanupAuditEventsTask{}))
}

func TestCleanupAuditEventsQueue_Executes(t *testing.T) {
	client := newTestClient(t)
	cleaner := &fakeCleaner{done: make(chan struct{}, 1)}
	client.Register(NewCleanupAuditEventsQueue(cleaner, zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	ids, err := client.Add(CleanupAuditEventsTask{RetentionDays: 1}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case <-cleaner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	client.Stop(stopCtx)
}

// Compile-time check that backlite accepts the adapter.
var _ backlite.Logger = zapLogger{}
