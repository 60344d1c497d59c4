package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readtrack/internal/audit"
	"github.com/mrlokans/readtrack/internal/auth"
	"github.com/mrlokans/readtrack/internal/database"
	dbreadings "github.com/mrlokans/readtrack/internal/database/readings"
	"github.com/mrlokans/readtrack/internal/database/users"
	"github.com/mrlokans/readtrack/internal/http"
	"github.com/mrlokans/readtrack/internal/readings"
	"github.com/mrlokans/readtrack/internal/sanitize"
	"github.com/mrlokans/readtrack/internal/scheduler"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ readings.Store = (*dbreadings.Repository)(nil)
var _ readings.UserChecker = (*users.Repository)(nil)
var _ auth.UserStore = (*users.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Cross-cutting Services
// =============================================================================

var _ auth.AuditLogger = (*audit.Service)(nil)
var _ readings.AuditLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ readings.Sanitizer = (*sanitize.Policy)(nil)
