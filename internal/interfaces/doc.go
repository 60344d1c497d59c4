// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the narrow interfaces they need next to their own code;
// concrete types live in the storage and infrastructure packages. This package
// only holds the compile-time checks that tie the two together.
//
// # Data Access Interfaces
//
//   - readings.Store: reading-record persistence (internal/database/readings)
//   - readings.UserChecker, auth.UserStore: account lookups (internal/database/users)
//   - http.Pinger: health probe (internal/database)
//
// # Cross-cutting Interfaces
//
//   - auth.AuditLogger, readings.AuditLogger: audit trail (internal/audit)
//   - tasks.AuditEventCleaner: retention task target (internal/audit)
//   - scheduler.TaskEnqueuer: task queue producer (internal/tasks)
//   - readings.Sanitizer: free-text neutralization (internal/sanitize)
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the consumer's interface in the package that uses it
//
//  4. Add compile-time check to checks.go:
//
//     var _ consumer.Store = (*domain.Repository)(nil)
package interfaces
