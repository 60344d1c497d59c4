// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, goose migrations, error classification
//	├── migrations/      # Embedded SQL schema
//	├── users/           # Accounts; username uniqueness
//	├── books/           # Book catalog
//	├── readings/        # Progress + rating rows and the joined reading view
//	├── audit/           # Audit trail
//	└── dbtest/          # Throwaway migrated databases for tests
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database, logger)
//
//	usersRepo := users.NewRepository(db.DB)
//	readingsRepo := readings.NewRepository(db.DB)
//
//	for row, err := range readingsRepo.IterateReadings(ctx, userID) {
//		...
//	}
//
// # Constraints
//
// The schema, not the application, is the final authority on uniqueness
// and value ranges. Repositories translate the resulting SQLite errors with
// IsUniqueViolation and IsConstraintViolation.
//
// # Interface Implementations
//
//   - users.Repository: implements auth.UserStore and readings.UserChecker
//   - readings.Repository: implements readings.Store
//
// # Adding a New Domain
//
//  1. Add a goose migration under migrations/
//  2. Create a new sub-package with a Repository struct holding a *gorm.DB
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface check in internal/interfaces/checks.go
package database
