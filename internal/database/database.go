package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readtrack/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// ErrUnknownMigrateCommand is returned by Migrate for unsupported commands.
var ErrUnknownMigrateCommand = errors.New("unknown migrate command")

type Database struct {
	DB  *gorm.DB
	log *zap.Logger
}

// NewDatabase opens the SQLite database at cfg.Path and applies all pending migrations.
func NewDatabase(cfg config.Database, log *zap.Logger) (*Database, error) {
	database, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate("up"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database initialized", zap.String("path", cfg.Path))
	return database, nil
}

// Open connects to the database without touching the schema.
func Open(cfg config.Database, log *zap.Logger) (*Database, error) {
	db, err := gorm.Open(gormsqlite.Open(dsn(cfg)), &gorm.Config{
		Logger: logger.New(printfLogger{log.Sugar()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{DB: db, log: log}, nil
}

// dsn enables foreign keys and WAL, and makes every transaction take the
// write lock up front so concurrent writers queue on busy_timeout instead of
// failing on lock upgrade.
func dsn(cfg config.Database) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	return fmt.Sprintf("%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate",
		cfg.Path, busy.Milliseconds())
}

// Migrate runs a goose command (up, down, status, version) against the embedded migrations.
func (d *Database) Migrate(command string) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(printfLogger{d.log.Sugar()})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case "up":
		return goose.Up(sqlDB, migrationsDir)
	case "down":
		return goose.Down(sqlDB, migrationsDir)
	case "status":
		return goose.Status(sqlDB, migrationsDir)
	case "version":
		version, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		d.log.Info("current migration version", zap.Int64("version", version))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMigrateCommand, command)
	}
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQL exposes the pooled *sql.DB, e.g. for the task queue.
func (d *Database) SQL() (*sql.DB, error) {
	return d.DB.DB()
}

// IsUniqueViolation reports whether err was caused by a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsConstraintViolation reports whether err was caused by any constraint (CHECK, FOREIGN KEY, UNIQUE, NOT NULL).
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// printfLogger routes gorm and goose output through zap.
type printfLogger struct {
	log *zap.SugaredLogger
}

func (l printfLogger) Printf(format string, args ...any) {
	l.log.Infof(format, args...)
}

// Fatalf is required by goose.Logger; a failed migration is reported as an
// error by the goose call itself, so this does not exit.
func (l printfLogger) Fatalf(format string, args ...any) {
	l.log.Errorf(format, args...)
}
