package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/mentorship-scheduler/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Storage bundles the SQLite repositories that share one connection pool.
type Storage struct {
	Groups     *GroupRepository
	Sessions   *SessionRepository
	Attendance *AttendanceRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Option customises Storage construction.
type Option func(*options)

type options struct {
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// WithIDGenerator sets the generator for rule and session identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithClock sets the source for created and updated timestamps.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.now = fn
		}
	}
}

// WithLogger sets the logger used for migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open connects to the database described by config. Call Migrate before use.
func Open(config migration.SQLiteConfig, opts ...Option) (*Storage, error) {
	o := options{newID: uuid.NewString, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		Groups:     NewGroupRepository(pool, o.newID, o.now),
		Sessions:   NewSessionRepository(pool),
		Attendance: NewAttendanceRepository(pool),
		pool:       pool,
		logger:     o.logger,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationFiles,
		migrationDir,
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
