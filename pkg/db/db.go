// Package db stores parsed ledgers in SQLite or PostgreSQL through
// database/sql.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DefaultSQLiteDSN is the database file used when no DSN is configured.
const DefaultSQLiteDSN = "meetings.sqlite"

// Config selects the database.
type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// DefaultConfig returns a config for the local SQLite file.
func DefaultConfig() Config {
	return Config{Driver: DriverSQLite, DSN: DefaultSQLiteDSN}
}

// ConfigFromEnv overlays TMSLEDGER_DB_DRIVER and TMSLEDGER_DB_DSN onto cfg.
func ConfigFromEnv(cfg Config) Config {
	if v := os.Getenv("TMSLEDGER_DB_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("TMSLEDGER_DB_DSN"); v != "" {
		cfg.DSN = v
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.DSN == "" && c.Driver == DriverSQLite {
		c.DSN = DefaultSQLiteDSN
	}
	return c
}

// Validate checks the driver name and that PostgreSQL has a DSN.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch c.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("%w: database dsn is required for driver %q", lerrors.ErrValidation, c.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q (want %s or %s)",
			lerrors.ErrValidation, c.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

// Store is an open, migrated ledger database.
type Store struct {
	db     *sql.DB
	driver string
	logger logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open connects to the database, verifies the connection and applies any
// pending migrations. The caller must Close the store.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     sqlDB,
		driver: cfg.Driver,
		logger: logging.MustGlobal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.F("component", "db"), logging.F("driver", cfg.Driver))

	if cfg.Driver == DriverSQLite {
		// One connection keeps ":memory:" databases alive and per-connection
		// pragmas in force.
		sqlDB.SetMaxOpenConns(1)
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	result, err := RunMigrations(ctx, sqlDB, Migrations())
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	if len(result.Applied) > 0 {
		s.logger.Info("Applied migrations", logging.F("versions", result.Applied))
	}

	return s, nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
