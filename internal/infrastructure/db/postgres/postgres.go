// Package postgres is the relational store. Uniqueness and referential
// integrity come from the schema in migrations/; gorm's error translation
// turns constraint violations into gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated, which the repositories map to domain errors.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ideaboard/idea-voting/internal/infrastructure/password"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// Timeout bounds the connect ping. Pass the same value to NewStore to
	// bound each query.
	Timeout time.Duration
}

// Connect opens a pooled connection and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, 10))
	sqlDB.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, 50))
	sqlDB.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, time.Hour))

	timeout := orDefault(cfg.Timeout, defaultTimeout)
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Store implements ports.CredentialStore, ports.IdeaRepository and
// ports.VoteRepository on top of gorm.
type Store struct {
	db      *gorm.DB
	hasher  password.Hasher
	timeout time.Duration
}

// NewStore wraps db. timeout bounds every storage call; a non-positive value
// selects the 10 s default.
func NewStore(db *gorm.DB, hasher password.Hasher, timeout time.Duration) *Store {
	return &Store{db: db, hasher: hasher, timeout: orDefault(timeout, defaultTimeout)}
}

// Ping reports whether the database answers. Used by the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conn returns a session bound to a per-call timeout.
func (s *Store) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}
