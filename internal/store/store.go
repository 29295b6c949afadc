// Package store owns the pgx connection pool shared by the repositories, so
// nothing above it deals with pool lifecycle or tuning.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options tunes the connection pool. Zero values keep the pgx defaults.
type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
	ConnTimeout     time.Duration
	Logger          *log.Logger
}

func (o Options) apply(cfg *pgxpool.Config) {
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		cfg.MinConns = o.MinConns
	}
	if o.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = o.MaxConnIdleTime
	}
	if o.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = o.MaxConnLifetime
	}
}

// Store wraps a pgx pool together with the logger for lifecycle events.
type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	opts   Options
}

// New parses the DSN, applies the pool options, connects, and verifies the
// database answers before returning.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	opts.apply(cfg)

	connCtx := ctx
	if opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, opts.ConnTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Printf("store: pool ready (conns %d..%d, idle %s, lifetime %s)",
		cfg.MinConns, cfg.MaxConns, cfg.MaxConnIdleTime, cfg.MaxConnLifetime)

	return &Store{pool: pool, logger: logger, opts: opts}, nil
}

// Close drains and releases the pool.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	stat := s.pool.Stat()
	s.logger.Printf("store: closing pool (conns total %d, acquired %d)",
		stat.TotalConns(), stat.AcquiredConns())
	s.pool.Close()
}

// HealthCheck reports whether the database currently answers queries.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store not initialized")
	}
	checkCtx := ctx
	if s.opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.opts.ConnTimeout)
		defer cancel()
	}
	var one int
	if err := s.pool.QueryRow(checkCtx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db probe: %w", err)
	}
	return nil
}

// Pool exposes the underlying pgx pool for the repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Stats snapshots pool usage counters.
func (s *Store) Stats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}
