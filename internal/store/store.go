package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cineadmin/internal/logging"
)

var errNotInitialized = errors.New("store not initialized")

// Options tunes the pool. Zero values keep pgx's defaults.
type Options struct {
	MaxConns               int32
	MinConns               int32
	MaxConnIdleTime        time.Duration
	MaxConnLifetime        time.Duration
	ConnTimeout            time.Duration
	StatementCacheCapacity int
	Logger                 *log.Logger
}

// Store owns the pgx pool shared by the repositories.
type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	opts   Options
}

// New opens the pool and pings the database. The whole dial is bounded by
// Options.ConnTimeout when set.
func New(ctx context.Context, dbURL string, opts Options) (*Store, error) {
	cfg, err := poolConfig(dbURL, opts)
	if err != nil {
		return nil, err
	}

	st := Wrap(nil, opts)
	st.logger.Info("opening pool",
		"max_conns", cfg.MaxConns, "min_conns", cfg.MinConns,
		"max_idle", cfg.MaxConnIdleTime, "max_life", cfg.MaxConnLifetime)

	dialCtx, cancel := st.bounded(ctx)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	st.pool = pool

	st.logger.Info("database ready")
	return st, nil
}

// poolConfig overlays the non-zero options on the settings parsed from dbURL.
func poolConfig(dbURL string, opts Options) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	switch {
	case opts.MaxConns > 0 && opts.MinConns > opts.MaxConns:
		return nil, fmt.Errorf("min conns %d exceeds max conns %d", opts.MinConns, opts.MaxConns)
	case opts.MaxConns > 0:
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}

	// A negative capacity keeps pgx's default exec mode.
	if opts.StatementCacheCapacity >= 0 {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		cfg.ConnConfig.StatementCacheCapacity = opts.StatementCacheCapacity
	}
	return cfg, nil
}

func (s *Store) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.ConnTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.ConnTimeout)
}

// Wrap adopts an existing pool, such as one opened by tests.
func Wrap(pool *pgxpool.Pool, opts Options) *Store {
	return &Store{pool: pool, logger: logging.Component(opts.Logger, "store"), opts: opts}
}

func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.logger.Info("closing pool")
	s.pool.Close()
}

// HealthCheck pings the database within Options.ConnTimeout.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errNotInitialized
	}
	checkCtx, cancel := s.bounded(ctx)
	defer cancel()
	return s.pool.Ping(checkCtx)
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errNotInitialized
	}
	if err := Migrate(ctx, s.pool); err != nil {
		return err
	}
	s.logger.Info("schema migrated")
	return nil
}

// Pool is the handle repositories query through.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Stats reports pool usage for /healthz. Nil when there is no pool.
func (s *Store) Stats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}
