package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultTxRetries    = 5
	defaultRetryBackoff = 10 * time.Millisecond
)

type Store struct {
	pool         *pgxpool.Pool
	txRetries    uint64
	retryBackoff time.Duration
}

type Option func(*Store)

// WithTxRetries sets how many times a transaction is re-run after a
// serialization failure or deadlock before the error is returned.
func WithTxRetries(n uint64) Option {
	return func(s *Store) { s.txRetries = n }
}

// WithRetryBackoff sets the first delay of the exponential retry backoff.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}

func New(ctx context.Context, dsn string, maxConns int32, opts ...Option) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	s := &Store{
		pool:         pool,
		txRetries:    defaultTxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the connection pool for schema migrations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }
