package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/gosuda/kanban/internal/domain"
)

// WithinTx runs fn in a SERIALIZABLE transaction. Two transactions that each
// count DOING tasks and then write a new DOING row cannot both commit; the
// loser fails with SQLSTATE 40001 and the whole fn is run again on a fresh
// transaction, where it observes the winner's write.
//
// Errors returned by fn other than serialization failures and deadlocks are
// returned unchanged after rollback.
func (s *Store) WithinTx(ctx context.Context, fn domain.TxFunc) error {
	backoff := retry.WithMaxRetries(s.txRetries,
		retry.WithJitterPercent(25, retry.NewExponential(s.retryBackoff)))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.runTx(ctx, fn)
		if isRetryable(err) {
			log.Debug().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *Store) runTx(ctx context.Context, fn domain.TxFunc) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("postgres.WithinTx: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			rollback(ctx, tx)
		}
	}()

	if err = fn(ctx, NewTaskRepo(tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres.WithinTx: commit: %w", err)
	}

	return nil
}

// rollback must still reach the server when ctx is already cancelled.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Error().Err(err).Msg("transaction rollback failed")
	}
}
