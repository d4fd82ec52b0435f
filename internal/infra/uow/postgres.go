package uow

import (
	"context"
	"errors"
	"log/slog"

	"wasteops/internal/infra"
	"wasteops/internal/pkg/errs"
	"wasteops/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTxRunner struct {
	pool *pgxpool.Pool
}

func NewPostgresTxRunner(pool *pgxpool.Pool) shared.TxRunner {
	return &PostgresTxRunner{pool: pool}
}

// ReadCommitted is enough: phase transitions are guarded by conditional
// updates, not by snapshot isolation.
func (r *PostgresTxRunner) Within(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, shared.ErrTransactionBegin)
	}

	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			// Only log rollback errors for uncommitted transactions
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, shared.ErrTransactionCommit)
	}
	return nil
}

func (r *PostgresTxRunner) DB() infra.DBTX {
	return r.pool
}
