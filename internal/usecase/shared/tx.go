package shared

import (
	"context"

	"wasteops/internal/infra"
	"wasteops/internal/pkg/errs"
)

var (
	ErrTransactionBegin  = errs.New("failed to begin transaction")
	ErrTransactionCommit = errs.New("failed to commit transaction")
)

// TxRunner abstracts transactional execution so commands stay independent
// of the concrete pool. The postgres implementation lives in infra/uow.
type TxRunner interface {
	// Within runs fn inside a transaction, committing on nil and rolling
	// back on error.
	Within(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error
	// DB exposes the non-transactional querying surface.
	DB() infra.DBTX
}
