package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// ErrNestedTx is returned when a transaction is begun from a transaction-scoped repository.
var ErrNestedTx = errors.Wrap(errs.Conflict, "transaction already in progress")

// BeginLaunchpadTx returns a copy of the repository bound to a new transaction.
func (r *Repository) BeginLaunchpadTx(ctx context.Context) (datagateway.LaunchpadDataGatewayWithTx, error) {
	if r.tx != nil {
		return nil, errors.WithStack(ErrNestedTx)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errs.Unavailable), "can't begin transaction")
	}
	return &Repository{
		db:      r.db,
		queries: r.queries.WithTx(tx),
		tx:      tx,
	}, nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	tx := r.tx
	r.tx = nil
	return errors.Wrap(tx.Commit(ctx), "can't commit transaction")
}

func (r *Repository) Rollback(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	tx := r.tx
	r.tx = nil
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Wrap(err, "can't rollback transaction")
	}
	logger.DebugContext(ctx, "Rolled back launchpad transaction")
	return nil
}
