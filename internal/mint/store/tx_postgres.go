package store

import (
	"context"
	"database/sql"
	"time"

	"mintgate/internal/mint/ports"
	dErrors "mintgate/pkg/domain-errors"
	auditpg "mintgate/pkg/platform/audit/store/postgres"
	txcontext "mintgate/pkg/platform/tx"
)

// ledgerLockKey is the advisory lock every mutating transaction takes, which
// totally orders them the way a ledger orders its blocks.
const ledgerLockKey int64 = 0x6d696e7467617465 // "mintgate"

// PostgresTxRunner implements ports.StoreTx over database/sql.
type PostgresTxRunner struct {
	db      *sql.DB
	events  *auditpg.Store
	timeout time.Duration
}

// NewPostgresTxRunner builds a runner; a zero timeout uses the default.
func NewPostgresTxRunner(db *sql.DB, timeout time.Duration) *PostgresTxRunner {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &PostgresTxRunner{db: db, events: auditpg.New(db), timeout: timeout}
}

// Outbox is the relay's handle on the event table.
func (r *PostgresTxRunner) Outbox() *auditpg.Store { return r.events }

func (r *PostgresTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	return r.run(ctx, nil, true, fn)
}

func (r *PostgresTxRunner) View(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	return r.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, false, fn)
}

func (r *PostgresTxRunner) run(ctx context.Context, opts *sql.TxOptions, lock bool, fn func(ctx context.Context, store ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if lock {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
			if ctx.Err() != nil {
				return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out waiting for ledger lock")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "acquire ledger lock")
		}
	}

	txCtx := txcontext.WithTx(ctx, tx)
	if err := fn(txCtx, NewPostgresTx(tx, r.events)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
