package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerkit/banking-ledger/internal/ledger"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// SQLSTATE raised when lock_timeout expires while waiting on a row lock.
const lockNotAvailable = "55P03"

type accountsRepo struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func (r *accountsRepo) Create(ctx context.Context, startingBalance decimal.Decimal) (models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts(id, balance) VALUES($1, $2)
		 RETURNING id, balance, created_at, updated_at`,
		uuid.NewString(), startingBalance,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *accountsRepo) Get(ctx context.Context, id string) (models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, balance, created_at, updated_at FROM accounts WHERE id=$1`, id,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, ledger.ErrNotFound
	}
	return a, err
}

func (r *accountsRepo) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
	}
	// Bound row-lock waits for the whole transaction; surfaced as
	// ledger.ErrLockTimeout by LockForUpdate.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *accountsRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id string) (models.Account, error) {
	var a models.Account
	err := tx.QueryRow(ctx,
		`SELECT id, balance, created_at, updated_at
		   FROM accounts
		  WHERE id=$1
		  FOR UPDATE`, id,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ledger.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable {
			return models.Account{}, ledger.ErrLockTimeout
		}
		return models.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) ConditionalUpdate(ctx context.Context, tx pgx.Tx, id string, expectedBalance, newBalance decimal.Decimal) (models.Account, error) {
	var a models.Account
	err := tx.QueryRow(ctx,
		`UPDATE accounts
		    SET balance = $3,
		        updated_at = now()
		  WHERE id = $1 AND balance = $2
		  RETURNING id, balance, created_at, updated_at`,
		id, expectedBalance, newBalance,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, ledger.ErrConflict
	}
	return a, err
}
