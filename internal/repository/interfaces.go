package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/shopspring/decimal"
)

type Accounts interface {
	Create(ctx context.Context, startingBalance decimal.Decimal) (models.Account, error)
	Get(ctx context.Context, id string) (models.Account, error)

	// Run fn inside one DB transaction (pgx.Tx). Rolls back when fn errors.
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error

	// LockForUpdate reads the account row under an exclusive row lock. The
	// lock is held until the surrounding transaction commits or rolls back.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id string) (models.Account, error)

	// ConditionalUpdate applies newBalance only if the row still holds
	// expectedBalance. Zero matched rows reports a lost race.
	ConditionalUpdate(ctx context.Context, tx pgx.Tx, id string, expectedBalance, newBalance decimal.Decimal) (models.Account, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
