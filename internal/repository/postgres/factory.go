package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/ledgerkit/banking-ledger/internal/repository"
)

type Repositories struct {
	Accounts  repo.Accounts
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool, lockTimeout time.Duration) Repositories {
	return Repositories{
		Accounts:  &accountsRepo{pool: pool, lockTimeout: lockTimeout},
		AuditLogs: &auditLogsRepo{pool},
	}
}
