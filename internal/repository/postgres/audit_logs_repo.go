package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerkit/banking-ledger/internal/models"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs(event_type, account_id, payload) VALUES($1,$2,$3)`,
		l.EventType, l.AccountID, l.Payload,
	)
	return err
}
