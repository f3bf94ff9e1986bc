package worker

import (
	"context"
	"log/slog"

	"github.com/ledgerkit/banking-ledger/internal/events"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/ledgerkit/banking-ledger/internal/repository"
)

// Audit persists every event flowing through the audit-log queue. Writes are
// idempotent enough for at-least-once delivery: a duplicate event just adds
// a duplicate row, which auditors prefer over a missing one.
type Audit struct {
	logs repository.AuditLogs
	log  *slog.Logger
}

func NewAudit(logs repository.AuditLogs, log *slog.Logger) *Audit {
	return &Audit{logs: logs, log: log}
}

func (a *Audit) Handle(ctx context.Context, evt events.Event) error {
	var accountID *string
	if evt.AccountID != "" {
		accountID = &evt.AccountID
	}
	payload, _ := evt.Data.(map[string]any)

	err := a.logs.Create(ctx, models.AuditLog{
		EventType: evt.Type,
		AccountID: accountID,
		Payload:   payload,
	})
	if err != nil {
		return err
	}
	a.log.Debug("audit entry recorded", "type", evt.Type, "account_id", evt.AccountID)
	return nil
}
