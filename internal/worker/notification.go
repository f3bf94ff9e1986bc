package worker

import (
	"context"
	"log/slog"

	"github.com/ledgerkit/banking-ledger/internal/events"
)

// Notification consumes balance.updated events. Delivery of the actual
// notification (mail, push) is out of scope; the handler logs what would be
// sent.
type Notification struct {
	log *slog.Logger
}

func NewNotification(log *slog.Logger) *Notification {
	return &Notification{log: log}
}

func (n *Notification) Handle(ctx context.Context, evt events.Event) error {
	if evt.Type != events.KeyBalanceUpdated {
		return nil
	}
	data, _ := evt.Data.(map[string]any)
	n.log.Info("balance update notification",
		"account_id", evt.AccountID,
		"new_balance", data["newBalance"],
	)
	return nil
}
