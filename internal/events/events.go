package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topology mirrors the broker setup declared by Conn.
const (
	ExchangeTransactions = "banking.transactions"

	QueueBalanceUpdates = "balance-updates"
	QueueNotifications  = "notifications"
	QueueAuditLog       = "audit-log" // bound with "#", receives everything
)

// Routing keys per event kind. Every mutation emits exactly one
// KeyBalanceRequested and exactly one terminal event.
const (
	KeyBalanceRequested = "balance.update"
	KeyBalanceUpdated   = "balance.updated"
	KeyBalanceFailed    = "balance.update_failed"
)

// Event is the wire contract consumed by the audit and notification workers.
// Delivery is at least once; consumers must tolerate duplicates.
type Event struct {
	Type      string    `json:"type"`
	AccountID string    `json:"accountId"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type BalanceRequestedData struct {
	PreBalance decimal.Decimal `json:"preBalance"`
	Delta      decimal.Decimal `json:"delta"`
}

type BalanceUpdatedData struct {
	PreBalance decimal.Decimal `json:"preBalance"`
	Delta      decimal.Decimal `json:"delta"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

type BalanceFailedData struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

func New(eventType, accountID string, data any) Event {
	return Event{
		Type:      eventType,
		AccountID: accountID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
