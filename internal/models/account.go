package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the authoritative ledger row. Balance is NUMERIC(15,2) in the
// store and never negative at rest (also enforced by a DB CHECK).
type Account struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
