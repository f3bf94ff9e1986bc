package models

import "time"

type AuditLog struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	AccountID *string        `json:"account_id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
