package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/ledgerkit/banking-ledger/internal/events"
	"github.com/ledgerkit/banking-ledger/internal/models"
)

type mockAuditLogs struct {
	createFn func(ctx context.Context, l models.AuditLog) error
}

func (m *mockAuditLogs) Create(ctx context.Context, l models.AuditLog) error {
	if m.createFn != nil {
		return m.createFn(ctx, l)
	}
	return fmt.Errorf("not configured")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditRecordsEvent(t *testing.T) {
	var got models.AuditLog
	logs := &mockAuditLogs{createFn: func(ctx context.Context, l models.AuditLog) error {
		got = l
		return nil
	}}
	a := NewAudit(logs, testLogger())

	evt := events.New(events.KeyBalanceUpdated, "acct-1", map[string]any{"newBalance": "10050"})
	if err := a.Handle(context.Background(), evt); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if got.EventType != events.KeyBalanceUpdated {
		t.Errorf("event type = %s", got.EventType)
	}
	if got.AccountID == nil || *got.AccountID != "acct-1" {
		t.Errorf("account id = %v", got.AccountID)
	}
	if got.Payload["newBalance"] != "10050" {
		t.Errorf("payload = %v", got.Payload)
	}
}

func TestAuditPropagatesStoreError(t *testing.T) {
	logs := &mockAuditLogs{createFn: func(ctx context.Context, l models.AuditLog) error {
		return fmt.Errorf("db down")
	}}
	a := NewAudit(logs, testLogger())

	// a returned error nacks the delivery for redelivery
	if err := a.Handle(context.Background(), events.New(events.KeyBalanceFailed, "acct-1", nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotificationIgnoresOtherEvents(t *testing.T) {
	n := NewNotification(testLogger())
	if err := n.Handle(context.Background(), events.New(events.KeyBalanceRequested, "acct-1", nil)); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if err := n.Handle(context.Background(), events.New(events.KeyBalanceUpdated, "acct-1", map[string]any{"newBalance": "10"})); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
}
