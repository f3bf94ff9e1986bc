package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEventWireContract(t *testing.T) {
	evt := New(KeyBalanceUpdated, "acct-1", BalanceUpdatedData{
		PreBalance: mustDec("10000"),
		Delta:      mustDec("50"),
		NewBalance: mustDec("10050"),
	})

	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if m["type"] != KeyBalanceUpdated {
		t.Errorf("type = %v, want %s", m["type"], KeyBalanceUpdated)
	}
	if m["accountId"] != "acct-1" {
		t.Errorf("accountId = %v", m["accountId"])
	}
	if _, ok := m["timestamp"]; !ok {
		t.Error("timestamp missing")
	}

	data, ok := m["data"].(map[string]any)
	if !ok {
		t.Fatalf("data is not an object: %v", m["data"])
	}
	if data["newBalance"] != "10050" {
		t.Errorf("newBalance = %v, want \"10050\"", data["newBalance"])
	}
	if data["preBalance"] != "10000" {
		t.Errorf("preBalance = %v, want \"10000\"", data["preBalance"])
	}
}

func TestNewEventTimestampUTC(t *testing.T) {
	before := time.Now().UTC()
	evt := New(KeyBalanceRequested, "acct-1", nil)
	after := time.Now().UTC()

	if evt.Timestamp.Before(before) || evt.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", evt.Timestamp, before, after)
	}
	if evt.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp not UTC: %v", evt.Timestamp.Location())
	}
}
