package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerkit/banking-ledger/internal/ledger"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// ---- mock implementations ----

type mockMutator struct {
	mutateFn func(ctx context.Context, id string, delta decimal.Decimal) (models.Account, error)
}

func (m *mockMutator) Mutate(ctx context.Context, id string, delta decimal.Decimal) (models.Account, error) {
	if m.mutateFn != nil {
		return m.mutateFn(ctx, id, delta)
	}
	return models.Account{}, fmt.Errorf("not configured")
}

type mockQuerier struct {
	readFn func(ctx context.Context, id string) (models.Account, error)
}

func (m *mockQuerier) Read(ctx context.Context, id string) (models.Account, error) {
	if m.readFn != nil {
		return m.readFn(ctx, id)
	}
	return models.Account{}, fmt.Errorf("not configured")
}

type mockProvisioner struct {
	createFn func(ctx context.Context, starting decimal.Decimal) (models.Account, error)
}

func (m *mockProvisioner) Create(ctx context.Context, starting decimal.Decimal) (models.Account, error) {
	if m.createFn != nil {
		return m.createFn(ctx, starting)
	}
	return models.Account{}, fmt.Errorf("not configured")
}

// ---- helpers ----

const testID = "7f000000-0000-4000-8000-000000000001"

func newTestRouter(m Mutator, q Querier, p Provisioner) http.Handler {
	h := NewAccountsHandler(m, q, p)
	r := chi.NewRouter()
	r.Post("/api/v1/accounts", h.Create)
	r.Get("/api/v1/accounts/{id}", h.Get)
	r.Put("/api/v1/accounts/{id}/balance", h.UpdateBalance)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func acct(balance string) models.Account {
	b, _ := decimal.NewFromString(balance)
	return models.Account{ID: testID, Balance: b}
}

// ---- tests ----

func TestGetAccount(t *testing.T) {
	q := &mockQuerier{readFn: func(ctx context.Context, id string) (models.Account, error) {
		if id != testID {
			t.Errorf("unexpected id %s", id)
		}
		return acct("10000"), nil
	}}
	h := newTestRouter(&mockMutator{}, q, &mockProvisioner{})

	rec := do(t, h, http.MethodGet, "/api/v1/accounts/"+testID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Balance string `json:"balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if !resp.Success || resp.Data.Balance != "10000" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetAccountNotFound(t *testing.T) {
	q := &mockQuerier{readFn: func(ctx context.Context, id string) (models.Account, error) {
		return models.Account{}, ledger.ErrNotFound
	}}
	h := newTestRouter(&mockMutator{}, q, &mockProvisioner{})

	rec := do(t, h, http.MethodGet, "/api/v1/accounts/"+testID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetAccountInvalidID(t *testing.T) {
	h := newTestRouter(&mockMutator{}, &mockQuerier{}, &mockProvisioner{})

	rec := do(t, h, http.MethodGet, "/api/v1/accounts/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateBalance(t *testing.T) {
	m := &mockMutator{mutateFn: func(ctx context.Context, id string, delta decimal.Decimal) (models.Account, error) {
		if !delta.Equal(decimal.NewFromInt(50)) {
			t.Errorf("delta = %s, want 50", delta)
		}
		return acct("10050"), nil
	}}
	h := newTestRouter(m, &mockQuerier{}, &mockProvisioner{})

	rec := do(t, h, http.MethodPut, "/api/v1/accounts/"+testID+"/balance", `{"amount": 50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateBalanceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ledger.ErrNotFound, http.StatusNotFound},
		{"insufficient funds", ledger.ErrInsufficientFunds, http.StatusBadRequest},
		{"invalid amount", ledger.ErrInvalidAmount, http.StatusBadRequest},
		{"conflict", ledger.ErrConflict, http.StatusConflict},
		{"lock timeout", ledger.ErrLockTimeout, http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockMutator{mutateFn: func(ctx context.Context, id string, delta decimal.Decimal) (models.Account, error) {
				return models.Account{}, tc.err
			}}
			h := newTestRouter(m, &mockQuerier{}, &mockProvisioner{})

			rec := do(t, h, http.MethodPut, "/api/v1/accounts/"+testID+"/balance", `{"amount": -15000}`)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestUpdateBalanceRejectsMalformedAmount(t *testing.T) {
	h := newTestRouter(&mockMutator{}, &mockQuerier{}, &mockProvisioner{})

	for _, body := range []string{`{"amount": "invalid"}`, `{}`, `not json`} {
		rec := do(t, h, http.MethodPut, "/api/v1/accounts/"+testID+"/balance", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestCreateAccount(t *testing.T) {
	p := &mockProvisioner{createFn: func(ctx context.Context, starting decimal.Decimal) (models.Account, error) {
		if !starting.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("starting = %s, want 10000", starting)
		}
		return acct("10000"), nil
	}}
	h := newTestRouter(&mockMutator{}, &mockQuerier{}, p)

	rec := do(t, h, http.MethodPost, "/api/v1/accounts", `{"balance": 10000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAccountRejectsNegativeBalance(t *testing.T) {
	h := newTestRouter(&mockMutator{}, &mockQuerier{}, &mockProvisioner{})

	rec := do(t, h, http.MethodPost, "/api/v1/accounts", `{"balance": -5}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
