package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledgerkit/banking-ledger/internal/api/httpx"
	"github.com/ledgerkit/banking-ledger/internal/api/validate"
	"github.com/ledgerkit/banking-ledger/internal/ledger"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/shopspring/decimal"
)

type Mutator interface {
	Mutate(ctx context.Context, accountID string, delta decimal.Decimal) (models.Account, error)
}

type Querier interface {
	Read(ctx context.Context, accountID string) (models.Account, error)
}

type Provisioner interface {
	Create(ctx context.Context, startingBalance decimal.Decimal) (models.Account, error)
}

type AccountsHandler struct {
	Engine Mutator
	Reader Querier
	Store  Provisioner
}

func NewAccountsHandler(engine Mutator, reader Querier, store Provisioner) *AccountsHandler {
	return &AccountsHandler{Engine: engine, Reader: reader, Store: store}
}

type createAccountReq struct {
	Balance json.Number `json:"balance" validate:"omitempty,numeric"`
}

type updateBalanceReq struct {
	Amount json.Number `json:"amount" validate:"required,numeric"`
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", errs)
		return
	}

	starting := decimal.Zero
	if req.Balance != "" {
		var err error
		starting, err = decimal.NewFromString(req.Balance.String())
		if err != nil || starting.IsNegative() {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_balance", "starting balance must be a non-negative number", nil)
			return
		}
	}

	a, err := h.Store.Create(r.Context(), starting)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, a, "account created")
}

func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_id", "account id must be a valid uuid", nil)
		return
	}
	a, err := h.Reader.Read(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, a, "")
}

func (h *AccountsHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_id", "account id must be a valid uuid", nil)
		return
	}

	var req updateBalanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", errs)
		return
	}
	delta, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "amount must be a number", nil)
		return
	}

	a, err := h.Engine.Mutate(r.Context(), id, delta)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, a, "balance updated successfully")
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "account not found", nil)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusBadRequest, "insufficient_funds", "insufficient funds", nil)
	case errors.Is(err, ledger.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "amount has more than two decimal places", nil)
	case errors.Is(err, ledger.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "balance was modified by another transaction", nil)
	case errors.Is(err, ledger.ErrLockTimeout):
		httpx.WriteError(w, http.StatusServiceUnavailable, "lock_timeout", "account is busy, retry later", nil)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
