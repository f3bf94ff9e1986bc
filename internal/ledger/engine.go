package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ledgerkit/banking-ledger/internal/events"
	"github.com/ledgerkit/banking-ledger/internal/metrics"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/ledgerkit/banking-ledger/internal/repository"
	"github.com/ledgerkit/banking-ledger/internal/worker"
	"github.com/shopspring/decimal"
)

// Cache is the invalidation surface the engine needs; reads go through
// Reader.
type Cache interface {
	Get(ctx context.Context, id string) (*models.Account, bool)
	Set(ctx context.Context, a models.Account)
	Delete(ctx context.Context, id string)
}

// Bus publishes domain events. Publish failures never change a mutation's
// outcome.
type Bus interface {
	Publish(ctx context.Context, routingKey string, evt events.Event) error
}

const (
	publishTimeout    = 2 * time.Second
	publishRetries    = 3
	balanceScale      = 2 // NUMERIC(15,2)
	terminalRetryBase = time.Second
)

// Engine serializes concurrent mutations of one account behind the store's
// row lock and keeps the cache and the event stream consistent with the
// committed state.
type Engine struct {
	store repository.Accounts
	cache Cache
	bus   Bus
	wp    *worker.Pool
	log   *slog.Logger
}

func NewEngine(store repository.Accounts, cache Cache, bus Bus, wp *worker.Pool, log *slog.Logger) *Engine {
	return &Engine{store: store, cache: cache, bus: bus, wp: wp, log: log}
}

// Mutate applies delta to the account balance as one all-or-nothing store
// transaction. On success the returned account is the durably committed
// post-mutation state; on error the stored balance is unchanged.
//
// A caller timeout is ambiguous: if it fires after commit the mutation took
// effect anyway, so callers should re-query rather than assume failure.
func (e *Engine) Mutate(ctx context.Context, accountID string, delta decimal.Decimal) (models.Account, error) {
	if delta.Exponent() < -balanceScale {
		metrics.MutationsTotal.WithLabelValues("invalid_amount").Inc()
		return models.Account{}, ErrInvalidAmount
	}

	updated, err := e.mutateOnce(ctx, accountID, delta, true)
	if errors.Is(err, ErrConflict) {
		// Unreachable under correct row locking; retry exactly once before
		// surfacing the invariant breach. The retry is the same logical
		// request, so it does not announce a second time.
		metrics.ConflictRetries.Inc()
		e.log.Error("conditional update lost a race under row lock", "account_id", accountID)
		updated, err = e.mutateOnce(ctx, accountID, delta, false)
	}
	if err != nil {
		// The transaction has already rolled back; the failed event fires
		// exactly once, after rollback.
		e.retryPublish(events.New(events.KeyBalanceFailed, accountID, events.BalanceFailedData{
			Delta:  delta,
			Reason: err.Error(),
		}), events.KeyBalanceFailed)
		metrics.MutationsTotal.WithLabelValues(outcome(err)).Inc()
		return models.Account{}, err
	}

	// Post-commit steps run on a detached context: a caller that gave up
	// waiting must not leave a stale cache entry or a missing event behind.
	postCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	// Delete, not overwrite: the new value was computed inside the lock and
	// must be re-read from the store on the next cache miss.
	e.cache.Delete(postCtx, accountID)

	evt := events.New(events.KeyBalanceUpdated, accountID, events.BalanceUpdatedData{
		PreBalance: updated.Balance.Sub(delta),
		Delta:      delta,
		NewBalance: updated.Balance,
	})
	if err := e.bus.Publish(postCtx, events.KeyBalanceUpdated, evt); err != nil {
		// Degraded but successful: the commit stands, the event is retried
		// off the request path.
		metrics.EventPublishFailures.Inc()
		e.log.Error("terminal event publish failed, scheduling retry", "account_id", accountID, "err", err)
		e.retryPublish(evt, events.KeyBalanceUpdated)
	}

	metrics.MutationsTotal.WithLabelValues("succeeded").Inc()
	return updated, nil
}

func (e *Engine) mutateOnce(ctx context.Context, accountID string, delta decimal.Decimal, announce bool) (models.Account, error) {
	var updated models.Account
	err := e.store.WithTx(ctx, func(tx pgx.Tx) error {
		acct, err := e.store.LockForUpdate(ctx, tx, accountID)
		if err != nil {
			return err
		}

		// The negative-balance check must happen under the lock: two debits
		// can each look safe against a stale read.
		newBalance := acct.Balance.Add(delta)
		if newBalance.IsNegative() {
			return ErrInsufficientFunds
		}

		if announce {
			// Best-effort announcement; a publish failure here does not
			// abort the transaction. The short timeout keeps a stalled
			// broker from extending the lock window.
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			reqEvt := events.New(events.KeyBalanceRequested, accountID, events.BalanceRequestedData{
				PreBalance: acct.Balance,
				Delta:      delta,
			})
			if err := e.bus.Publish(pubCtx, events.KeyBalanceRequested, reqEvt); err != nil {
				metrics.EventPublishFailures.Inc()
				e.log.Warn("requested event publish failed", "account_id", accountID, "err", err)
			}
		}

		updated, err = e.store.ConditionalUpdate(ctx, tx, accountID, acct.Balance, newBalance)
		return err
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

// retryPublish hands an event to the worker pool with bounded retries.
// Used for events that must not block or fail the caller.
func (e *Engine) retryPublish(evt events.Event, routingKey string) {
	e.wp.Submit(func() {
		backoff := terminalRetryBase
		for attempt := 0; attempt < publishRetries; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			err := e.bus.Publish(ctx, routingKey, evt)
			cancel()
			if err == nil {
				return
			}
			time.Sleep(backoff)
			backoff *= 2
		}
		metrics.EventPublishFailures.Inc()
		e.log.Error("event dropped after retries", "type", evt.Type, "account_id", evt.AccountID)
	})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	default:
		return "error"
	}
}
