package ledger

import (
	"context"
	"log/slog"

	"github.com/ledgerkit/banking-ledger/internal/metrics"
	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/ledgerkit/banking-ledger/internal/repository"
)

// Reader is the read path. A cache hit may be stale relative to a mutation
// committed after it was cached; that window is bounded by the TTL and by
// the engine's invalidate-on-write. Never locks, never joins the engine's
// transaction.
type Reader struct {
	store repository.Accounts
	cache Cache
	log   *slog.Logger
}

func NewReader(store repository.Accounts, cache Cache, log *slog.Logger) *Reader {
	return &Reader{store: store, cache: cache, log: log}
}

func (r *Reader) Read(ctx context.Context, accountID string) (models.Account, error) {
	if a, ok := r.cache.Get(ctx, accountID); ok {
		metrics.CacheHits.Inc()
		return *a, nil
	}
	metrics.CacheMisses.Inc()

	a, err := r.store.Get(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	r.cache.Set(ctx, a)
	return a, nil
}
