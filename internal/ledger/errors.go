package ledger

import "errors"

var (
	// ErrNotFound: the account id does not reference an existing account.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds: the debit would take the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflict: the conditional update matched zero rows. Under correct
	// row locking this is unreachable; treat occurrences as an invariant
	// violation worth alerting on.
	ErrConflict = errors.New("balance modified by another transaction")

	// ErrLockTimeout: the row lock could not be acquired within the
	// configured lock_timeout. Retryable by the caller.
	ErrLockTimeout = errors.New("lock wait timeout")

	// ErrInvalidAmount: the delta is not a validly-scaled decimal.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrStoreUnavailable: the store connection failed before a transaction
	// could be opened.
	ErrStoreUnavailable = errors.New("store unavailable")
)
