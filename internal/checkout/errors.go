package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCheckout means the active item source had nothing to submit.
	// It is handled locally; the order collaborator is never called.
	ErrEmptyCheckout = errors.New("nothing to checkout, active item source is empty")

	// ErrSubmitInFlight rejects a second submit attempt while one is still
	// resolving, so a double click cannot create a duplicate order.
	ErrSubmitInFlight = errors.New("order submission already in flight")
)

// ValidationError names the first checkout field that blocked submission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failed order-creation call. It is retryable: the
// cart or buy-now source is left untouched so the shopper can resubmit.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
