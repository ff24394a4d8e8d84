package domain

import (
	"errors"
	"strings"
)

// Domain errors as sentinel values
var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid price request")
	ErrInvalidScope   = errors.New("invalid price scope")
	ErrNoPriceFields  = errors.New("at least one price field is required")

	// Validation
	ErrPriceValidation = errors.New("price validation failed")

	// Timeline conflicts
	ErrPendingFuturePrice     = errors.New("a pending future price already exists")
	ErrNoPendingFuturePrice   = errors.New("no pending future price exists")
	ErrConcurrentModification = errors.New("price scope was modified concurrently")
	ErrTimelineInvariant      = errors.New("price timeline invariant violated")

	// Lookups
	ErrPriceNotFound = errors.New("no price is effective at the requested time")
)

// ValidationError carries every blocking error found by Validate together
// with the advisory warnings of the same run.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return ErrPriceValidation.Error() + ": " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrPriceValidation
}

// IsConflict reports whether err is one of the timeline conflicts callers can
// resolve by acting on the existing state (cancel the future price, reload).
func IsConflict(err error) bool {
	return errors.Is(err, ErrPendingFuturePrice) || errors.Is(err, ErrConcurrentModification)
}
