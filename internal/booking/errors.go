package booking

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is returned when a storage call exceeded its deadline.
// The whole operation is safe to retry: the pending-only precondition
// makes approve and reject idempotent from the caller's perspective.
var ErrTimeout = errors.New("storage deadline exceeded")

// InsufficientInventoryError reports a genuine capacity shortfall: the
// hotel does not have enough AVAILABLE rooms of the requested type.
// It is never retried automatically; the guest may resubmit with
// different criteria.
type InsufficientInventoryError struct {
	RoomType  string
	Needed    int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for room type %q: need %d, have %d (shortfall %d)",
		e.RoomType, e.Needed, e.Available, e.Shortfall())
}

// Shortfall returns how many rooms short the hotel is of the request.
func (e *InsufficientInventoryError) Shortfall() int {
	return e.Needed - e.Available
}

// storageErr maps context deadline expiry from the database layer onto
// ErrTimeout so callers can distinguish a hung store from a domain
// failure.  All other errors pass through unchanged.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
