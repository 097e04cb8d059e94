package auction

import (
	"errors"
	"fmt"
)

// Sentinel error kinds the engine returns. Controllers map these to HTTP
// status codes; none of them are retried by the engine itself.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid auction state")
	ErrNotAvailable     = errors.New("player not available")
	ErrConflict         = errors.New("conflicting sale detected")
	ErrCapacityExceeded = errors.New("team roster at capacity")
	ErrBidRejected      = errors.New("bid rejected")
	ErrValidation       = errors.New("validation failed")
)

// NotFoundError wraps ErrNotFound with the missing resource.
func NotFoundError(resource string, id uint) error {
	return fmt.Errorf("%s %d: %w", resource, id, ErrNotFound)
}

// InvalidStateError wraps ErrInvalidState with the attempted transition.
func InvalidStateError(op string, status AuctionStatus) error {
	return fmt.Errorf("cannot %s while auction is %s: %w", op, status, ErrInvalidState)
}

// BidRejectedError wraps ErrBidRejected with the specific violated rule so
// callers can tell the moderator which admission check failed.
func BidRejectedError(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrBidRejected)...)
}
