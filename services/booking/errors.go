package booking

import (
	"errors"
	"fmt"
)

// InvalidTransitionError marks an attempted lifecycle move the state machine
// forbids. These indicate a programming or race defect and are logged as
// bugs, never silently ignored.
type InvalidTransitionError struct {
	Axis string // "booking" or "payment"
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s → %s", e.Axis, e.From, e.To)
}

func newTransitionError(axis, from, to string) error {
	return &InvalidTransitionError{Axis: axis, From: from, To: to}
}

var (
	// ErrFrozen means an invariant violation was detected on the booking and
	// it now only accepts operator intervention.
	ErrFrozen = errors.New("booking is frozen pending operator review")
	// ErrServiceNotEnded means Complete was called before the service end
	// date passed.
	ErrServiceNotEnded = errors.New("service end date has not passed")
	// ErrReviewNotAllowed means a review was attached to a non-completed
	// booking.
	ErrReviewNotAllowed = errors.New("review can only be attached to a completed booking")
)
