package availability

import "fmt"

// CapacityError kinds.
const (
	// KindExhausted means the slot cannot hold the requested units.
	KindExhausted = "exhausted"
	// KindConflict means the CAS retry budget ran out under contention; the
	// caller may retry the whole checkout.
	KindConflict = "conflict"
	// KindBlackout means the requested date is blacked out for the service.
	KindBlackout = "blackout"
	// KindNotice means the slot starts within the service's minimum booking
	// notice.
	KindNotice = "notice"
)

// CapacityError is returned when a reservation cannot be admitted.
type CapacityError struct {
	Kind    string
	Message string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the caller can usefully retry the checkout.
func (e *CapacityError) Retryable() bool {
	return e.Kind == KindConflict
}

func newCapacityError(kind, format string, args ...any) error {
	return &CapacityError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
