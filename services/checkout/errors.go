package checkout

import "fmt"

// InvalidCartError rejects a malformed or out-of-policy cart. These are
// user-correctable.
type InvalidCartError struct {
	Code    string
	Message string
}

func (e *InvalidCartError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newCartError(code, format string, args ...any) error {
	return &InvalidCartError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Cart error codes.
const (
	CodeEmptyCart       = "emptyCart"
	CodeUnknownService  = "unknownService"
	CodeInactiveService = "inactiveService"
	CodeDatesInPast     = "datesInPast"
	CodeBadDateRange    = "badDateRange"
)

// FraudDeniedError is a terminal rejection from fraud screening; the caller
// must not retry.
type FraudDeniedError struct {
	UserID string
}

func (e *FraudDeniedError) Error() string {
	return fmt.Sprintf("checkout denied by fraud screening for user %s", e.UserID)
}
