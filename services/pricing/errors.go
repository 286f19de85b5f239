package pricing

import "fmt"

// Error codes for pricing failures. These indicate catalog data
// inconsistency, not user-correctable input.
const (
	CodeNegativeBasePrice   = "negativeBasePrice"
	CodeUnsupportedCurrency = "unsupportedCurrency"
	CodeInvalidQuantity     = "invalidQuantity"
	CodeNegativeTotal       = "negativeTotal"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
