package ledger

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation failures surface before any write happens;
// NotFound/InsufficientBalance are re-checked inside the transaction so a
// racing write can never leave a half-applied money movement behind.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate value")
	ErrInsufficientBalance = errors.New("insufficient custody balance")
)

// ValidationError reports a bad or missing input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
