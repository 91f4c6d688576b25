package fraud

import "errors"

var (
	// ErrNotFound signals an unknown rule or alert id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals an attempt to resolve an already-resolved alert.
	ErrConflict = errors.New("alert already resolved")
)

// ValidationError reports missing or invalid caller input. The message is
// surfaced verbatim to API clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
