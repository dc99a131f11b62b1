package errors

import "errors"

// ValidationError rejects a request before any work starts. Code is what
// callers see; Err, when set, is the detail for logs.
type ValidationError struct {
	Value any    `json:"value"` // The actual value that failed validation.
	Field string `json:"field"` // Name of the field that caused the validation error.
	Code  string `json:"code"`  // Stable machine code, one of the Code* constants.
	Err   error  `json:"error"` // The underlying error providing details about the validation issue.
}

// NewValidationError creates a new ValidationError instance.
func NewValidationError(code, field string, value any, err error) *ValidationError {
	return &ValidationError{
		Err:   err,
		Code:  code,
		Field: field,
		Value: value,
	}
}

// Error prefers the wrapped detail over the registered message.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if msg, ok := messages[e.Code]; ok {
		return msg.message
	}
	return "validation error"
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches the PressError sentinel carrying the same code.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*PressError)
	return ok && t.Code == e.Code
}

// IsValidationError checks if a given error is of type ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError attempts to extract a ValidationError from a given error.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
