package errors

import (
	"errors"
	"fmt"
)

// OptimizationError reports why a single archive entry kept its original bytes.
// It never terminates a task.
type OptimizationError struct {
	Entry    string // Entry name inside the archive.
	Category string // Entry category (text, image, font, other).
	Reason   string // Short machine-friendly reason, used as a metrics label.
	Err      error
}

func NewOptimizationError(entry, category, reason string, err error) *OptimizationError {
	return &OptimizationError{Entry: entry, Category: category, Reason: reason, Err: err}
}

func (e *OptimizationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("optimize %s entry %q: %s", e.Category, e.Entry, e.Reason)
	}
	return fmt.Sprintf("optimize %s entry %q: %s: %v", e.Category, e.Entry, e.Reason, e.Err)
}

func (e *OptimizationError) Unwrap() error {
	return e.Err
}

// AsOptimizationError attempts to extract an OptimizationError from a given error.
func AsOptimizationError(err error) *OptimizationError {
	var oe *OptimizationError
	if errors.As(err, &oe) {
		return oe
	}
	return nil
}
