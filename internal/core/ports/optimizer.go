package ports

import "github.com/iamNilotpal/epubpress/internal/core/domain"

// EntryOptimizer transforms the bytes of one entry according to a profile.
type EntryOptimizer interface {
	// Optimize never fails outward: the returned bytes are always usable.
	// When err is non-nil it is an *errors.OptimizationError and the
	// returned bytes are the unmodified input.
	Optimize(name string, data []byte, profile domain.Profile) ([]byte, error)
}
