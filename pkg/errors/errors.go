package errors

import (
	"errors"
	"fmt"
	"time"
)

// Category classifies the failures that can occur while recompressing an
// archive or serving its task. Every category maps to a terminal outcome that
// is reported to the caller with a stable code.
type Category int

const (
	// CategoryValidation indicates the request was rejected before any work
	// started: oversized input, wrong format, unknown level, bad task id.
	CategoryValidation Category = iota + 1

	// CategoryCorruptArchive indicates the input looked like an EPUB but its
	// ZIP structure could not be read.
	CategoryCorruptArchive

	// CategoryEntryOptimization indicates a single entry could not be optimized.
	// It is always recovered locally by keeping the original bytes.
	CategoryEntryOptimization

	// CategoryPack indicates the processed entries could not be serialized
	// back into a valid archive.
	CategoryPack

	// CategoryNotFound indicates a task or artifact id that was never known.
	CategoryNotFound

	// CategoryExpired indicates a task or artifact that existed but fell out
	// of the retention window.
	CategoryExpired

	// CategoryStorage indicates the task repository or artifact store failed.
	CategoryStorage

	// CategoryInternal covers everything else, including illegal state transitions.
	CategoryInternal
)

// String returns the string representation of the error category.
// This is useful for logging, metrics, and error reporting.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryCorruptArchive:
		return "corrupt_archive"
	case CategoryEntryOptimization:
		return "entry_optimization"
	case CategoryPack:
		return "pack"
	case CategoryNotFound:
		return "not_found"
	case CategoryExpired:
		return "expired"
	case CategoryStorage:
		return "storage"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// PressError is the error carried by every terminal failure of a task.
type PressError struct {
	Err        error
	Op         string
	Code       string
	Message    string
	Suggestion string
	Timestamp  time.Time
	Category   Category
}

// New creates a PressError with the message and suggestion registered for code.
func New(category Category, code, op string, err error) *PressError {
	msg := messages[code]
	return &PressError{
		Err:        err,
		Op:         op,
		Code:       code,
		Message:    msg.message,
		Suggestion: msg.suggestion,
		Timestamp:  time.Now(),
		Category:   category,
	}
}

func (e *PressError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%v] %s: %s", e.Category, e.Op, e.Code)
	}
	return fmt.Sprintf("[%v] %s: %s: %v", e.Category, e.Op, e.Code, e.Err)
}

func (e *PressError) Unwrap() error {
	return e.Err
}

// Is matches any PressError carrying the same code, so the sentinels below
// work with errors.Is regardless of operation or wrapped cause.
func (e *PressError) Is(target error) bool {
	t, ok := target.(*PressError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsRetryAble returns whether errors of this category can be retried.
// This helps callers decide whether to retry failed operations.
func (e *PressError) IsRetryAble() bool {
	switch e.Category {
	case CategoryStorage:
		// Repository and filesystem failures are usually transient.
		return true
	case CategoryPack, CategoryInternal:
		return true
	default:
		// Retrying the same bytes or the same id yields the same answer.
		return false
	}
}

// Sentinels for errors.Is checks.
var (
	ErrTaskNotFound     = &PressError{Category: CategoryNotFound, Code: CodeTaskNotFound}
	ErrTaskExpired      = &PressError{Category: CategoryExpired, Code: CodeTaskExpired}
	ErrTaskExists       = &PressError{Category: CategoryValidation, Code: CodeTaskExists}
	ErrArtifactNotFound = &PressError{Category: CategoryNotFound, Code: CodeArtifactNotFound}
	ErrCorruptArchive   = &PressError{Category: CategoryCorruptArchive, Code: CodeFileCorrupted}
	ErrPack             = &PressError{Category: CategoryPack, Code: CodePackFailed}
	ErrInvalidState     = &PressError{Category: CategoryInternal, Code: CodeInvalidTransition}
)

// Wraps err as a not-found failure for op.
func NotFound(code, op string, err error) *PressError {
	return New(CategoryNotFound, code, op, err)
}

// Wraps err as an archive that could not be read.
func CorruptArchive(op string, err error) *PressError {
	return New(CategoryCorruptArchive, CodeFileCorrupted, op, err)
}

// Wraps err as an archive that could not be written.
func Pack(op string, err error) *PressError {
	return New(CategoryPack, CodePackFailed, op, err)
}

// Wraps err as a repository or filesystem failure.
func Storage(op string, err error) *PressError {
	return New(CategoryStorage, CodeStorage, op, err)
}

// CategoryOf reports the category of err, CategoryInternal when unknown.
func CategoryOf(err error) Category {
	if ve := AsValidationError(err); ve != nil {
		return CategoryValidation
	}
	if oe := AsOptimizationError(err); oe != nil {
		return CategoryEntryOptimization
	}

	var pe *PressError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryInternal
}

// CodeOf extracts the stable machine code carried by err.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if ve := AsValidationError(err); ve != nil && ve.Code != "" {
		return ve.Code
	}
	if oe := AsOptimizationError(err); oe != nil {
		return CodeEntryOptimization
	}

	var pe *PressError
	if errors.As(err, &pe) && pe.Code != "" {
		return pe.Code
	}
	return CodeCompression
}

// MessageOf returns the human message registered for the code of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := messages[CodeOf(err)]; ok {
		return msg.message
	}
	return err.Error()
}

// SuggestionOf returns the remediation hint registered for the code of err.
func SuggestionOf(err error) string {
	return messages[CodeOf(err)].suggestion
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
