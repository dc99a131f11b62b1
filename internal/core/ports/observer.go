package ports

import (
	"context"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

// ProgressObserver receives every committed task transition.
// Publish must not block the pipeline.
type ProgressObserver interface {
	Publish(event domain.ProgressEvent)
}

// ProgressTracker is the narrow view of the task registry the pipeline
// writes through. Each call commits before returning.
type ProgressTracker interface {
	Stage(ctx context.Context, taskID string, stage domain.Stage) error
	Progress(ctx context.Context, taskID string, percent int, currentFile string) error
}
