package ports

import (
	"context"
	"time"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

// TaskRepository persists task records. Implementations only store and
// load; transition rules and per-task write serialization live in the
// task registry that owns the repository.
type TaskRepository interface {
	// Save creates or replaces the record for task.ID.
	Save(ctx context.Context, task *domain.Task) error

	// Find loads a record. Unknown ids fail with errors.ErrTaskNotFound.
	Find(ctx context.Context, id string) (*domain.Task, error)

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Stale lists the ids of records last updated before the cutoff.
	Stale(ctx context.Context, before time.Time) ([]string, error)

	// Close releases the backend.
	Close() error
}

// ArtifactStore holds pipeline outputs until they are fetched or expire.
type ArtifactStore interface {
	// Put stores data under key and returns its description.
	Put(ctx context.Context, key, filename string, data []byte) (*domain.Artifact, error)

	// Fetch returns the artifact and its bytes. One-time stores remove it
	// once read. Unknown keys fail with errors.ErrArtifactNotFound.
	Fetch(ctx context.Context, key string) (*domain.Artifact, []byte, error)

	// Delete removes an artifact. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error

	// Sweep removes artifacts created before the cutoff and reports how many.
	Sweep(ctx context.Context, before time.Time) (int, error)
}
