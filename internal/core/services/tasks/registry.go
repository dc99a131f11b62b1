// Package tasks owns the lifecycle of compression tasks: creation,
// progress, terminal transitions, polling and retention.
package tasks

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/metrics"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

// idPattern accepts generated UUIDs and caller ids safe for use in keys
// and file names.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Options configures a Registry.
type Options struct {
	// Retention is how long a task stays readable after its last state
	// change. Polling an older task reports it expired.
	//
	// Default: 5m
	Retention time.Duration

	// Shards is the number of write locks tasks are spread over.
	//
	// Default: 64
	Shards int
}

func DefaultOptions() Options {
	return Options{Retention: 5 * time.Minute, Shards: 64}
}

// Registry is the single mutation point for task records. Writes to one
// task are serialized; every committed write is published to the observer.
type Registry struct {
	repo      ports.TaskRepository
	observer  ports.ProgressObserver
	locks     *shardedLocks
	retention time.Duration
	now       func() time.Time
	log       *zap.SugaredLogger
}

// Creates a registry over repo. observer may be nil.
func NewRegistry(
	repo ports.TaskRepository, observer ports.ProgressObserver, opts Options, log *zap.SugaredLogger,
) *Registry {
	def := DefaultOptions()
	if opts.Retention <= 0 {
		opts.Retention = def.Retention
	}
	if opts.Shards <= 0 {
		opts.Shards = def.Shards
	}

	return &Registry{
		repo:      repo,
		observer:  observer,
		locks:     newShardedLocks(opts.Shards),
		retention: opts.Retention,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With("component", "task-registry"),
	}
}

// Retention returns the configured retention window.
func (r *Registry) Retention() time.Duration {
	return r.retention
}

// ValidateID checks a caller-supplied task id. Empty ids are valid and
// mean "generate one".
func ValidateID(id string) error {
	if id != "" && !idPattern.MatchString(id) {
		return errors.NewValidationError(errors.CodeInvalidTaskID, "taskId", id, nil)
	}
	return nil
}

// Create registers a new processing task. An empty id is replaced by a
// generated UUID; an id already in use is rejected.
func (r *Registry) Create(ctx context.Context, id, filename string, level domain.Level) (*domain.Task, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	mu := r.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	_, err := r.repo.Find(ctx, id)
	switch {
	case err == nil:
		return nil, errors.NewValidationError(errors.CodeTaskExists, "taskId", id, nil)
	case !errors.Is(err, errors.ErrTaskNotFound):
		return nil, err
	}

	now := r.now()
	task := &domain.Task{
		ID:        id,
		Status:    domain.StatusProcessing,
		Stage:     domain.StageStarted,
		Filename:  filename,
		Level:     level,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	metrics.TasksActive.Inc()
	r.publish(task)
	r.log.Debugw("task created", "task", id, "level", level)
	return task, nil
}

// Stage records the internal pipeline state of a processing task.
func (r *Registry) Stage(ctx context.Context, id string, stage domain.Stage) error {
	_, err := r.update(ctx, id, func(t *domain.Task) error {
		t.Stage = stage
		return nil
	})
	return err
}

// Progress records entry-level progress. Percentages never decrease and
// are capped at 99 until the task completes.
func (r *Registry) Progress(ctx context.Context, id string, percent int, currentFile string) error {
	_, err := r.update(ctx, id, func(t *domain.Task) error {
		percent = min(max(percent, 0), 99)
		if percent > t.Progress {
			t.Progress = percent
		}
		t.CurrentFile = currentFile
		return nil
	})
	return err
}

// Complete moves a processing task to completed with its result.
func (r *Registry) Complete(ctx context.Context, id string, result *domain.TaskResult) (*domain.Task, error) {
	task, err := r.update(ctx, id, func(t *domain.Task) error {
		t.Status = domain.StatusCompleted
		t.Stage = domain.StageCompleted
		t.Progress = 100
		t.CurrentFile = ""
		t.Result = result
		return nil
	})
	if err == nil {
		metrics.TasksActive.Dec()
	}
	return task, err
}

// Fail moves a processing task to error.
func (r *Registry) Fail(ctx context.Context, id string, taskErr *domain.TaskError) (*domain.Task, error) {
	task, err := r.update(ctx, id, func(t *domain.Task) error {
		t.Status = domain.StatusError
		t.Stage = domain.StageFailed
		t.Error = taskErr
		return nil
	})
	if err == nil {
		metrics.TasksActive.Dec()
	}
	return task, err
}

// Get returns the committed state of a task. Tasks past the retention
// window are deleted and reported expired.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, errors.NewValidationError(errors.CodeMissingTaskID, "taskId", id, nil)
	}

	task, err := r.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !r.expired(task) {
		return task, nil
	}

	removed, err := r.sweepOne(ctx, id)
	if err != nil {
		r.log.Warnw("cannot delete expired task", "task", id, "error", err)
	}
	if removed || err != nil {
		return nil, errors.New(errors.CategoryExpired, errors.CodeTaskExpired, "tasks.get", fmt.Errorf("task %q", id))
	}

	// Another writer touched or removed the task after the first read.
	return r.repo.Find(ctx, id)
}

// Sweep deletes every task past the retention window and returns their ids.
func (r *Registry) Sweep(ctx context.Context) ([]string, error) {
	ids, err := r.repo.Stale(ctx, r.now().Add(-r.retention))
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		ok, err := r.sweepOne(ctx, id)
		if err != nil {
			r.log.Warnw("cannot sweep task", "task", id, "error", err)
			continue
		}
		if ok {
			removed = append(removed, id)
		}
	}

	metrics.TasksSwept.Add(float64(len(removed)))
	return removed, nil
}

func (r *Registry) sweepOne(ctx context.Context, id string) (bool, error) {
	mu := r.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	// The task may have moved since Stale listed it.
	task, err := r.repo.Find(ctx, id)
	if errors.Is(err, errors.ErrTaskNotFound) {
		// The record expired on its own; drop whatever still indexes it.
		return false, r.repo.Delete(ctx, id)
	}
	if err != nil {
		return false, err
	}
	if !r.expired(task) {
		return false, nil
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	if task.Status == domain.StatusProcessing {
		metrics.TasksActive.Dec()
	}
	return true, nil
}

func (r *Registry) expired(task *domain.Task) bool {
	return r.now().Sub(task.UpdatedAt) > r.retention
}

// update applies fn to a processing task under its write lock, commits the
// result and publishes it.
func (r *Registry) update(ctx context.Context, id string, fn func(*domain.Task) error) (*domain.Task, error) {
	mu := r.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	task, err := r.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Status.Terminal() {
		return nil, errors.New(
			errors.CategoryInternal, errors.CodeInvalidTransition, "tasks.update",
			fmt.Errorf("task %q is %s", id, task.Status),
		)
	}

	if err := fn(task); err != nil {
		return nil, err
	}

	task.UpdatedAt = r.now()
	if err := r.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	r.publish(task)
	return task, nil
}

func (r *Registry) publish(task *domain.Task) {
	if r.observer != nil {
		r.observer.Publish(domain.EventFromTask(task))
	}
}
