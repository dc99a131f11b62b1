// Package compressor is the entry point used by transports and the CLI.
// It ties submissions to tasks, runs pipelines in the background, stores
// their outputs and expires both after the retention window.
package compressor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/core/services/batch"
	"github.com/iamNilotpal/epubpress/internal/core/services/pipeline"
	"github.com/iamNilotpal/epubpress/internal/core/services/tasks"
	"github.com/iamNilotpal/epubpress/internal/metrics"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

// Runner validates and recompresses one archive.
type Runner interface {
	Validate(data []byte) error
	Run(
		ctx context.Context, taskID string, data []byte, level domain.Level, tracker ports.ProgressTracker,
	) (*pipeline.Outcome, error)
}

// Subscriber hands out progress streams.
type Subscriber interface {
	Subscribe(taskID string) (<-chan domain.ProgressEvent, func())
}

// Submission is one archive handed in for recompression.
type Submission struct {
	Data     []byte
	Filename string
	Level    string // empty selects the default level
	TaskID   string // empty generates one
}

// Service is safe for concurrent use.
type Service struct {
	ctx       context.Context
	wg        sync.WaitGroup
	runner    Runner
	registry  *tasks.Registry
	artifacts ports.ArtifactStore
	batches   *batch.Coordinator
	events    Subscriber
	log       *zap.SugaredLogger
}

// Creates the service. Background runs are bound to ctx: cancelling it
// stops them between entries and fails their tasks.
func New(
	ctx context.Context,
	runner Runner,
	registry *tasks.Registry,
	artifacts ports.ArtifactStore,
	batches *batch.Coordinator,
	events Subscriber,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		ctx:       ctx,
		runner:    runner,
		registry:  registry,
		artifacts: artifacts,
		batches:   batches,
		events:    events,
		log:       log.With("component", "compressor"),
	}
}

// Submit validates the submission, creates its task and starts the
// pipeline in the background. Invalid input is rejected before any task
// exists.
func (s *Service) Submit(ctx context.Context, sub Submission) (*domain.Task, error) {
	level, err := domain.ParseLevel(sub.Level)
	if err != nil {
		return nil, errors.NewValidationError(errors.CodeInvalidLevel, "level", sub.Level, err)
	}
	if err := tasks.ValidateID(sub.TaskID); err != nil {
		return nil, err
	}
	if err := s.runner.Validate(sub.Data); err != nil {
		return nil, err
	}

	task, err := s.registry.Create(ctx, sub.TaskID, sub.Filename, level)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(task.ID, sub.Data, sub.Filename, level)
	}()

	return task, nil
}

func (s *Service) run(id string, data []byte, filename string, level domain.Level) {
	// Terminal transitions must be recorded even while shutting down.
	final := context.WithoutCancel(s.ctx)

	out, err := s.runner.Run(s.ctx, id, data, level, s.registry)
	if err != nil {
		s.fail(final, id, err)
		return
	}

	name := domain.OutputName(filename)
	art, err := s.artifacts.Put(final, domain.ArtifactKey(id), name, out.Archive)
	if err != nil {
		s.fail(final, id, err)
		return
	}

	if _, err := s.registry.Complete(final, id, out.Result(art.Key, name)); err != nil {
		s.log.Errorw("cannot complete task", "task", id, "error", err)
		if err := s.artifacts.Delete(final, art.Key); err != nil {
			s.log.Warnw("cannot remove orphaned artifact", "task", id, "error", err)
		}
	}
}

func (s *Service) fail(ctx context.Context, id string, cause error) {
	s.log.Warnw("task failed", "task", id, "code", errors.CodeOf(cause), "error", cause)
	if _, err := s.registry.Fail(ctx, id, pipeline.TaskError(cause)); err != nil {
		s.log.Errorw("cannot record task failure", "task", id, "error", err)
	}
}

// Poll returns the committed state of a task.
func (s *Service) Poll(ctx context.Context, id string) (*domain.Task, error) {
	return s.registry.Get(ctx, id)
}

// Fetch returns a stored output by key.
func (s *Service) Fetch(ctx context.Context, key string) (*domain.Artifact, []byte, error) {
	return s.artifacts.Fetch(ctx, key)
}

// Subscribe returns the current state of a task and a stream of its later
// events. When the returned task is already terminal the stream may never
// deliver anything and should be cancelled right away.
func (s *Service) Subscribe(ctx context.Context, id string) (*domain.Task, <-chan domain.ProgressEvent, func(), error) {
	// Subscribe before taking the snapshot so no transition falls between.
	ch, cancel := s.events.Subscribe(id)
	task, err := s.registry.Get(ctx, id)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	metrics.ProgressSubscribers.Inc()
	release := sync.OnceFunc(func() {
		cancel()
		metrics.ProgressSubscribers.Dec()
	})
	return task, ch, release, nil
}

// Batch recompresses files synchronously and stores every output.
func (s *Service) Batch(ctx context.Context, files []domain.BatchFile, rawLevel string) (*domain.BatchResult, error) {
	level, err := domain.ParseLevel(rawLevel)
	if err != nil {
		return nil, errors.NewValidationError(errors.CodeInvalidLevel, "level", rawLevel, err)
	}

	res, err := s.batches.Run(ctx, files, level)
	if err != nil {
		return nil, err
	}
	return &res.BatchResult, nil
}

// Sweep removes expired tasks together with their outputs, then any stored
// output older than the retention window.
func (s *Service) Sweep(ctx context.Context) error {
	ids, err := s.registry.Sweep(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.artifacts.Delete(ctx, domain.ArtifactKey(id)); err != nil {
			s.log.Warnw("cannot remove artifact of expired task", "task", id, "error", err)
		}
	}

	removed, err := s.artifacts.Sweep(ctx, time.Now().Add(-s.registry.Retention()))
	if err != nil {
		return err
	}
	metrics.ArtifactsSwept.Add(float64(removed))

	if len(ids) > 0 || removed > 0 {
		s.log.Infow("expired records removed", "tasks", len(ids), "artifacts", removed)
	}
	return nil
}

// Wait blocks until every background run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
