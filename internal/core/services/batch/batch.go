// Package batch runs the pipeline over several archives at once.
package batch

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/core/services/pipeline"
	"github.com/iamNilotpal/epubpress/internal/metrics"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

const DefaultMaxFiles = 10

// Options bounds a batch run.
type Options struct {
	// MaxFiles is the largest accepted batch.
	//
	// Default: 10
	MaxFiles int

	// Workers is how many archives are processed at the same time. Each
	// running archive holds its decompressed content in memory.
	//
	// Default: min(GOMAXPROCS, 4)
	Workers int
}

func DefaultOptions() Options {
	return Options{MaxFiles: DefaultMaxFiles, Workers: min(runtime.GOMAXPROCS(0), 4)}
}

// Runner runs the pipeline over one archive.
type Runner interface {
	Run(
		ctx context.Context, taskID string, data []byte, level domain.Level, tracker ports.ProgressTracker,
	) (*pipeline.Outcome, error)
}

// Result is a batch result together with the recompressed archives, which
// are only kept in memory when the coordinator has no artifact store.
type Result struct {
	domain.BatchResult
	Outputs [][]byte
}

// Coordinator runs one pipeline per file with bounded parallelism. A
// failing file never stops its siblings.
type Coordinator struct {
	runner    Runner
	artifacts ports.ArtifactStore
	opts      Options
	log       *zap.SugaredLogger
}

// Creates a coordinator. When artifacts is nil, outputs are returned in
// Result.Outputs instead of being stored.
func New(runner Runner, artifacts ports.ArtifactStore, opts Options, log *zap.SugaredLogger) *Coordinator {
	def := DefaultOptions()
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = def.MaxFiles
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}

	return &Coordinator{
		runner:    runner,
		artifacts: artifacts,
		opts:      opts,
		log:       log.With("component", "batch"),
	}
}

// Run processes files at level and returns one item per file in input order.
// Only input validation fails the whole batch.
func (c *Coordinator) Run(ctx context.Context, files []domain.BatchFile, level domain.Level) (*Result, error) {
	switch {
	case len(files) == 0:
		return nil, errors.NewValidationError(errors.CodeNoFile, "files", 0, nil)
	case len(files) > c.opts.MaxFiles:
		return nil, errors.NewValidationError(errors.CodeTooManyFiles, "files", len(files), nil)
	case !level.Valid():
		return nil, errors.NewValidationError(errors.CodeInvalidLevel, "level", level, nil)
	}

	batchID := uuid.NewString()
	items := make([]domain.BatchItem, len(files))
	outputs := make([][]byte, len(files))

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for i, f := range files {
		g.Go(func() error {
			items[i], outputs[i] = c.runOne(ctx, batchID, f, level)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{
		BatchResult: domain.BatchResult{BatchID: batchID, Level: level, Items: items},
		Outputs:     outputs,
	}
	for _, item := range items {
		if item.Status == domain.BatchSuccess {
			res.SuccessCount++
		} else {
			res.ErrorCount++
		}
		metrics.BatchFiles.WithLabelValues(string(item.Status)).Inc()
	}

	c.log.Infow(
		"batch finished",
		"batch", batchID, "level", level, "files", len(files), "success", res.SuccessCount, "errors", res.ErrorCount,
	)
	return res, nil
}

func (c *Coordinator) runOne(
	ctx context.Context, batchID string, f domain.BatchFile, level domain.Level,
) (domain.BatchItem, []byte) {
	id := uuid.NewString()
	item := domain.BatchItem{
		OriginalName: f.Name,
		OriginalSize: int64(len(f.Data)),
		Status:       domain.BatchError,
	}

	out, err := c.runner.Run(ctx, id, f.Data, level, nil)
	if err != nil {
		c.log.Warnw("batch file failed", "batch", batchID, "file", f.Name, "code", errors.CodeOf(err), "error", err)
		item.Error = pipeline.TaskError(err)
		return item, nil
	}

	item.CompressedName = domain.OutputName(f.Name)
	if c.artifacts != nil {
		art, err := c.artifacts.Put(ctx, domain.ArtifactKey(id), item.CompressedName, out.Archive)
		if err != nil {
			c.log.Errorw("cannot store batch output", "batch", batchID, "file", f.Name, "error", err)
			item.Error = pipeline.TaskError(err)
			return item, nil
		}
		item.Artifact = art.Key
	}

	item.Status = domain.BatchSuccess
	item.CompressedSize = out.CompressedSize
	item.CompressionRatio = out.CompressionRatio
	item.BytesSaved = out.BytesSaved

	if c.artifacts != nil {
		return item, nil
	}
	return item, out.Archive
}
