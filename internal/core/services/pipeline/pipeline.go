// Package pipeline recompresses one EPUB archive: it validates the input,
// optimizes every entry according to the requested level and packs the
// result into a new archive.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/core/services/classify"
	"github.com/iamNilotpal/epubpress/internal/metrics"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

// maxProcessingProgress keeps 100 reserved for the completed state.
const maxProcessingProgress = 99

// Profiles resolves the compression profile of a (category, level) pair.
type Profiles interface {
	Lookup(category domain.Category, level domain.Level) (domain.Profile, error)
}

// Outcome is the result of a successful run.
type Outcome struct {
	Archive          []byte
	OriginalSize     int64
	CompressedSize   int64
	BytesSaved       int64
	CompressionRatio int
	Entries          int
	FailedEntries    int
}

// Result converts the outcome into the task result stored for pollers.
func (o *Outcome) Result(artifact, filename string) *domain.TaskResult {
	return &domain.TaskResult{
		OriginalSize:     o.OriginalSize,
		CompressedSize:   o.CompressedSize,
		CompressionRatio: o.CompressionRatio,
		BytesSaved:       o.BytesSaved,
		Entries:          o.Entries,
		FailedEntries:    o.FailedEntries,
		Artifact:         artifact,
		Filename:         filename,
	}
}

// Pipeline is stateless between runs and safe for concurrent use. Entries
// of one archive are processed sequentially.
type Pipeline struct {
	opts      Options
	codec     ports.ArchiveCodec
	optimizer ports.EntryOptimizer
	profiles  Profiles
	log       *zap.SugaredLogger
}

// Creates a pipeline. A zero MaxInputSize takes the default.
func New(
	codec ports.ArchiveCodec,
	optimizer ports.EntryOptimizer,
	profiles Profiles,
	opts Options,
	log *zap.SugaredLogger,
) *Pipeline {
	if opts.MaxInputSize <= 0 {
		opts.MaxInputSize = DefaultMaxInputSize
	}

	return &Pipeline{
		opts:      opts,
		codec:     codec,
		optimizer: optimizer,
		profiles:  profiles,
		log:       log.With("component", "pipeline"),
	}
}

// Run takes data through Validating, Processing and Packing, reporting each
// stage and every processed entry to tracker before moving on. tracker may
// be nil. Any returned error is terminal for the run and no partial archive
// is produced. Cancelling ctx stops the run between entries.
func (p *Pipeline) Run(
	ctx context.Context, taskID string, data []byte, level domain.Level, tracker ports.ProgressTracker,
) (outcome *Outcome, err error) {
	started := time.Now()
	defer func() {
		status := "completed"
		if err != nil {
			status = errors.CodeOf(err)
		}
		metrics.ObservePipeline(level.String(), status, started)
	}()

	if tracker == nil {
		tracker = nopTracker{}
	}
	if !level.Valid() {
		return nil, errors.NewValidationError(errors.CodeInvalidLevel, "level", level, nil)
	}

	if err := tracker.Stage(ctx, taskID, domain.StageValidating); err != nil {
		return nil, err
	}
	if err := p.Validate(data); err != nil {
		return nil, err
	}

	entries, err := p.codec.Open(data)
	if err != nil {
		return nil, err
	}
	if err := validateMimetype(entries); err != nil {
		return nil, err
	}

	if err := tracker.Stage(ctx, taskID, domain.StageProcessing); err != nil {
		return nil, err
	}

	outcome = &Outcome{OriginalSize: int64(len(data)), Entries: len(entries)}
	packed := make([]domain.PackEntry, 0, len(entries))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline interrupted at entry %q: %w", entry.Name, err)
		}

		pe, err := p.process(taskID, entry, level, outcome)
		if err != nil {
			return nil, err
		}
		packed = append(packed, pe)

		percent := int(math.Round(float64(i+1) / float64(len(entries)) * 100))
		percent = min(percent, maxProcessingProgress)
		if err := tracker.Progress(ctx, taskID, percent, path.Base(entry.Name)); err != nil {
			return nil, err
		}
	}

	if err := tracker.Stage(ctx, taskID, domain.StagePacking); err != nil {
		return nil, err
	}

	final, err := p.codec.Pack(packed)
	if err != nil {
		return nil, err
	}

	outcome.Archive = final
	outcome.CompressedSize = int64(len(final))
	if outcome.BytesSaved > 0 {
		outcome.CompressionRatio = int(math.Round(float64(outcome.BytesSaved) / float64(len(final)) * 100))
	}

	p.log.Infow(
		"archive recompressed",
		"task", taskID,
		"level", level,
		"entries", outcome.Entries,
		"failedEntries", outcome.FailedEntries,
		"originalSize", outcome.OriginalSize,
		"compressedSize", outcome.CompressedSize,
		"bytesSaved", outcome.BytesSaved,
	)
	return outcome, nil
}

// process optimizes one entry and accounts for its savings. A failed
// optimization keeps the original bytes and the run continues.
func (p *Pipeline) process(
	taskID string, entry *domain.Entry, level domain.Level, outcome *Outcome,
) (domain.PackEntry, error) {
	pe := domain.PackEntry{
		Name:         entry.Name,
		IsDir:        entry.IsDir,
		Modified:     entry.Modified,
		ModifiedDate: entry.ModifiedDate,
		ModifiedTime: entry.ModifiedTime,
	}
	if entry.IsDir {
		return pe, nil
	}

	// The container record is copied byte for byte and always stored.
	if entry.Name == mimetypeName {
		pe.Data = entry.Data
		metrics.EntriesProcessed.WithLabelValues(domain.CategoryOther.String(), "unchanged").Inc()
		return pe, nil
	}

	category := classify.Classify(entry.Name)
	profile, err := p.profiles.Lookup(category, level)
	if err != nil {
		return domain.PackEntry{}, fmt.Errorf("entry %q: %w", entry.Name, err)
	}

	original := entry.Data
	optimized, err := p.optimizer.Optimize(entry.Name, original, profile)

	status := "optimized"
	switch {
	case err != nil:
		reason := "unknown"
		if oe := errors.AsOptimizationError(err); oe != nil {
			reason = oe.Reason
		}
		p.log.Warnw(
			"entry optimization failed, keeping original",
			"task", taskID, "entry", entry.Name, "category", category, "reason", reason, "error", err,
		)
		metrics.OptimizationFallbacks.WithLabelValues(category.String(), reason).Inc()

		optimized = original
		outcome.FailedEntries++
		status = "fallback"
	case len(optimized) >= len(original):
		status = "unchanged"
	}
	metrics.EntriesProcessed.WithLabelValues(category.String(), status).Inc()

	if saved := entry.OriginalSize - int64(len(optimized)); saved > 0 {
		outcome.BytesSaved += saved
		metrics.BytesSaved.WithLabelValues(category.String()).Add(float64(saved))
	}

	entry.Data = optimized
	pe.Data = optimized
	pe.DeflateLevel = profile.DeflateLevel
	return pe, nil
}

type nopTracker struct{}

func (nopTracker) Stage(context.Context, string, domain.Stage) error { return nil }
func (nopTracker) Progress(context.Context, string, int, string) error { return nil }

// TaskError describes err the way it is reported on a failed task.
func TaskError(err error) *domain.TaskError {
	return &domain.TaskError{
		Code:       errors.CodeOf(err),
		Message:    errors.MessageOf(err),
		Suggestion: errors.SuggestionOf(err),
	}
}
