package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/config"
	"github.com/iamNilotpal/epubpress/internal/adapters/archive"
	"github.com/iamNilotpal/epubpress/internal/adapters/artifact"
	"github.com/iamNilotpal/epubpress/internal/adapters/checksum"
	"github.com/iamNilotpal/epubpress/internal/adapters/compression"
	"github.com/iamNilotpal/epubpress/internal/adapters/store"
	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/core/services/optimize"
	"github.com/iamNilotpal/epubpress/internal/core/services/pipeline"
	"github.com/iamNilotpal/epubpress/internal/core/services/profile"
)

// newPipelines builds the pipeline for single uploads and the one for batch
// files, which only differ in their input size limit.
func newPipelines(cfg *config.Config, log *zap.SugaredLogger) (single, multi *pipeline.Pipeline, err error) {
	codec, err := archive.NewZipCodec(archive.Options{
		MaxEntries:      cfg.Limits.MaxEntries,
		MaxExpandedSize: cfg.Limits.MaxExpanded,
		BufferSize:      archive.DefaultOptions().BufferSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create archive codec: %w", err)
	}

	optimizer := optimize.New(log, optimize.Options{MaxPixels: cfg.Limits.MaxPixels})
	profiles := profile.Default()

	single = pipeline.New(codec, optimizer, profiles, pipeline.Options{MaxInputSize: cfg.Limits.MaxUploadBytes}, log)
	multi = pipeline.New(codec, optimizer, profiles, pipeline.Options{MaxInputSize: cfg.Batch.MaxFileBytes}, log)
	return single, multi, nil
}

// openRepository connects the configured task backend. Backend records
// outlive the retention window so expired tasks are still reported as
// expired before the backend drops them.
func openRepository(ctx context.Context, cfg config.TasksConfig, log *zap.SugaredLogger) (ports.TaskRepository, error) {
	ttl := 2 * cfg.Retention

	switch cfg.Backend {
	case "redis":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		cl, err := store.DialRedis(dialCtx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisRepository(cl, ttl, log), nil

	case "badger":
		db, err := store.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return store.NewBadgerRepository(db, ttl), nil

	default:
		return store.NewMemoryRepository(), nil
	}
}

// openArtifacts creates the artifact store on the local filesystem. The
// returned func releases the at-rest compressor.
func openArtifacts(cfg config.ArtifactsConfig, log *zap.SugaredLogger) (*artifact.FileStore, func() error, error) {
	opts := artifact.Options{Dir: cfg.Dir, OneTime: cfg.OneTime}
	release := func() error { return nil }

	if cfg.Compress {
		zstd, err := compression.NewZstd(compression.Options{Level: cfg.Level, Concurrency: runtime.GOMAXPROCS(0)})
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create artifact compressor: %w", err)
		}
		opts.Compressor = zstd
		release = zstd.Close
	}

	if cfg.Checksum != "" {
		sum, err := checksum.New(domain.ChecksumAlgorithm(cfg.Checksum))
		if err != nil {
			_ = release()
			return nil, nil, err
		}
		opts.Checksum = sum
	}

	artifacts, err := artifact.NewFileStore(afero.NewOsFs(), opts, log)
	if err != nil {
		_ = release()
		return nil, nil, err
	}
	return artifacts, release, nil
}
