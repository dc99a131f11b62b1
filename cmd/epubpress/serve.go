package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamNilotpal/epubpress/config"
	"github.com/iamNilotpal/epubpress/internal/api"
	"github.com/iamNilotpal/epubpress/internal/core/services/batch"
	"github.com/iamNilotpal/epubpress/internal/core/services/compressor"
	"github.com/iamNilotpal/epubpress/internal/core/services/progress"
	"github.com/iamNilotpal/epubpress/internal/core/services/tasks"
	"github.com/iamNilotpal/epubpress/internal/supervisor"
	"github.com/iamNilotpal/epubpress/pkg/logger"
	"github.com/iamNilotpal/epubpress/pkg/system"
)

func serve(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := flags.String("config", "", "YAML config file (default: $EPUBPRESS_CONFIG or ./epubpress.yaml)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.NewWithLevel("epubpress", cfg.Logging.Level, cfg.Logging.Development)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg.Tasks, log)
	if err != nil {
		return fmt.Errorf("cannot open task store: %w", err)
	}

	artifacts, releaseArtifacts, err := openArtifacts(cfg.Artifacts, log)
	if err != nil {
		_ = repo.Close()
		return fmt.Errorf("cannot open artifact store: %w", err)
	}

	single, multi, err := newPipelines(cfg, log)
	if err != nil {
		_ = repo.Close()
		_ = releaseArtifacts()
		return err
	}

	broker := progress.NewBroker(progress.DefaultBuffer, log)
	registry := tasks.NewRegistry(
		repo, broker, tasks.Options{Retention: cfg.Tasks.Retention, Shards: cfg.Tasks.Shards}, log,
	)
	batches := batch.New(multi, artifacts, batch.Options{MaxFiles: cfg.Batch.MaxFiles, Workers: cfg.Batch.Workers}, log)
	svc := compressor.New(ctx, single, registry, artifacts, batches, broker, log)

	handler := api.NewHandler(svc, api.Options{
		MaxUploadBytes:    cfg.Limits.MaxUploadBytes,
		MaxBatchFiles:     cfg.Batch.MaxFiles,
		MaxBatchFileBytes: cfg.Batch.MaxFileBytes,
		RateLimit:         cfg.Server.RateLimit,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
		Metrics:           cfg.Metrics.Enabled,
	}, log)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(log, supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewAPIService(server, cfg.Server.ShutdownTimeout, log))
	tree.AddMaintenanceService(supervisor.NewSweeperService(svc, cfg.Tasks.SweepInterval, log))

	log.Infow(
		"starting epubpress",
		"addr", cfg.Server.Addr,
		"backend", cfg.Tasks.Backend,
		"retention", cfg.Tasks.Retention,
		"artifacts", cfg.Artifacts.Dir,
	)

	serveErr := tree.Serve(ctx)
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}
	log.Infow("shutting down", "error", serveErr)

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		log.Warnw("services did not stop in time", "services", report)
	}

	// In-flight tasks observe the cancelled context and fail; wait for
	// them to record their state before closing the stores.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	closeErr := system.RunWithContext(shutdownCtx, func(context.Context) error {
		svc.Wait()
		return errors.Join(repo.Close(), releaseArtifacts())
	})
	if closeErr != nil {
		log.Errorw("shutdown incomplete", "error", closeErr)
	}

	return errors.Join(serveErr, closeErr)
}
