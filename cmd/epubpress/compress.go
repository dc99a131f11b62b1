package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/iamNilotpal/epubpress/config"
	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/services/batch"
	"github.com/iamNilotpal/epubpress/pkg/logger"
)

// compress recompresses local books and prints a batch report to stdout.
func compress(args []string) error {
	flags := flag.NewFlagSet("compress", flag.ContinueOnError)
	configPath := flags.String("config", "", "YAML config file")
	rawLevel := flags.String("level", string(domain.DefaultLevel), "compression level: low, medium or high")
	outDir := flags.String("o", ".", "directory for compressed books")
	format := flags.String("report", "yaml", "report format: yaml or json")
	if err := flags.Parse(args); err != nil {
		return err
	}

	paths := flags.Args()
	if len(paths) == 0 {
		return fmt.Errorf("no input files\n%s", usage)
	}
	if *format != "yaml" && *format != "json" {
		return fmt.Errorf("unknown report format %q", *format)
	}

	level, err := domain.ParseLevel(*rawLevel)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.NewWithLevel("epubpress", cfg.Logging.Level, cfg.Logging.Development)
	defer func() { _ = log.Sync() }()

	fs := afero.NewOsFs()
	files := make([]domain.BatchFile, 0, len(paths))
	for _, p := range paths {
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			return fmt.Errorf("cannot read %q: %w", p, err)
		}
		files = append(files, domain.BatchFile{Name: filepath.Base(p), Data: data})
	}

	_, runner, err := newPipelines(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	coordinator := batch.New(runner, nil, batch.Options{MaxFiles: len(files), Workers: cfg.Batch.Workers}, log)
	res, err := coordinator.Run(ctx, files, level)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}
	for i, item := range res.Items {
		if item.Status != domain.BatchSuccess {
			continue
		}
		dst := filepath.Join(*outDir, item.CompressedName)
		if err := afero.WriteFile(fs, dst, res.Outputs[i], 0o644); err != nil {
			return fmt.Errorf("cannot write %q: %w", dst, err)
		}
	}

	if err := writeReport(os.Stdout, *format, &res.BatchResult); err != nil {
		return err
	}
	if res.ErrorCount > 0 {
		return fmt.Errorf("%d of %d books failed", res.ErrorCount, len(files))
	}
	return nil
}

func writeReport(w io.Writer, format string, res *domain.BatchResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return err
	}
	return enc.Close()
}
