package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/labforms/coc-extractor/internal/common"
	"github.com/labforms/coc-extractor/internal/export"
	"github.com/labforms/coc-extractor/internal/ingest"
	"github.com/labforms/coc-extractor/internal/pipeline"
	"github.com/labforms/coc-extractor/internal/repository"
)

// coc-batch replays saved raw model responses from a directory, assembles
// them into a document, archives it locally, and writes an XLSX report.
// With --watch it keeps running and re-assembles whenever a dump changes.

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of raw response dumps (required)")
		out     = flag.String("out", "", "output XLSX path (defaults to <dir>/extraction.xlsx)")
		archive = flag.String("archive", "", "sqlite archive path (defaults to ARCHIVE_SQLITE_PATH)")
		watch   = flag.Bool("watch", false, "keep running and re-assemble when dumps change")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "extraction.xlsx")
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *archive == "" {
		*archive = cfg.Archive.SQLitePath
	}

	store, err := repository.OpenArchive(*archive, logger)
	if err != nil {
		logger.Error("failed to open archive", "path", *archive, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// No generator needed for replay; Assemble works on raw units.
	proc := pipeline.NewProcessor(logger, nil, cfg.Pipeline)

	run := func(ctx context.Context) error {
		units, err := ingest.LoadUnits(*dir)
		if err != nil {
			return fmt.Errorf("load response dumps: %w", err)
		}
		if len(units) == 0 {
			return fmt.Errorf("no .txt response dumps found in %s", *dir)
		}
		logger.Info("loaded response dumps", "dir", *dir, "units", len(units))

		doc, err := proc.Assemble(units)
		if err != nil {
			return fmt.Errorf("assemble: %w", err)
		}

		id, err := store.Save(ctx, *dir, doc)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}

		body, err := export.NewService(logger).DocumentXLSX(doc)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(*out, body, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}

		logger.Info("batch extraction complete",
			"archive_id", id,
			"xlsx", *out,
			"fields", len(doc.ExtractedFields),
			"rows", len(doc.SampleData),
		)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Error("batch run failed", "error", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{*dir},
		Debounce: 2 * time.Second,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("watching for response dumps", "dir", *dir)

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			logger.Info("dump changed, re-assembling", "path", path)
			if err := run(ctx); err != nil {
				logger.Error("batch run failed", "error", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Error("watcher error", "error", err)
			}
		}
	}
}
