package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/labforms/coc-extractor/internal/common"
	"github.com/labforms/coc-extractor/internal/export"
	"github.com/labforms/coc-extractor/internal/llm/gemini"
	"github.com/labforms/coc-extractor/internal/match"
	"github.com/labforms/coc-extractor/internal/pipeline"
	"github.com/labforms/coc-extractor/internal/repository"
	"github.com/labforms/coc-extractor/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Results store is optional; without DB_URL the server still extracts,
	// it just cannot persist or replay results.
	var results repository.ResultRepository
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer repository.Close(pool, logger)

		if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		results = repository.NewResultRepository(pool, logger)
	} else {
		logger.Warn("DB_URL not set; results will not be persisted")
	}

	gen := gemini.NewClient(gemini.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	proc := pipeline.NewProcessor(logger, gen, cfg.Pipeline)

	// Async extractions land in the results store; without a store the
	// documents are extracted and dropped, which is still useful for logs.
	sink := func(ctx context.Context, job pipeline.Job, doc *pipeline.Document, err error) {
		if err != nil || doc == nil || results == nil {
			return
		}
		if _, saveErr := results.Save(ctx, job.DocumentID, doc); saveErr != nil {
			logger.Error("async result save failed", "document_id", job.DocumentID, "error", saveErr)
		}
	}
	queue := pipeline.NewExtractQueue(proc, sink, logger,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithQueueSize(cfg.Pipeline.QueueSize),
	)

	matcher := match.Matcher{Threshold: cfg.Pipeline.MatchThreshold}
	handlers := server.NewHandlers(proc, queue, results, export.NewService(logger), matcher, logger)
	srv := server.NewServer(cfg.Server, handlers, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
}
