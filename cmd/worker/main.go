package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/fraud-pipeline/configs"
	"github.com/enterprise/fraud-pipeline/internal/decision"
	"github.com/enterprise/fraud-pipeline/internal/events"
	"github.com/enterprise/fraud-pipeline/internal/history"
	"github.com/enterprise/fraud-pipeline/internal/llm"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/pipeline"
	"github.com/enterprise/fraud-pipeline/internal/policy"
	"github.com/enterprise/fraud-pipeline/internal/queue"
	"github.com/enterprise/fraud-pipeline/internal/receipt"
	"github.com/enterprise/fraud-pipeline/internal/repositories"
	"github.com/enterprise/fraud-pipeline/internal/scoring"
)

func main() {
	_ = godotenv.Load()

	cfg := configs.Load()
	setupLogging()

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("Starting fraud pipeline worker")

	db, err := repositories.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	streamClient, err := queue.NewRedisStreamClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis Stream")
	}
	defer streamClient.Close()

	cacheClient, err := queue.NewCacheClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis Cache")
	}
	defer cacheClient.Close()

	customerRepo := repositories.NewCustomerRecordRepository(db)
	store := history.NewStore(db, customerRepo, cacheClient)

	kinds := cfg.EnabledKinds
	thresholds := matrix.Thresholds(cfg.RiskThresholds)

	var scorer *scoring.Scorer
	if cfg.Scoring.Mock {
		scorer = scoring.NewMockScorer(kinds)
	} else {
		scorer, err = scoring.NewScorer(cfg.Scoring.ModelDir, kinds, thresholds)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load scoring model artifacts")
		}
	}

	gate := policy.NewGate()
	synthesizer := llm.NewSynthesizer(llm.Config{APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model, Timeout: cfg.LLM.Timeout, Thresholds: thresholds})
	assembler := decision.NewAssembler(thresholds)
	receipts := receipt.NewIssuer(cfg.Receipt.Secret, cfg.Receipt.Expiration)

	publisher, err := events.NewPublisher(cfg.Kafka)
	if err != nil {
		log.Warn().Err(err).Msg("Decision-event publisher unavailable; continuing without Kafka export")
		publisher = nil
	} else {
		defer publisher.Close()
	}

	p := pipeline.New(scorer, gate, synthesizer, assembler, store, receipts)
	workerPool := pipeline.NewWorkerPool(cfg.Worker.Concurrency, p, streamClient, publisher, cfg.Worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- workerPool.Start(ctx)
	}()

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker pool error")
		}
	}

	if err := workerPool.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop worker pool")
	}

	log.Info().Msg("Worker shutdown complete")
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENVIRONMENT") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
