// Command decisiond wires the full pipeline for a single synchronous
// invocation: read one document submission from a file, run it through
// FE → FS → PG → (LDS) → DA → H, and print the resulting DecisionRecord.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/fraud-pipeline/configs"
	"github.com/enterprise/fraud-pipeline/internal/decision"
	"github.com/enterprise/fraud-pipeline/internal/document"
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

// submission is the on-disk shape consumed by this entrypoint: a kind tag,
// the kind-specific document payload, and the OCR text, matching the
// upstream interface described in spec.md §6.1.
type submission struct {
	DocumentID string          `json:"document_id"`
	Kind       document.Kind   `json:"kind"`
	Document   json.RawMessage `json:"document"`
	RawText    string          `json:"raw_text"`
}

func main() {
	_ = godotenv.Load()

	inputPath := flag.String("input", "", "path to a submission JSON file")
	dryRun := flag.Bool("dry-run", false, "evaluate without committing to history")
	auditCount := flag.Bool("audit-count", false, "after running, print how many decision records exist for this document ID")
	flag.Parse()

	setupLogging()

	if *inputPath == "" {
		log.Fatal().Msg("missing -input")
	}

	cfg := configs.Load()

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input file")
	}

	var sub submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		log.Fatal().Err(err).Msg("failed to parse submission")
	}

	doc, err := decodeSubmission(sub)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode document")
	}

	db, err := repositories.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	cacheClient, err := queue.NewCacheClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer cacheClient.Close()

	customerRepo := repositories.NewCustomerRecordRepository(db)
	decisionRepo := repositories.NewDecisionRecordRepository(db)
	store := history.NewStore(db, customerRepo, cacheClient)

	kinds := cfg.EnabledKinds
	thresholds := matrix.Thresholds(cfg.RiskThresholds)

	var scorer *scoring.Scorer
	if cfg.Scoring.Mock {
		scorer = scoring.NewMockScorer(kinds)
	} else {
		scorer, err = scoring.NewScorer(cfg.Scoring.ModelDir, kinds, thresholds)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load scoring model artifacts")
		}
	}

	gate := policy.NewGate()
	synthesizer := llm.NewSynthesizer(llm.Config{APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model, Timeout: cfg.LLM.Timeout, Thresholds: thresholds})
	assembler := decision.NewAssembler(thresholds)
	receipts := receipt.NewIssuer(cfg.Receipt.Secret, cfg.Receipt.Expiration)

	p := pipeline.New(scorer, gate, synthesizer, assembler, store, receipts)

	ctx := context.Background()
	now := time.Now()

	var (
		rec     decision.Record
		signed  string
		runErr  error
	)
	if *dryRun {
		rec, runErr = p.RunDryRun(ctx, doc, document.RawText(sub.RawText), now, now)
	} else {
		var result pipeline.Result
		result, runErr = p.Run(ctx, sub.DocumentID, doc, document.RawText(sub.RawText), now, now)
		rec, signed = result.Record, result.Receipt
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("pipeline run failed")
	}

	output := map[string]interface{}{
		"decision_record": rec,
	}
	if signed != "" {
		output["receipt"] = signed
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
	os.Stdout.Write(encoded)
	os.Stdout.WriteString("\n")

	if *auditCount && sub.DocumentID != "" {
		count, err := decisionRepo.CountByDocumentID(ctx, sub.DocumentID)
		if err != nil {
			log.Error().Err(err).Msg("failed to count decision records")
		} else {
			log.Info().Str("document_id", sub.DocumentID).Int("count", count).Msg("decision record audit count")
		}
	}
}

func decodeSubmission(sub submission) (document.Document, error) {
	doc := document.Document{Kind: sub.Kind}
	var err error
	switch sub.Kind {
	case document.KindBankStatement:
		doc.BankStatement = &document.BankStatement{}
		err = json.Unmarshal(sub.Document, doc.BankStatement)
	case document.KindCheck:
		doc.Check = &document.Check{}
		err = json.Unmarshal(sub.Document, doc.Check)
	case document.KindPaystub:
		doc.Paystub = &document.Paystub{}
		err = json.Unmarshal(sub.Document, doc.Paystub)
	case document.KindMoneyOrder:
		doc.MoneyOrder = &document.MoneyOrder{}
		err = json.Unmarshal(sub.Document, doc.MoneyOrder)
	}
	return doc, err
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENVIRONMENT") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
