// Package pipeline orchestrates a single request through the full decision
// path: document → FE → FS → PG → (LDS) → DA → H, per spec.md §3's
// component diagram.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/decision"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/features"
	"github.com/enterprise/fraud-pipeline/internal/history"
	"github.com/enterprise/fraud-pipeline/internal/llm"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/policy"
	"github.com/enterprise/fraud-pipeline/internal/receipt"
	"github.com/enterprise/fraud-pipeline/internal/scoring"
)

// Pipeline wires FE, FS, PG, LDS, DA, and H together for one request at a
// time. The core is single-request cooperative (spec.md §5): callers may
// run many Pipelines concurrently across goroutines, but a Pipeline itself
// does no internal fan-out.
type Pipeline struct {
	scorer      *scoring.Scorer
	gate        *policy.Gate
	synthesizer *llm.Synthesizer
	assembler   *decision.Assembler
	store       *history.Store
	receipts    *receipt.Issuer
}

func New(scorer *scoring.Scorer, gate *policy.Gate, synthesizer *llm.Synthesizer, assembler *decision.Assembler, store *history.Store, receipts *receipt.Issuer) *Pipeline {
	return &Pipeline{
		scorer:      scorer,
		gate:        gate,
		synthesizer: synthesizer,
		assembler:   assembler,
		store:       store,
		receipts:    receipts,
	}
}

// Result is what a pipeline run produces: the DecisionRecord plus a signed
// receipt over it.
type Result struct {
	Record  decision.Record
	Receipt string
}

// Run executes FE → FS → PG → (LDS) → DA → H for one document, committing
// the outcome to H when the document carries an identity key (a document
// without one is decided and receipted but not committed). asOf and
// decidedAt are threaded explicitly so FE and DA
// stay pure and testable; callers pass time.Now() in production.
func (p *Pipeline) Run(ctx context.Context, documentID string, doc document.Document, text document.RawText, asOf time.Time, decidedAt time.Time) (Result, error) {
	identityKey, _ := doc.IdentityKey()
	fingerprint, _ := doc.Fingerprint()

	var rec decision.Record
	if identityKey != "" {
		// The duplicate-fingerprint check inside evaluate and the eventual
		// commit below must be serialized per identity (spec.md §5): two
		// concurrent submissions for the same identity must not both observe
		// a clean duplicate check before either commits. Holding the lock
		// across both closes that window.
		err := p.store.WithIdentityLock(ctx, identityKey, func(ctx context.Context) error {
			var err error
			rec, _, _, err = p.evaluate(ctx, doc, text, asOf, decidedAt)
			if err != nil {
				return err
			}
			return p.store.Commit(ctx, documentID, identityKey, fingerprint, rec)
		})
		if err != nil {
			return Result{}, fmt.Errorf("pipeline: evaluating and committing decision: %w", err)
		}
	} else {
		var err error
		rec, _, _, err = p.evaluate(ctx, doc, text, asOf, decidedAt)
		if err != nil {
			return Result{}, err
		}
	}

	signed, err := p.receipts.Issue(documentID, identityKey, rec.Decision, rec.MLAnalysis.FraudRiskScore, decidedAt)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: issuing receipt: %w", err)
	}

	return Result{Record: rec, Receipt: signed}, nil
}

// RunDryRun runs the same path as Run but never calls H.Commit, returning
// the DecisionRecord that would result. Used for replay/backfill tooling
// and tests.
func (p *Pipeline) RunDryRun(ctx context.Context, doc document.Document, text document.RawText, asOf time.Time, decidedAt time.Time) (decision.Record, error) {
	rec, _, _, err := p.evaluate(ctx, doc, text, asOf, decidedAt)
	return rec, err
}

func (p *Pipeline) evaluate(ctx context.Context, doc document.Document, text document.RawText, asOf time.Time, decidedAt time.Time) (decision.Record, string, string, error) {
	asOfDate := toDate(asOf)

	vec, err := features.Extract(doc, text, asOfDate)
	if err != nil {
		return decision.Record{}, "", "", fmt.Errorf("pipeline: extracting features: %w", err)
	}

	ml, err := p.scorer.Score(doc, vec, asOfDate)
	if err != nil {
		return decision.Record{}, "", "", fmt.Errorf("pipeline: scoring: %w", err)
	}

	identityKey, _ := doc.IdentityKey()
	fingerprint, _ := doc.Fingerprint()

	var summary customer.Summary
	var hasFingerprint bool
	if identityKey != "" {
		summary, err = p.store.Lookup(ctx, identityKey)
		if err != nil {
			return decision.Record{}, "", "", fmt.Errorf("pipeline: looking up identity: %w", err)
		}
		if fingerprint != "" {
			hasFingerprint, err = p.store.HasFingerprint(ctx, identityKey, fingerprint)
			if err != nil {
				return decision.Record{}, "", "", fmt.Errorf("pipeline: checking fingerprint: %w", err)
			}
		}
	}

	class := matrix.ClassOf(summary)

	pgVerdict := p.gate.Evaluate(doc, ml, summary, hasFingerprint, asOfDate)

	var ldVerdict *llm.Verdict
	if pgVerdict == nil {
		v := p.synthesizer.Synthesize(ctx, doc, ml, class, summary)
		ldVerdict = &v
	}

	rec := p.assembler.Assemble(ml, class, summary, pgVerdict, ldVerdict, decidedAt)
	return rec, identityKey, fingerprint, nil
}

func toDate(t time.Time) document.Date {
	return document.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
