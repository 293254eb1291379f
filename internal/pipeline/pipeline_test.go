package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/enterprise/fraud-pipeline/internal/decision"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/history"
	"github.com/enterprise/fraud-pipeline/internal/llm"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/policy"
	"github.com/enterprise/fraud-pipeline/internal/receipt"
	"github.com/enterprise/fraud-pipeline/internal/scoring"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// newTestPipeline builds a Pipeline whose history.Store is never dereferenced:
// every test document here carries no identity key, so evaluate() never
// calls Store.Lookup/HasFingerprint and Run never calls Store.Commit,
// letting these tests run with no live Postgres/Redis.
func newTestPipeline() *Pipeline {
	kinds := []document.Kind{document.KindBankStatement, document.KindCheck, document.KindPaystub, document.KindMoneyOrder}
	scorer := scoring.NewMockScorer(kinds)
	gate := policy.NewGate()
	synthesizer := llm.NewSynthesizer(llm.Config{})
	assembler := decision.NewAssembler(matrix.DefaultThresholds)
	store := history.NewStore(nil, nil, nil)
	receipts := receipt.NewIssuer("test-secret", time.Hour)
	return New(scorer, gate, synthesizer, assembler, store, receipts)
}

func noIdentityCheck() document.Document {
	return document.Document{Kind: document.KindCheck, Check: &document.Check{
		BankName: document.Str("Chase"),
	}}
}

func TestRunDryRunShortCircuitsOnMissingIdentity(t *testing.T) {
	p := newTestPipeline()
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	rec, err := p.RunDryRun(context.Background(), noIdentityCheck(), "", asOf, asOf)
	if err != nil {
		t.Fatalf("RunDryRun() error = %v", err)
	}
	if rec.Decision != verdict.Escalate {
		t.Errorf("Decision = %v, want ESCALATE (PG rule 1: no identity)", rec.Decision)
	}
	if rec.Source != verdict.SourcePolicy {
		t.Errorf("Source = %v, want POLICY", rec.Source)
	}
}

func TestRunIssuesReceiptWithoutCommittingWhenIdentityAbsent(t *testing.T) {
	p := newTestPipeline()
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// decidedAt is the wall clock: it is the receipt's issue time, and
	// Verify checks the receipt's expiry against the current time.
	result, err := p.Run(context.Background(), "doc-1", noIdentityCheck(), "", asOf, time.Now())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Receipt == "" {
		t.Fatal("expected a signed receipt to be issued")
	}
	if result.Record.Decision != verdict.Escalate {
		t.Errorf("Decision = %v, want ESCALATE", result.Record.Decision)
	}

	claims, err := p.receipts.Verify(result.Receipt)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.DocumentID != "doc-1" {
		t.Errorf("DocumentID = %q, want doc-1", claims.DocumentID)
	}
	if claims.IdentityKey != "" {
		t.Errorf("IdentityKey = %q, want empty for an identity-less document", claims.IdentityKey)
	}
}

func TestRunDryRunMandatoryRejectSkipsLLM(t *testing.T) {
	p := newTestPipeline()
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	doc := document.Document{Kind: document.KindCheck, Check: &document.Check{
		BankName:      document.Str("Chase"),
		PayerName:     document.Str("Jane Doe"),
		PayeeName:     document.Str("John Smith"),
		CheckNumber:   document.Str("1001"),
		RoutingNumber: document.Str("999999999"), // invalid would still be 9 digits; use obviously bad length instead
	}}
	doc.Check.RoutingNumber = document.Str("123") // invalid: not 9 digits

	rec, err := p.RunDryRun(context.Background(), doc, "", asOf, asOf)
	if err != nil {
		t.Fatalf("RunDryRun() error = %v", err)
	}
	if rec.Decision != verdict.Reject {
		t.Errorf("Decision = %v, want REJECT (invalid routing number)", rec.Decision)
	}
	if rec.Source != verdict.SourcePolicy {
		t.Errorf("Source = %v, want POLICY", rec.Source)
	}
}
