package decision

import (
	"testing"
	"time"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/llm"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/policy"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

var decidedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestAssemblePolicyVerdictTakenAsIs(t *testing.T) {
	a := NewAssembler(matrix.DefaultThresholds)
	pg := &policy.Verdict{Decision: verdict.Reject, Reasoning: []string{"duplicate submission"}, Confidence: 1.0, Source: verdict.SourcePolicy}
	rec := a.Assemble(analysis.MLAnalysis{Score: 0.9}, matrix.Fraud, customer.Summary{}, pg, nil, decidedAt)

	if rec.Decision != verdict.Reject {
		t.Errorf("Decision = %v, want REJECT", rec.Decision)
	}
	if rec.Source != verdict.SourcePolicy {
		t.Errorf("Source = %v, want POLICY", rec.Source)
	}
	if rec.ConfidenceScore != 1.0 {
		t.Errorf("ConfidenceScore = %v, want 1.0", rec.ConfidenceScore)
	}
}

func TestAssembleLLMConformingVerdictTakenAsIs(t *testing.T) {
	a := NewAssembler(matrix.DefaultThresholds)
	ld := &llm.Verdict{
		Decision:   verdict.Approve,
		Confidence: 0.8,
		Summary:    "low risk",
		Source:     verdict.SourceLLM,
	}
	// class New, score 0.1 => required APPROVE, matches ld.Decision
	rec := a.Assemble(analysis.MLAnalysis{Score: 0.1}, matrix.New, customer.Summary{}, nil, ld, decidedAt)
	if rec.Decision != verdict.Approve {
		t.Errorf("Decision = %v, want APPROVE", rec.Decision)
	}
	if rec.Source != verdict.SourceLLM {
		t.Errorf("Source = %v, want LLM", rec.Source)
	}
	if rec.Summary != "low risk" {
		t.Errorf("Summary = %q, want %q", rec.Summary, "low risk")
	}
}

func TestAssembleLLMViolatingMatrixFallsBack(t *testing.T) {
	a := NewAssembler(matrix.DefaultThresholds)
	ld := &llm.Verdict{
		Decision:      verdict.Approve, // required is ESCALATE for New @ 0.9
		Source:        verdict.SourceLLM,
		Summary:       "model thinks this is fine",
		Reasoning:     []string{"no anomalies seen by model"},
		KeyIndicators: []string{"clean history"},
	}
	rec := a.Assemble(analysis.MLAnalysis{Score: 0.9}, matrix.New, customer.Summary{}, nil, ld, decidedAt)
	if rec.Decision != verdict.Escalate {
		t.Errorf("Decision = %v, want ESCALATE (matrix-derived)", rec.Decision)
	}
	if rec.Source != verdict.SourceLLMFallback {
		t.Errorf("Source = %v, want LLM_FALLBACK", rec.Source)
	}
	if rec.ConfidenceScore != 1.0 {
		t.Errorf("ConfidenceScore = %v, want 1.0 on fallback", rec.ConfidenceScore)
	}
	if len(rec.Reasoning) != 2 || rec.Reasoning[0] != "no anomalies seen by model" {
		t.Errorf("Reasoning = %v, want model reasoning preserved plus override note", rec.Reasoning)
	}
	if len(rec.KeyIndicators) != 1 || rec.KeyIndicators[0] != "clean history" {
		t.Errorf("KeyIndicators = %v, want model's key indicators preserved", rec.KeyIndicators)
	}
}

func TestAssembleNoVerdictDerivesFromMatrix(t *testing.T) {
	a := NewAssembler(matrix.DefaultThresholds)
	rec := a.Assemble(analysis.MLAnalysis{Score: 0.95}, matrix.Clean, customer.Summary{}, nil, nil, decidedAt)
	if rec.Decision != verdict.Reject {
		t.Errorf("Decision = %v, want REJECT (matrix-derived for Clean @ 0.95)", rec.Decision)
	}
	if rec.Source != verdict.SourceLLMFallback {
		t.Errorf("Source = %v, want LLM_FALLBACK", rec.Source)
	}
}

func TestAssembleCarriesCustomerContextAndDecidedAt(t *testing.T) {
	a := NewAssembler(matrix.DefaultThresholds)
	summary := customer.Summary{FraudCount: 3, EscalateCount: 1}
	rec := a.Assemble(analysis.MLAnalysis{Score: 0.5}, matrix.Repeat, summary, nil, nil, decidedAt)
	if rec.CustomerContext.FraudCountBefore != 3 || rec.CustomerContext.EscalateCountBefore != 1 {
		t.Errorf("CustomerContext = %+v, want FraudCountBefore=3 EscalateCountBefore=1", rec.CustomerContext)
	}
	if rec.CustomerContext.Class != matrix.Repeat {
		t.Errorf("Class = %v, want REPEAT", rec.CustomerContext.Class)
	}
	if !rec.DecidedAt.Equal(decidedAt) {
		t.Errorf("DecidedAt = %v, want %v", rec.DecidedAt, decidedAt)
	}
}
