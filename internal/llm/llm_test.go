package llm

import (
	"strings"
	"testing"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

func TestParseResponseValid(t *testing.T) {
	raw := `{"recommendation":"APPROVE","confidence_score":0.9,"summary":"looks clean","reasoning":["no anomalies"],"key_indicators":["clean history"],"actionable_recommendations":[]}`
	resp, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.Recommendation != "APPROVE" {
		t.Errorf("Recommendation = %q, want APPROVE", resp.Recommendation)
	}
	if resp.ConfidenceScore != 0.9 {
		t.Errorf("ConfidenceScore = %v, want 0.9", resp.ConfidenceScore)
	}
}

func TestParseResponseStripsSurroundingProse(t *testing.T) {
	raw := "Here is my answer:\n" + `{"recommendation":"REJECT","confidence_score":1.0,"summary":"s","reasoning":[]}` + "\nThanks!"
	resp, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.Recommendation != "REJECT" {
		t.Errorf("Recommendation = %q, want REJECT", resp.Recommendation)
	}
}

func TestParseResponseRejectsMissingRecommendation(t *testing.T) {
	raw := `{"confidence_score":0.9,"summary":"s"}`
	if _, err := parseResponse(raw); err == nil {
		t.Fatal("expected error for a response missing recommendation")
	}
}

func TestParseResponseRejectsNonJSON(t *testing.T) {
	if _, err := parseResponse("no json here at all"); err == nil {
		t.Fatal("expected error parsing non-JSON text")
	}
}

func TestParseResponseRejectsMalformedJSON(t *testing.T) {
	if _, err := parseResponse(`{"recommendation": "APPROVE", "confidence_score": }`); err == nil {
		t.Fatal("expected error parsing malformed JSON")
	}
}

func TestFallbackAlwaysFullConfidenceAndFallbackSource(t *testing.T) {
	v := fallback(verdict.Escalate, "some reason")
	if v.Decision != verdict.Escalate {
		t.Errorf("Decision = %v, want ESCALATE", v.Decision)
	}
	if v.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", v.Confidence)
	}
	if v.Source != verdict.SourceLLMFallback {
		t.Errorf("Source = %v, want LLM_FALLBACK", v.Source)
	}
	if len(v.Reasoning) != 1 || v.Reasoning[0] != "some reason" {
		t.Errorf("Reasoning = %v, want [some reason]", v.Reasoning)
	}
}

func TestOverrideVerdictPreservesModelReasoningAndIndicators(t *testing.T) {
	resp := modelResponse{
		Recommendation:             "APPROVE",
		ConfidenceScore:            0.95,
		Summary:                    "transaction pattern looks ordinary",
		Reasoning:                  []string{"no anomalies detected", "consistent with prior statements"},
		KeyIndicators:              []string{"stable balance", "regular deposits"},
		ActionableRecommendations:  []string{"none"},
	}
	v := overrideVerdict(verdict.Escalate, resp)

	if v.Decision != verdict.Escalate {
		t.Errorf("Decision = %v, want ESCALATE (matrix-required)", v.Decision)
	}
	if v.Source != verdict.SourceLLMFallback {
		t.Errorf("Source = %v, want LLM_FALLBACK", v.Source)
	}
	if v.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", v.Confidence)
	}
	if v.Summary != resp.Summary {
		t.Errorf("Summary = %q, want model summary %q preserved", v.Summary, resp.Summary)
	}
	if len(v.KeyIndicators) != 2 || v.KeyIndicators[0] != "stable balance" {
		t.Errorf("KeyIndicators = %v, want model's key indicators preserved verbatim", v.KeyIndicators)
	}
	if len(v.ActionableRecommendations) != 1 || v.ActionableRecommendations[0] != "none" {
		t.Errorf("ActionableRecommendations = %v, want preserved", v.ActionableRecommendations)
	}
	if len(v.Reasoning) != len(resp.Reasoning)+1 {
		t.Fatalf("Reasoning = %v, want model's %d points plus one override note", v.Reasoning, len(resp.Reasoning))
	}
	for i, r := range resp.Reasoning {
		if v.Reasoning[i] != r {
			t.Errorf("Reasoning[%d] = %q, want model reasoning %q preserved in order", i, v.Reasoning[i], r)
		}
	}
	if last := v.Reasoning[len(v.Reasoning)-1]; !strings.Contains(last, "decision matrix") {
		t.Errorf("last Reasoning entry = %q, want it to note the matrix override", last)
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float64 }{{-0.5, 0}, {0.5, 0.5}, {1.5, 1}}
	for _, c := range cases {
		if got := clamp01(c.in); got != c.want {
			t.Errorf("clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSystemPromptEmbedsDecisionMatrix(t *testing.T) {
	p := systemPrompt(matrix.Clean, matrix.DefaultThresholds)
	for _, want := range []string{"APPROVE", "ESCALATE", "REJECT", "0.30", "0.85"} {
		if !strings.Contains(p, want) {
			t.Errorf("systemPrompt() missing expected matrix term %q", want)
		}
	}
}

func TestSystemPromptReflectsCustomThresholds(t *testing.T) {
	p := systemPrompt(matrix.Clean, matrix.Thresholds{Approve: 0.15, EscalateMaxClean: 0.70})
	for _, want := range []string{"0.15", "0.70"} {
		if !strings.Contains(p, want) {
			t.Errorf("systemPrompt() missing overridden threshold %q", want)
		}
	}
}

func TestUserPromptIncludesDocumentAndHistoryContext(t *testing.T) {
	doc := document.Document{Kind: document.KindCheck, Check: &document.Check{PayerName: document.Str("Jane Doe")}}
	ml := analysis.MLAnalysis{Score: 0.42, RiskLevel: analysis.RiskMedium, Confidence: 0.8}
	summary := customer.Summary{Exists: true, FraudCount: 2}
	p := userPrompt(doc, ml, matrix.Fraud, summary)

	for _, want := range []string{"check", "0.42", "MEDIUM", "FRAUD"} {
		if !strings.Contains(p, want) {
			t.Errorf("userPrompt() missing expected term %q in:\n%s", want, p)
		}
	}
}
