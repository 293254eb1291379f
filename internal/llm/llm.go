// Package llm implements the LLM Decision Synthesizer (LDS): the component
// that, when PG does not short-circuit, asks a large language model to
// produce a Decision Matrix-conformant verdict plus human-readable
// reasoning, and enforces that conformance itself when the model's answer
// cannot be trusted.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// Verdict is LDS's output: either a genuine model-produced synthesis
// (Source=LLM) or the synthetic fallback produced when the model could not
// be trusted (Source=LLM_FALLBACK).
type Verdict struct {
	Decision                 verdict.Decision
	Confidence                float64
	Summary                   string
	Reasoning                 []string
	KeyIndicators             []string
	ActionableRecommendations []string
	Source                    verdict.Source
}

// Synthesizer is LDS.
type Synthesizer struct {
	client     anthropic.Client
	model      string
	timeout    time.Duration
	thresholds matrix.Thresholds
}

// Config configures Synthesizer construction.
type Config struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	Thresholds matrix.Thresholds
}

func NewSynthesizer(cfg Config) *Synthesizer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5)
	}
	thresholds := cfg.Thresholds
	if thresholds == (matrix.Thresholds{}) {
		thresholds = matrix.DefaultThresholds
	}
	return &Synthesizer{
		client:     anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      model,
		timeout:    timeout,
		thresholds: thresholds,
	}
}

// modelResponse is the required JSON response shape the system prompt
// mandates.
type modelResponse struct {
	Recommendation             string   `json:"recommendation"`
	ConfidenceScore            float64  `json:"confidence_score"`
	Summary                    string   `json:"summary"`
	Reasoning                  []string `json:"reasoning"`
	KeyIndicators              []string `json:"key_indicators"`
	ActionableRecommendations  []string `json:"actionable_recommendations"`
}

// Synthesize calls the model with a system prompt that quotes the Decision
// Matrix verbatim and a user prompt describing the submission, then
// enforces Decision Matrix conformance on the result. A timeout, transport
// error, or malformed JSON downgrades to a synthetic LLM_FALLBACK verdict
// derived purely from the matrix; a recommendation the matrix forbids for
// this class/score yields an LLM_FALLBACK verdict with the matrix decision
// that keeps the model's own text (see overrideVerdict). No call is retried.
func (s *Synthesizer) Synthesize(ctx context.Context, doc document.Document, ml analysis.MLAnalysis, class matrix.Class, summary customer.Summary) Verdict {
	required := matrix.Decide(class, ml.Score, s.thresholds)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(class, s.thresholds)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(doc, ml, class, summary))),
		},
	})
	if err != nil {
		return fallback(required, "LLM unavailable; decision derived from matrix")
	}

	raw := extractText(msg)
	resp, err := parseResponse(raw)
	if err != nil {
		return fallback(required, "LLM unavailable; decision derived from matrix")
	}

	decision := verdict.Decision(strings.ToUpper(strings.TrimSpace(resp.Recommendation)))
	if decision != required {
		return overrideVerdict(required, resp)
	}

	return Verdict{
		Decision:                   decision,
		Confidence:                 clamp01(resp.ConfidenceScore),
		Summary:                    resp.Summary,
		Reasoning:                  resp.Reasoning,
		KeyIndicators:              resp.KeyIndicators,
		ActionableRecommendations:  resp.ActionableRecommendations,
		Source:                     verdict.SourceLLM,
	}
}

func fallback(required verdict.Decision, reason string) Verdict {
	return Verdict{
		Decision:   required,
		Confidence: 1.0,
		Summary:    reason,
		Reasoning:  []string{reason},
		Source:     verdict.SourceLLMFallback,
	}
}

// overrideVerdict builds the LLM_FALLBACK verdict for a model response whose
// recommendation violated the Decision Matrix. Only Decision, Source, and
// Confidence change (to the matrix-required decision, LLM_FALLBACK, and
// 1.0); the model's own summary, reasoning,
// key indicators, and actionable recommendations are preserved verbatim,
// with the override noted as an additional reasoning point rather than a
// replacement for the model's analysis.
func overrideVerdict(required verdict.Decision, resp modelResponse) Verdict {
	const overrideReason = "LLM recommendation violated the decision matrix; decision derived from matrix"
	return Verdict{
		Decision:                   required,
		Confidence:                 1.0,
		Summary:                    resp.Summary,
		Reasoning:                  append(append([]string{}, resp.Reasoning...), overrideReason),
		KeyIndicators:              resp.KeyIndicators,
		ActionableRecommendations:  resp.ActionableRecommendations,
		Source:                     verdict.SourceLLMFallback,
	}
}

func extractText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if text := block.Text; text != "" {
			b.WriteString(text)
		}
	}
	return b.String()
}

// parseResponse extracts the JSON object from the model's reply. The model
// is instructed to reply with JSON only, but a defensive extraction of the
// first {...} span guards against incidental prose wrapping.
func parseResponse(raw string) (modelResponse, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return modelResponse{}, fmt.Errorf("llm: no JSON object in response")
	}
	var resp modelResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return modelResponse{}, fmt.Errorf("llm: parsing response: %w", err)
	}
	if resp.Recommendation == "" {
		return modelResponse{}, fmt.Errorf("llm: response missing recommendation")
	}
	return resp, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
