// Package decision implements the Decision Assembler (DA): picks the
// winning verdict (PG if present, else LDS), re-enforces the Decision
// Matrix, and assembles the final DecisionRecord.
package decision

import (
	"time"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/llm"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
	"github.com/enterprise/fraud-pipeline/internal/policy"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// MLAnalysisReport is the ml_analysis block of a DecisionRecord, per
// spec.md §6.2.
type MLAnalysisReport struct {
	FraudRiskScore  float64
	RiskLevel       analysis.RiskLevel
	ModelConfidence float64
	ModelScores     map[string]float64
	Anomalies       []string
}

// CustomerContext is the customer_context block of a DecisionRecord.
type CustomerContext struct {
	FraudCountBefore    int
	EscalateCountBefore int
	Class               matrix.Class
}

// Record is DecisionRecord, per spec.md §6.2.
type Record struct {
	MLAnalysis                MLAnalysisReport
	Decision                  verdict.Decision
	ConfidenceScore           float64
	Source                    verdict.Source
	Summary                   string
	Reasoning                 []string
	KeyIndicators             []string
	ActionableRecommendations []string
	CustomerContext           CustomerContext
	DecidedAt                 time.Time
}

// Assembler is DA.
type Assembler struct {
	thresholds matrix.Thresholds
}

// NewAssembler builds an Assembler that re-enforces the Decision Matrix
// using the given thresholds. Pass matrix.DefaultThresholds when no
// RISK_THRESHOLDS override is configured.
func NewAssembler(thresholds matrix.Thresholds) *Assembler {
	return &Assembler{thresholds: thresholds}
}

// Assemble implements spec.md §4.4's DA responsibility: pick the verdict
// (PG if present, else LDS), re-validate against DM, assemble the
// DecisionRecord. decidedAt is threaded in rather than read from the wall
// clock, keeping assembly itself deterministic and testable.
func (a *Assembler) Assemble(
	ml analysis.MLAnalysis,
	class matrix.Class,
	summary customer.Summary,
	pg *policy.Verdict,
	ld *llm.Verdict,
	decidedAt time.Time,
) Record {
	var (
		finalDecision verdict.Decision
		confidence    float64
		source        verdict.Source
		summaryText   string
		reasoning     []string
		keyIndicators []string
		actionable    []string
	)

	required := matrix.Decide(class, ml.Score, a.thresholds)

	switch {
	case pg != nil:
		// PG cases are either not covered by DM (identity absent ⇒
		// ESCALATE) or subsume it (REJECT is always permitted); DM
		// disagreement on a PG verdict cannot occur by construction, so PG's
		// decision is taken as-is.
		finalDecision = pg.Decision
		confidence = pg.Confidence
		source = pg.Source
		reasoning = pg.Reasoning
		summaryText = "Policy gate short-circuited this submission."
	case ld != nil:
		if ld.Decision != required {
			// LDS is expected to have already applied this same override
			// internally, so this branch is defense-in-depth; preserve the
			// model's reasoning and indicators exactly as LDS's own override
			// does rather than discarding them.
			finalDecision = required
			source = verdict.SourceLLMFallback
			confidence = 1.0
			summaryText = ld.Summary
			reasoning = append(append([]string{}, ld.Reasoning...), "LLM recommendation violated the decision matrix; decision derived from matrix")
			keyIndicators = ld.KeyIndicators
			actionable = ld.ActionableRecommendations
		} else {
			finalDecision = ld.Decision
			confidence = ld.Confidence
			source = ld.Source
			summaryText = ld.Summary
			reasoning = ld.Reasoning
			keyIndicators = ld.KeyIndicators
			actionable = ld.ActionableRecommendations
		}
	default:
		// No verdict was produced at all: derive directly from the matrix.
		finalDecision = required
		confidence = 1.0
		source = verdict.SourceLLMFallback
		reasoning = []string{"no verdict produced; decision derived from matrix"}
		summaryText = reasoning[0]
	}

	return Record{
		MLAnalysis: MLAnalysisReport{
			FraudRiskScore:  ml.Score,
			RiskLevel:       ml.RiskLevel,
			ModelConfidence: ml.Confidence,
			ModelScores:     ml.PerModelScores,
			Anomalies:       ml.Anomalies,
		},
		Decision:                  finalDecision,
		ConfidenceScore:           confidence,
		Source:                    source,
		Summary:                   summaryText,
		Reasoning:                 reasoning,
		KeyIndicators:             keyIndicators,
		ActionableRecommendations: actionable,
		CustomerContext: CustomerContext{
			FraudCountBefore:    summary.FraudCount,
			EscalateCountBefore: summary.EscalateCount,
			Class:               class,
		},
		DecidedAt: decidedAt,
	}
}
