package llm

import (
	"fmt"
	"strings"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
)

// systemPrompt embeds the Decision Matrix verbatim, per spec.md §4.4's
// prompt-discipline requirement that LDS never improvise a decision rule
// outside the matrix. The score boundaries reflect th, so an operator's
// RISK_THRESHOLDS override is what the model is actually held to.
func systemPrompt(class matrix.Class, th matrix.Thresholds) string {
	return fmt.Sprintf(`You are the fraud Decision Synthesizer for a document review pipeline. You
are given a normalized document submission, its ML risk analysis, and the
submitting customer's history. Your job is to produce the decision
required by the Decision Matrix below, plus human-readable reasoning.

=== DECISION MATRIX (authoritative, do not deviate) ===
Customer class for this submission: %s

| Class  | score < %.2f | %.2f <= score <= %.2f | score > %.2f |
|--------|--------------|-----------------------|--------------|
| NEW    | APPROVE      | ESCALATE              | ESCALATE     |
| CLEAN  | APPROVE      | ESCALATE              | REJECT       |
| FRAUD  | APPROVE      | REJECT                | REJECT       |
| REPEAT | REJECT       | REJECT                | REJECT       |

=== CRITICAL RULES ===
1. Your "recommendation" field MUST equal the decision the matrix above
   requires for the given class and score. Do not apply your own judgment
   in place of the matrix.
2. Do not invent facts not present in the submission, the ML analysis, or
   the customer history provided to you.
3. "reasoning" and "key_indicators" must reference only the fields given
   to you in the user message.

=== OUTPUT FORMAT ===
Reply with a single JSON object and nothing else:
{
  "recommendation": "APPROVE" | "REJECT" | "ESCALATE",
  "confidence_score": <float 0..1>,
  "summary": "<one paragraph>",
  "reasoning": ["<point>", ...],
  "key_indicators": ["<signal>", ...],
  "actionable_recommendations": ["<next step>", ...]
}`, class, th.Approve, th.Approve, th.EscalateMaxClean, th.EscalateMaxClean)
}

func userPrompt(doc document.Document, ml analysis.MLAnalysis, class matrix.Class, summary customer.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document kind: %s\n", doc.Kind)
	identity, ok := doc.IdentityKey()
	if ok {
		fmt.Fprintf(&b, "Identity: %s\n", identity)
	} else {
		b.WriteString("Identity: (absent)\n")
	}

	fmt.Fprintf(&b, "\nML analysis:\n")
	fmt.Fprintf(&b, "  score: %.4f\n", ml.Score)
	fmt.Fprintf(&b, "  risk_level: %s\n", ml.RiskLevel)
	fmt.Fprintf(&b, "  confidence: %.4f\n", ml.Confidence)
	if len(ml.Anomalies) > 0 {
		fmt.Fprintf(&b, "  anomalies: %s\n", strings.Join(ml.Anomalies, "; "))
	}

	fmt.Fprintf(&b, "\nCustomer history:\n")
	fmt.Fprintf(&b, "  class: %s\n", class)
	fmt.Fprintf(&b, "  exists: %v\n", summary.Exists)
	fmt.Fprintf(&b, "  fraud_count: %d\n", summary.FraudCount)
	fmt.Fprintf(&b, "  escalate_count: %d\n", summary.EscalateCount)
	if summary.LastDecision != nil {
		fmt.Fprintf(&b, "  last_decision: %s\n", *summary.LastDecision)
	} else {
		b.WriteString("  last_decision: (none)\n")
	}

	b.WriteString("\nProduce the required JSON object now.")
	return b.String()
}
