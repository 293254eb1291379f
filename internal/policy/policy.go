// Package policy implements the Policy Gate (PG): the pre-LLM decision
// short-circuit evaluated in a fixed rule order before the LLM Decision
// Synthesizer is ever invoked.
package policy

import (
	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/features"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// Verdict is PolicyVerdict from spec.md §3.1: present only when PG
// short-circuits; its Confidence is always 1.0 and its Source is always
// POLICY.
type Verdict struct {
	Decision   verdict.Decision
	Reasoning  []string
	Confidence float64
	Source     verdict.Source
}

// Gate is PG.
type Gate struct{}

func NewGate() *Gate { return &Gate{} }

// Evaluate implements spec.md §4.3's four rules, in this exact order
// (first match wins). A nil return means "no gate": the caller must invoke
// LDS next.
func (g *Gate) Evaluate(
	doc document.Document,
	ml analysis.MLAnalysis,
	summary customer.Summary,
	hasFingerprint bool,
	asOf document.Date,
) *Verdict {
	// Rule 1: identity key absent.
	if _, ok := doc.IdentityKey(); !ok {
		return policyVerdict(verdict.Escalate, "first-time / unverifiable identity — manual review required")
	}

	// Rule 2: duplicate submission fingerprint already present in H.
	if hasFingerprint {
		return policyVerdict(verdict.Reject, "duplicate submission")
	}

	// Rule 3: repeat offender.
	if summary.EscalateCount > 0 {
		return policyVerdict(verdict.Reject, "repeat offender")
	}

	// Rule 4: per-kind mandatory rejects, independent of ML score.
	if reason, fires := mandatoryReject(doc, asOf); fires {
		return policyVerdict(verdict.Reject, reason)
	}

	return nil
}

func policyVerdict(d verdict.Decision, reason string) *Verdict {
	return &Verdict{
		Decision:   d,
		Reasoning:  []string{reason},
		Confidence: 1.0,
		Source:     verdict.SourcePolicy,
	}
}

// mandatoryReject implements spec.md §4.3 rule 4: unsupported issuer;
// missing required identity fields; invalid routing number; future-dated
// instrument. Checked in this order per kind.
func mandatoryReject(doc document.Document, asOf document.Date) (string, bool) {
	switch doc.Kind {
	case document.KindBankStatement:
		bs := doc.BankStatement
		if bs.BankName.Present && !features.IssuerSupported(true, bs.BankName.Value) {
			return "unsupported issuer", true
		}
		if bs.StatementPeriodEndDate.Present && features.FutureDated(bs.StatementPeriodEndDate.Value, asOf) {
			return "future-dated instrument", true
		}
	case document.KindCheck:
		c := doc.Check
		if c.BankName.Present && !features.IssuerSupported(true, c.BankName.Value) {
			return "unsupported issuer", true
		}
		if !c.CheckNumber.Present {
			return "missing required identity field: check number", true
		}
		if !c.PayeeName.Present {
			return "missing required identity field: payee", true
		}
		if c.RoutingNumber.Present && !isValidRoutingNumber(c.RoutingNumber.Value) {
			return "invalid routing number", true
		}
		if c.CheckDate.Present && features.FutureDated(c.CheckDate.Value, asOf) {
			return "future-dated instrument", true
		}
	case document.KindPaystub:
		p := doc.Paystub
		if p.PayPeriodEnd.Present && features.FutureDated(p.PayPeriodEnd.Value, asOf) {
			return "future-dated instrument", true
		}
	case document.KindMoneyOrder:
		m := doc.MoneyOrder
		if m.Issuer.Present && !features.IssuerSupported(true, m.Issuer.Value) {
			return "unsupported issuer", true
		}
		if !m.PayeeName.Present {
			return "missing required identity field: payee", true
		}
		if m.PurchaseDate.Present && features.FutureDated(m.PurchaseDate.Value, asOf) {
			return "future-dated instrument", true
		}
	}
	return "", false
}

func isValidRoutingNumber(v string) bool {
	if len(v) != 9 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
