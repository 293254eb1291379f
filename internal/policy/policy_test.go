package policy

import (
	"testing"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

func validCheck() document.Document {
	return document.Document{Kind: document.KindCheck, Check: &document.Check{
		BankName:      document.Str("Chase"),
		PayerName:     document.Str("Jane Doe"),
		PayeeName:     document.Str("John Smith"),
		CheckNumber:   document.Str("1001"),
		RoutingNumber: document.Str("123456789"),
		CheckDate:     document.DateVal(document.Date{Year: 2026, Month: 1, Day: 1}),
	}}
}

func TestEvaluateNoIdentityEscalates(t *testing.T) {
	g := NewGate()
	doc := document.Document{Kind: document.KindCheck, Check: &document.Check{}}
	v := g.Evaluate(doc, analysis.MLAnalysis{}, customer.Summary{}, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Escalate {
		t.Fatalf("expected ESCALATE for missing identity, got %+v", v)
	}
	if v.Source != verdict.SourcePolicy || v.Confidence != 1.0 {
		t.Errorf("expected policy source and confidence 1.0, got %+v", v)
	}
}

func TestEvaluateDuplicateFingerprintRejects(t *testing.T) {
	g := NewGate()
	v := g.Evaluate(validCheck(), analysis.MLAnalysis{}, customer.Summary{}, true, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Reject {
		t.Fatalf("expected REJECT for duplicate fingerprint, got %+v", v)
	}
}

func TestEvaluateRepeatOffenderRejects(t *testing.T) {
	g := NewGate()
	summary := customer.Summary{Exists: true, EscalateCount: 1}
	v := g.Evaluate(validCheck(), analysis.MLAnalysis{}, summary, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Reject {
		t.Fatalf("expected REJECT for repeat offender, got %+v", v)
	}
}

func TestEvaluateRuleOrderDuplicateBeatsRepeatOffender(t *testing.T) {
	g := NewGate()
	summary := customer.Summary{Exists: true, EscalateCount: 1}
	v := g.Evaluate(validCheck(), analysis.MLAnalysis{}, summary, true, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Reasoning[0] != "duplicate submission" {
		t.Fatalf("expected duplicate-submission reasoning to win over repeat-offender, got %+v", v)
	}
}

func TestEvaluateMandatoryRejectUnsupportedIssuer(t *testing.T) {
	g := NewGate()
	doc := validCheck()
	doc.Check.BankName = document.Str("Some Unlisted Credit Union")
	v := g.Evaluate(doc, analysis.MLAnalysis{}, customer.Summary{}, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Reject || v.Reasoning[0] != "unsupported issuer" {
		t.Fatalf("expected unsupported-issuer reject, got %+v", v)
	}
}

func TestEvaluateMandatoryRejectInvalidRoutingNumber(t *testing.T) {
	g := NewGate()
	doc := validCheck()
	doc.Check.RoutingNumber = document.Str("12345")
	v := g.Evaluate(doc, analysis.MLAnalysis{}, customer.Summary{}, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Reject || v.Reasoning[0] != "invalid routing number" {
		t.Fatalf("expected invalid-routing-number reject, got %+v", v)
	}
}

func TestEvaluateMandatoryRejectFutureDatedCheck(t *testing.T) {
	g := NewGate()
	doc := validCheck()
	doc.Check.CheckDate = document.DateVal(document.Date{Year: 2099, Month: 1, Day: 1})
	v := g.Evaluate(doc, analysis.MLAnalysis{}, customer.Summary{}, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Reject || v.Reasoning[0] != "future-dated instrument" {
		t.Fatalf("expected future-dated reject, got %+v", v)
	}
}

func TestEvaluateNoGateReturnsNil(t *testing.T) {
	g := NewGate()
	v := g.Evaluate(validCheck(), analysis.MLAnalysis{Score: 0.1}, customer.Summary{}, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v != nil {
		t.Fatalf("expected nil verdict (no gate fired) for a clean check, got %+v", v)
	}
}

func TestEvaluateMoneyOrderMissingPayeeRejects(t *testing.T) {
	g := NewGate()
	doc := document.Document{Kind: document.KindMoneyOrder, MoneyOrder: &document.MoneyOrder{
		Issuer:        document.Str("Western Union"),
		PurchaserName: document.Str("Jane Doe"),
	}}
	v := g.Evaluate(doc, analysis.MLAnalysis{}, customer.Summary{}, false, document.Date{Year: 2026, Month: 1, Day: 1})
	if v == nil || v.Decision != verdict.Reject || v.Reasoning[0] != "missing required identity field: payee" {
		t.Fatalf("expected missing-payee reject for money order, got %+v", v)
	}
}
