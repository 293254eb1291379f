package scoring

import (
	"testing"

	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/features"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
)

var allKinds = []document.Kind{
	document.KindBankStatement, document.KindCheck, document.KindPaystub, document.KindMoneyOrder,
}

func TestMockScorerScoresAllKinds(t *testing.T) {
	s := NewMockScorer(allKinds)
	asOf := document.Date{Year: 2026, Month: 6, Day: 1}

	docs := map[document.Kind]document.Document{
		document.KindBankStatement: {Kind: document.KindBankStatement, BankStatement: &document.BankStatement{}},
		document.KindCheck:         {Kind: document.KindCheck, Check: &document.Check{}},
		document.KindPaystub:       {Kind: document.KindPaystub, Paystub: &document.Paystub{}},
		document.KindMoneyOrder:    {Kind: document.KindMoneyOrder, MoneyOrder: &document.MoneyOrder{}},
	}

	for kind, doc := range docs {
		vec, err := features.Extract(doc, "", asOf)
		if err != nil {
			t.Fatalf("%s: Extract() error = %v", kind, err)
		}
		ml, err := s.Score(doc, vec, asOf)
		if err != nil {
			t.Fatalf("%s: Score() error = %v", kind, err)
		}
		if ml.Score < 0 || ml.Score > 1 {
			t.Errorf("%s: Score = %v, want in [0,1]", kind, ml.Score)
		}
		if ml.Confidence < 0 || ml.Confidence > 1 {
			t.Errorf("%s: Confidence = %v, want in [0,1]", kind, ml.Confidence)
		}
	}
}

func TestScoreUnknownKindErrors(t *testing.T) {
	s := NewMockScorer([]document.Kind{document.KindCheck})
	doc := document.Document{Kind: document.KindBankStatement, BankStatement: &document.BankStatement{}}
	vec, _ := features.Extract(doc, "", document.Date{})
	if _, err := s.Score(doc, vec, document.Date{}); err == nil {
		t.Fatal("expected error scoring a kind with no loaded artifact")
	}
}

func TestRiskLevelThresholds(t *testing.T) {
	s := NewMockScorer(allKinds)
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, "LOW"}, {0.29, "LOW"}, {0.30, "MEDIUM"}, {0.59, "MEDIUM"},
		{0.60, "HIGH"}, {0.84, "HIGH"}, {0.85, "CRITICAL"}, {1.0, "CRITICAL"},
	}
	for _, c := range cases {
		if got := string(s.riskLevel(c.score)); got != c.want {
			t.Errorf("riskLevel(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestRiskLevelHonorsCustomThresholds(t *testing.T) {
	s := NewMockScorer(allKinds)
	s.thresholds = matrix.Thresholds{Approve: 0.10, EscalateMaxClean: 0.50}
	if got := s.riskLevel(0.10); got != analysis.RiskMedium {
		t.Errorf("riskLevel(0.10) = %v, want MEDIUM at custom approve boundary", got)
	}
	if got := s.riskLevel(0.50); got != analysis.RiskCritical {
		t.Errorf("riskLevel(0.50) = %v, want CRITICAL at custom escalate-max boundary", got)
	}
}

func TestApplyHVRFutureDatedRaisesScoreAndLabels(t *testing.T) {
	base := 0.1
	score, labels := applyHVR(base, hvrSignals{FutureDated: true, BalanceConsistency: 1.0})
	if score <= base {
		t.Errorf("expected future-dated HVR to raise score above base %v, got %v", base, score)
	}
	if len(labels) != 1 || labels[0] != "Future-dated instrument" {
		t.Errorf("labels = %v, want [Future-dated instrument]", labels)
	}
}

func TestApplyHVRUnsupportedIssuerFloorsScore(t *testing.T) {
	score, labels := applyHVR(0.1, hvrSignals{UnsupportedIssuer: true, BalanceConsistency: 1.0})
	if score != 0.50 {
		t.Errorf("score = %v, want 0.50 floor", score)
	}
	if len(labels) != 1 || labels[0] != "Unsupported issuer" {
		t.Errorf("labels = %v, want [Unsupported issuer]", labels)
	}
}

func TestApplyHVRUnsupportedIssuerDoesNotLowerHigherScore(t *testing.T) {
	score, _ := applyHVR(0.7, hvrSignals{UnsupportedIssuer: true, BalanceConsistency: 1.0})
	if score != 0.7 {
		t.Errorf("score = %v, want unchanged 0.7 since already above the floor", score)
	}
}

func TestApplyHVRClampsToUnitInterval(t *testing.T) {
	score, _ := applyHVR(0.9, hvrSignals{
		FutureDated: true, NegativeEndingBalance: true, BalanceConsistency: 0.0, CriticalMissingCount: 10,
	})
	if score != 1.0 {
		t.Errorf("score = %v, want clamped to 1.0", score)
	}
}

func TestApplyHVRLabelOrderIsCanonical(t *testing.T) {
	_, labels := applyHVR(0.1, hvrSignals{
		UnsupportedIssuer: true, FutureDated: true, NegativeEndingBalance: true,
		BalanceConsistency: 0.0, CriticalMissingCount: 4, MissingSignature: true,
	})
	want := []string{
		"Unsupported issuer", "Future-dated instrument", "Negative ending balance",
		"Balance inconsistency detected", "Critical identity fields missing", "Missing signature",
	}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestScalerTransformDimensionMismatch(t *testing.T) {
	s := scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
	if _, err := s.transform(features.Vector{1, 2, 3}); err == nil {
		t.Fatal("expected dimension-mismatch error")
	}
}

func TestScalerTransformZeroScaleTreatedAsOne(t *testing.T) {
	s := scaler{Mean: []float64{0}, Scale: []float64{0}}
	out, err := s.transform(features.Vector{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 5 {
		t.Errorf("transform with zero scale = %v, want 5 (scale treated as 1)", out[0])
	}
}

func TestRegressorPredictDimensionMismatch(t *testing.T) {
	r := regressor{Weights: []float64{1, 2}, Bias: 0}
	if _, err := r.predict([]float64{1}); err == nil {
		t.Fatal("expected dimension-mismatch error")
	}
}
