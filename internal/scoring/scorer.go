// Package scoring implements the Fraud Scorer (FS): maps a FeatureVector
// (plus the originating Document, for Hard Validation Rules) to an
// MLAnalysis via a scaler, two regressors, and a fixed ensemble, then
// applies the Hard Validation Rules.
package scoring

import (
	"github.com/enterprise/fraud-pipeline/internal/analysis"
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/features"
	"github.com/enterprise/fraud-pipeline/internal/matrix"
)

// Scorer is FS. It exclusively owns the loaded model artifacts; hot-reload
// is out of scope.
type Scorer struct {
	artifacts  map[document.Kind]*artifact
	mock       bool
	thresholds matrix.Thresholds
}

// NewScorer constructs a production Scorer, loading artifacts for each
// enabled kind from modelDir. A missing or malformed artifact is a fatal
// construction error (ModelArtifactMissing); there is no silent heuristic
// fallback on this path. thresholds drives the LOW/HIGH risk-level
// boundaries; pass matrix.DefaultThresholds absent a RISK_THRESHOLDS
// override.
func NewScorer(modelDir string, kinds []document.Kind, thresholds matrix.Thresholds) (*Scorer, error) {
	artifacts := make(map[document.Kind]*artifact, len(kinds))
	for _, k := range kinds {
		a, err := loadArtifact(modelDir, k)
		if err != nil {
			return nil, err
		}
		artifacts[k] = a
	}
	return &Scorer{artifacts: artifacts, thresholds: thresholds}, nil
}

// NewMockScorer constructs a Scorer in explicit mock mode: deterministic,
// file-free artifacts for the given kinds. Per spec.md §9's design note,
// this constructor must never be reachable from the production path; it
// exists for tests and environments without trained artifacts.
func NewMockScorer(kinds []document.Kind) *Scorer {
	artifacts := make(map[document.Kind]*artifact, len(kinds))
	for _, k := range kinds {
		artifacts[k] = mockArtifact(k)
	}
	return &Scorer{artifacts: artifacts, mock: true, thresholds: matrix.DefaultThresholds}
}

// featurePredicates are the declared per-feature anomaly predicates beyond
// the HVR triggers themselves (spec.md §4.2 step 7: "a declared list of
// per-feature predicates"). Predicates reference features by schema name
// and are silently skipped for kinds whose schema does not declare that
// name, so the same declared list applies uniformly across kinds.
var featurePredicates = []struct {
	feature string
	label   string
	trigger func(v float64) bool
}{
	{"text_quality", "Low OCR text quality", func(v float64) bool { return v < 0.5 }},
	{"round_amount_flag", "Round-number amount pattern", func(v float64) bool { return v == 1.0 }},
	{"duplicate_transaction_count", "Duplicate transactions detected", func(v float64) bool { return v > 0 }},
}

// Score implements FS's public operation: score(document, features) →
// MLAnalysis.
func (s *Scorer) Score(doc document.Document, vec features.Vector, asOf document.Date) (analysis.MLAnalysis, error) {
	a, ok := s.artifacts[doc.Kind]
	if !ok {
		return analysis.MLAnalysis{}, &ModelArtifactMissing{Kind: doc.Kind, Artifact: "(not loaded)"}
	}

	scaled, err := a.Scaler.transform(vec)
	if err != nil {
		return analysis.MLAnalysis{}, &ScoringError{Kind: doc.Kind, Reason: err.Error()}
	}

	rfRaw, err := a.RandomForest.predict(scaled)
	if err != nil {
		return analysis.MLAnalysis{}, &ScoringError{Kind: doc.Kind, Reason: err.Error()}
	}
	xgbRaw, err := a.XGBoost.predict(scaled)
	if err != nil {
		return analysis.MLAnalysis{}, &ScoringError{Kind: doc.Kind, Reason: err.Error()}
	}

	sA := clamp01(rfRaw / 100.0)
	sB := clamp01(xgbRaw / 100.0)

	weights := ensembleWeights[doc.Kind]
	ensemble := weights[0]*sA + weights[1]*sB

	signals := computeHVRSignals(doc, asOf)
	adjusted, triggered := applyHVR(ensemble, signals)

	schema := features.SchemaFor(doc.Kind)
	for _, p := range featurePredicates {
		val, ok := schema.Lookup(vec, p.feature)
		if !ok {
			continue
		}
		if p.trigger(val) {
			triggered = append(triggered, p.label)
		}
	}

	fieldQuality := 0.5
	if v, ok := schema.Lookup(vec, "field_quality"); ok {
		fieldQuality = v
	}
	agreement := 1.0 - clamp01(absFloat(sA-sB))
	confidence := clamp01(0.5*agreement + 0.5*fieldQuality)

	return analysis.MLAnalysis{
		Score:      adjusted,
		RiskLevel:  s.riskLevel(adjusted),
		Confidence: confidence,
		PerModelScores: map[string]float64{
			"random_forest": sA,
			"xgboost":       sB,
			"ensemble":      ensemble,
			"adjusted":      adjusted,
		},
		FeatureImportance: featureImportance(schema, a),
		Anomalies:         triggered,
	}, nil
}

// riskLevel implements spec.md §4.2 step 5's threshold ladder. The LOW/HIGH
// boundaries follow s.thresholds (spec.md §6.4's RISK_THRESHOLDS override);
// the MEDIUM/HIGH midpoint is not part of that override surface and stays
// fixed at 0.60. A score at or above EscalateMaxClean is CRITICAL even when
// that bound is set below 0.60.
func (s *Scorer) riskLevel(score float64) analysis.RiskLevel {
	switch {
	case score < s.thresholds.Approve:
		return analysis.RiskLow
	case score >= s.thresholds.EscalateMaxClean:
		return analysis.RiskCritical
	case score < 0.60:
		return analysis.RiskMedium
	default:
		return analysis.RiskHigh
	}
}

// featureImportance reports each feature's combined absolute weight across
// both regressors, a coarse but documented contribution measure.
func featureImportance(schema features.Schema, a *artifact) map[string]float64 {
	out := make(map[string]float64, len(schema.Names))
	for i, name := range schema.Names {
		w := 0.0
		if i < len(a.RandomForest.Weights) {
			w += absFloat(a.RandomForest.Weights[i])
		}
		if i < len(a.XGBoost.Weights) {
			w += absFloat(a.XGBoost.Weights[i])
		}
		out[name] = w
	}
	return out
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

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
