// Package analysis holds the MLAnalysis result type shared by the scorer,
// policy gate, LLM synthesizer, and decision assembler, so that none of
// those packages needs to import the others just to pass this value around.
package analysis

// RiskLevel is a pure function of the post-HVR score, per spec.md §4.2.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// MLAnalysis is the output of the Fraud Scorer (FS).
type MLAnalysis struct {
	Score             float64
	RiskLevel         RiskLevel
	Confidence        float64
	PerModelScores    map[string]float64 // "random_forest", "xgboost", "ensemble", "adjusted"
	FeatureImportance map[string]float64
	Anomalies         []string
}
