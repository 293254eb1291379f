package scoring

import "github.com/enterprise/fraud-pipeline/internal/document"

// ModelArtifactMissing is raised at Scorer construction when a required
// artifact (scaler or either regressor) is absent. It is fatal to the
// process; there is no silent heuristic substitution in the production
// construction path.
type ModelArtifactMissing struct {
	Kind     document.Kind
	Artifact string
	Cause    error
}

func (e *ModelArtifactMissing) Error() string {
	msg := "scoring: model artifact missing for " + string(e.Kind) + ": " + e.Artifact
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ModelArtifactMissing) Unwrap() error { return e.Cause }

// ScoringError is a runtime inference failure (e.g. a scaler dimension
// mismatch). It is fatal per-request; it must never be papered over with a
// default score.
type ScoringError struct {
	Kind   document.Kind
	Reason string
}

func (e *ScoringError) Error() string {
	return "scoring: failed to score " + string(e.Kind) + ": " + e.Reason
}
