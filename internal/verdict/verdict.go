// Package verdict defines the trichotomous decision vocabulary shared by
// every component that can produce or consume one: the Policy Gate, the
// LLM Decision Synthesizer, the Decision Matrix, the Decision Assembler,
// and the History Store.
package verdict

// Decision is the trichotomous outcome of the pipeline.
type Decision string

const (
	Approve  Decision = "APPROVE"
	Reject   Decision = "REJECT"
	Escalate Decision = "ESCALATE"
)

// Source identifies which component produced the final decision.
type Source string

const (
	SourcePolicy      Source = "POLICY"
	SourceLLM         Source = "LLM"
	SourceLLMFallback Source = "LLM_FALLBACK"
)
