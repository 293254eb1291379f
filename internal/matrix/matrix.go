// Package matrix implements the Decision Matrix (DM): the
// (customer-class × post-HVR score) → decision table that every decision
// path — LDS and DA — must obey. It is the single source of truth quoted
// verbatim in the LDS system prompt and re-enforced by DA.
package matrix

import (
	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// Class is the customer classification spec.md §4.4 conditions the
// required decision on.
type Class string

const (
	New      Class = "NEW"
	Clean    Class = "CLEAN"
	Fraud    Class = "FRAUD"
	Repeat   Class = "REPEAT"
)

// ClassOf derives the customer class from a Summary, per spec.md §4.4:
//   - New: no record, or counters all zero and no prior decision.
//   - Clean history: fraud_count=0, escalate_count=0, prior decision present.
//   - Fraud history: fraud_count>0, escalate_count=0.
//   - Repeat offender: escalate_count>0.
func ClassOf(s customer.Summary) Class {
	if s.EscalateCount > 0 {
		return Repeat
	}
	if s.FraudCount > 0 {
		return Fraud
	}
	if !s.Exists || s.LastDecision == nil {
		return New
	}
	return Clean
}

// Thresholds overrides the Decision Matrix's score boundaries, per spec.md
// §6.4's RISK_THRESHOLDS configuration surface. Approve is the score below
// which NEW, CLEAN, and FRAUD clear to APPROVE (REPEAT never does);
// EscalateMaxClean is the score above
// which a CLEAN-class submission escalates all the way to REJECT instead of
// ESCALATE.
type Thresholds struct {
	Approve          float64
	EscalateMaxClean float64
}

// DefaultThresholds is the Decision Matrix's {APPROVE: 0.30,
// ESCALATE_MAX_CLEAN: 0.85} boundary from spec.md §4.4, used when no
// RISK_THRESHOLDS override is configured.
var DefaultThresholds = Thresholds{Approve: 0.30, EscalateMaxClean: 0.85}

// Decide implements the Decision Matrix table from spec.md §4.4 exactly.
// Repeat offenders are always REJECT under the DM, though in practice PG
// short-circuits that case before LDS or DA consults DM at all.
func Decide(class Class, score float64, th Thresholds) verdict.Decision {
	switch class {
	case New:
		if score < th.Approve {
			return verdict.Approve
		}
		return verdict.Escalate
	case Clean:
		switch {
		case score < th.Approve:
			return verdict.Approve
		case score <= th.EscalateMaxClean:
			return verdict.Escalate
		default:
			return verdict.Reject
		}
	case Fraud:
		if score < th.Approve {
			return verdict.Approve
		}
		return verdict.Reject
	case Repeat:
		return verdict.Reject
	}
	return verdict.Escalate
}
