// Package customer defines CustomerRecord, exclusively owned and mutated by
// the History Store (H); every other component receives only the read-only
// Summary projection.
package customer

import (
	"time"

	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// Record is the persisted per-identity fraud history. It is created lazily
// on first submission and mutated exactly once per request, by H's Commit,
// after DA has finalized the decision.
type Record struct {
	IdentityKey   string
	FraudCount    int
	EscalateCount int
	LastDecision  *verdict.Decision
	LastSeen      time.Time
	Fingerprints  map[string]bool
}

// Summary is the read-only projection of a Record handed to FE/FS/PG/LDS.
type Summary struct {
	IdentityKey   string
	FraudCount    int
	EscalateCount int
	LastDecision  *verdict.Decision
	LastSeen      time.Time
	Exists        bool // false for a brand-new identity with no stored record
}

// Summarize projects a Record (nil meaning "no record exists") into a
// Summary.
func Summarize(r *Record) Summary {
	if r == nil {
		return Summary{}
	}
	return Summary{
		IdentityKey:   r.IdentityKey,
		FraudCount:    r.FraudCount,
		EscalateCount: r.EscalateCount,
		LastDecision:  r.LastDecision,
		LastSeen:      r.LastSeen,
		Exists:        true,
	}
}
