// Package features implements the Feature Extractor (FE): per-document-kind,
// deterministic projection of a normalized document plus raw OCR text into a
// fixed-width numeric vector. Extraction is pure; it performs no I/O and
// never produces NaN/Inf.
package features

import (
	"strings"
	"unicode"

	"github.com/enterprise/fraud-pipeline/internal/document"
)

// Vector is an ordered tuple of real numbers with a statically declared
// length per document kind.
type Vector []float64

// FEATURE_COUNT declares the contract length for each document kind. A
// mismatch between an extractor's output and this table is a programming
// error (ContractError), never a silent truncation.
var FEATURE_COUNT = map[document.Kind]int{
	document.KindBankStatement: 35,
	document.KindCheck:         30,
	document.KindPaystub:       22,
	document.KindMoneyOrder:    20,
}

// ContractError is raised when an extractor would produce a vector that
// violates the declared length or range invariants.
type ContractError struct {
	Kind   document.Kind
	Reason string
}

func (e *ContractError) Error() string {
	return "feature contract violation for " + string(e.Kind) + ": " + e.Reason
}

// clamp bounds v to [lo, hi], also guarding against NaN/Inf inputs: ±Inf
// becomes the nearer bound and NaN becomes lo.
func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func presence(present bool) float64 {
	if present {
		return 1.0
	}
	return 0.0
}

func boolFeature(present, value bool) float64 {
	if !present {
		return 0.0
	}
	if value {
		return 1.0
	}
	return 0.0
}

// textQuality implements spec.md §4.1's text-quality predicate:
// length < 100 ⇒ 0.3; < 500 ⇒ 0.6; otherwise 0.9.
func textQuality(text document.RawText) float64 {
	n := len(strings.TrimSpace(string(text)))
	switch {
	case n < 100:
		return 0.3
	case n < 500:
		return 0.6
	default:
		return 0.9
	}
}

// fieldQuality is the fraction of the given presence flags that are true.
func fieldQuality(present ...bool) float64 {
	if len(present) == 0 {
		return 0.0
	}
	count := 0
	for _, p := range present {
		if p {
			count++
		}
	}
	return float64(count) / float64(len(present))
}

// nameQuality scores how "real" a name looks: non-empty, contains a space
// (first+last), and is composed mostly of letters.
func nameQuality(present bool, name string) float64 {
	if !present || strings.TrimSpace(name) == "" {
		return 0.0
	}
	score := 0.4
	if strings.Contains(strings.TrimSpace(name), " ") {
		score += 0.3
	}
	letters, total := 0, 0
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total > 0 && float64(letters)/float64(total) > 0.8 {
		score += 0.3
	}
	return clamp(score, 0.0, 1.0)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// routingNumberValid implements spec.md §4.1's validity predicate: exactly
// 9 digits.
func routingNumberValid(present bool, v string) bool {
	return present && isAllDigits(v) && len(v) == 9
}

// accountNumberValid implements spec.md §4.1's validity predicate: 8-17
// digits.
func accountNumberValid(present bool, v string) bool {
	return present && isAllDigits(v) && len(v) >= 8 && len(v) <= 17
}

// isRoundAmount reports whether the magnitude is an exact multiple of 100,
// a common indicator used in the round-amount pattern feature.
func isRoundAmount(v float64) bool {
	if v < 0 {
		v = -v
	}
	cents := int64(v*100 + 0.5)
	return cents%10000 == 0
}

var supportedIssuers = map[string]bool{
	"chase":               true,
	"bank of america":     true,
	"wells fargo":         true,
	"citibank":            true,
	"us bank":             true,
	"pnc bank":            true,
	"capital one":         true,
	"td bank":             true,
	"truist":              true,
	"western union":       true,
	"moneygram":           true,
	"usps":                true,
}

// IssuerSupported reports whether name (case-insensitive) is a member of the
// declared supported-issuer list. Exported so the scorer's HVR step can
// reuse the same membership test spec.md §4.2 requires.
func IssuerSupported(present bool, name string) bool {
	if !present {
		return false
	}
	return supportedIssuers[strings.ToLower(strings.TrimSpace(name))]
}

// normalizeName lowercases and collapses internal whitespace, so names and
// transaction descriptions compare equal regardless of case or spacing.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func schemaIndex(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
