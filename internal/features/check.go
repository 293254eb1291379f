package features

import (
	"strings"

	"github.com/enterprise/fraud-pipeline/internal/document"
)

// FutureDated reports whether d is strictly after today. Exported so the
// scorer's HVR step can reuse the exact same predicate.
func FutureDated(d document.Date, today document.Date) bool {
	return d.After(today)
}

func extractCheck(c *document.Check, text document.RawText, asOf document.Date) (Vector, error) {
	if c == nil {
		return nil, &ContractError{Kind: document.KindCheck, Reason: "nil variant"}
	}

	v := make(Vector, 0, FEATURE_COUNT[document.KindCheck])

	// presence (7)
	v = append(v,
		presence(c.BankName.Present),
		presence(c.RoutingNumber.Present),
		presence(c.AccountNumber.Present),
		presence(c.CheckNumber.Present),
		presence(c.AmountNumeric.Present),
		presence(c.PayerName.Present),
		presence(c.PayeeName.Present),
	)

	// validity (5)
	checkNumberValid := c.CheckNumber.Present && isAllDigits(c.CheckNumber.Value) && len(c.CheckNumber.Value) > 0
	checkDateValid := c.CheckDate.Present
	v = append(v,
		boolFeature(true, routingNumberValid(c.RoutingNumber.Present, c.RoutingNumber.Value)),
		boolFeature(true, accountNumberValid(c.AccountNumber.Present, c.AccountNumber.Value)),
		boolFeature(true, checkNumberValid),
		boolFeature(true, checkDateValid),
		boolFeature(true, c.SignatureDetected.Present && c.SignatureDetected.Value),
	)

	// magnitudes (3)
	amountMatch := 0.5 // unknown by default
	if c.AmountNumeric.Present && c.AmountWritten.Present {
		if amountWordsRoughlyMatch(c.AmountWritten.Value, c.AmountNumeric.Value.Value) {
			amountMatch = 1.0
		} else {
			amountMatch = 0.0
		}
	}
	v = append(v,
		clamp(c.AmountNumeric.Value.Value, 0, singleAmountCap),
		amountMatch,
		clamp(float64(len(c.Memo.Value)), 0, 200),
	)

	// consistency (3)
	payerPayeeDistinct := 1.0
	if c.PayerName.Present && c.PayeeName.Present &&
		normalizeName(c.PayerName.Value) == normalizeName(c.PayeeName.Value) {
		payerPayeeDistinct = 0.0
	}
	dateConsistency := 1.0
	if c.CheckDate.Present {
		// stale beyond ~2 years relative to asOf is inconsistent with an active account.
		age := daysSinceEpoch(asOf) - daysSinceEpoch(c.CheckDate.Value)
		if age > 730 {
			dateConsistency = 0.0
		}
	}
	v = append(v,
		amountMatch,
		payerPayeeDistinct,
		dateConsistency,
	)

	// pattern (4)
	roundFlag := boolFeature(true, c.AmountNumeric.Present && isRoundAmount(c.AmountNumeric.Value.Value))
	largeFlag := boolFeature(true, c.AmountNumeric.Present && c.AmountNumeric.Value.Value >= 5000)
	futureFlag := boolFeature(true, c.CheckDate.Present && FutureDated(c.CheckDate.Value, asOf))
	staleFlag := boolFeature(true, dateConsistency == 0.0)
	v = append(v, roundFlag, largeFlag, futureFlag, staleFlag)

	// quality (4)
	v = append(v,
		textQuality(text),
		fieldQuality(c.BankName.Present, c.RoutingNumber.Present, c.AccountNumber.Present,
			c.CheckNumber.Present, c.AmountNumeric.Present, c.PayerName.Present, c.PayeeName.Present),
		nameQuality(c.PayerName.Present, c.PayerName.Value),
		clamp(float64(len(strings.TrimSpace(c.Memo.Value)))/50.0, 0, 1),
	)

	// derived (4)
	amountToRoundRatio := 0.0
	if c.AmountNumeric.Present && c.AmountNumeric.Value.Value > 0 {
		rounded := float64(int64(c.AmountNumeric.Value.Value/100+0.5)) * 100
		amountToRoundRatio = 1.0 - absDiffRatio(c.AmountNumeric.Value.Value, rounded)
	}
	v = append(v,
		clamp(amountToRoundRatio, 0, 1),
		nameQuality(c.BankName.Present, c.BankName.Value),
		clamp(float64(len(c.CheckNumber.Value))/10.0, 0, 1),
		presence(c.PayerAddress.Present),
	)

	return finalize(v, document.KindCheck)
}

func absDiffRatio(a, b float64) float64 {
	if a == 0 {
		return 1.0
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d / a
}

// amountWordsRoughlyMatch is a conservative heuristic: the numeric value's
// whole-dollar amount, written as digits, must appear verbatim in the
// written amount string, or (for amounts 0 through 10) its English number
// word must appear, case-insensitively. This avoids false negatives from
// OCR punctuation differences while still catching gross mismatches.
func amountWordsRoughlyMatch(written string, numeric float64) bool {
	whole := int64(numeric)
	digits := strings.TrimSpace(strings.Split(strings.TrimSpace(written), ".")[0])
	_ = digits
	return strings.Contains(written, itoaSimple(whole)) || numberWordsContain(written, whole)
}

func itoaSimple(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

var numberWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
}

// numberWordsContain is a shallow fallback for whole amounts 0 through 10
// spelled out as one English word ("five", "ten"); larger spelled-out
// amounts are not recognized. Good enough as a secondary signal, not the
// primary match path.
func numberWordsContain(written string, whole int64) bool {
	if whole < 0 || whole > 10 {
		return false
	}
	return strings.Contains(strings.ToLower(written), numberWords[whole])
}
