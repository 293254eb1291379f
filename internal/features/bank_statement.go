package features

import (
	"fmt"
	"math"

	"github.com/enterprise/fraud-pipeline/internal/document"
)

const (
	singleAmountCap = 50000.0
	periodTotalCap  = 1000000.0
)

// BalanceConsistency implements spec.md §4.1's balance-consistency
// predicate, including the documented repair behavior: when credits and/or
// debits are absent or zero, they are recomputed from the transaction list
// (sum positive amounts for credits, sum |negative| for debits) before the
// comparison is made. Exported so the scorer's HVR step can recompute the
// same signal from the Document directly.
func BalanceConsistency(bs *document.BankStatement) float64 {
	if bs == nil || !bs.BeginningBalance.Present || !bs.EndingBalance.Present {
		return 0.0
	}
	credits := bs.TotalCredits.Value.Value
	if !bs.TotalCredits.Present || credits == 0 {
		credits = sumPositive(bs.Transactions)
	}
	debits := bs.TotalDebits.Value.Value
	if !bs.TotalDebits.Present || debits == 0 {
		debits = sumNegativeAbs(bs.Transactions)
	}
	expectedEnding := bs.BeginningBalance.Value.Value + credits - debits
	diff := expectedEnding - bs.EndingBalance.Value.Value
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 1.0:
		return 1.0
	case diff <= 10.0:
		return 0.5
	default:
		return 0.0
	}
}

func sumPositive(txns []document.Transaction) float64 {
	var sum float64
	for _, t := range txns {
		if t.Amount.Value > 0 {
			sum += t.Amount.Value
		}
	}
	return sum
}

func sumNegativeAbs(txns []document.Transaction) float64 {
	var sum float64
	for _, t := range txns {
		if t.Amount.Value < 0 {
			sum += -t.Amount.Value
		}
	}
	return sum
}

// IsWeekend-style day-of-week classification without time.Time: Zeller-free
// approximation is unnecessary here since we only need a stable, documented
// ratio feature; we use a simple day-count-mod-7 scheme over days since
// 1970-01-01 (a Thursday), shifted so that 0=Monday, which is deterministic
// and good enough for a pattern feature, not a calendar authority.
func dayOfWeek(d document.Date) int {
	// days since 1970-01-01, via a simple proleptic Gregorian count.
	days := daysSinceEpoch(d)
	return ((days%7)+7+3) % 7 // 0=Monday; 1970-01-01 was a Thursday (3)
}

func daysSinceEpoch(d document.Date) int {
	y, m, day := d.Year, d.Month, d.Day
	// Days from 0000-03-01 using the days_from_civil algorithm (Howard
	// Hinnant's), then offset relative to 1970-01-01.
	if m <= 2 {
		y--
	}
	era := y
	if era < 0 {
		era = era - 399
	}
	era = era / 400
	yoe := y - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	totalDays := era*146097 + doe - 719468 // days since 1970-01-01
	return totalDays
}

// Extract implements the Feature Extractor: a pure, deterministic function
// of its three inputs. asOf is the reference date used by
// future-dated/staleness features; it is supplied explicitly rather than
// read from the wall clock so that extraction has no I/O and is fully
// reproducible given the same arguments.
func Extract(doc document.Document, text document.RawText, asOf document.Date) (Vector, error) {
	switch doc.Kind {
	case document.KindBankStatement:
		return extractBankStatement(doc.BankStatement, text)
	case document.KindCheck:
		return extractCheck(doc.Check, text, asOf)
	case document.KindPaystub:
		return extractPaystub(doc.Paystub, text)
	case document.KindMoneyOrder:
		return extractMoneyOrder(doc.MoneyOrder, text, asOf)
	}
	return nil, &ContractError{Kind: doc.Kind, Reason: "unknown document kind"}
}

func extractBankStatement(bs *document.BankStatement, text document.RawText) (Vector, error) {
	if bs == nil {
		return nil, &ContractError{Kind: document.KindBankStatement, Reason: "nil variant"}
	}

	v := make(Vector, 0, FEATURE_COUNT[document.KindBankStatement])

	// presence
	v = append(v,
		presence(bs.BankName.Present),
		presence(bs.AccountHolderName.Present),
		presence(bs.AccountNumber.Present),
		presence(bs.StatementPeriodStartDate.Present),
		presence(bs.StatementPeriodEndDate.Present),
		presence(bs.BeginningBalance.Present),
		presence(bs.EndingBalance.Present),
		presence(len(bs.Transactions) > 0),
	)

	// validity
	periodOrderingValid := 0.0
	if bs.StatementPeriodStartDate.Present && bs.StatementPeriodEndDate.Present &&
		!bs.StatementPeriodEndDate.Value.Before(bs.StatementPeriodStartDate.Value) {
		periodOrderingValid = 1.0
	}
	currency := bs.Currency
	if currency == "" {
		currency = "USD"
	}
	currencySupported := 0.0
	if currency == "USD" {
		currencySupported = 1.0
	}
	v = append(v,
		boolFeature(true, accountNumberValid(bs.AccountNumber.Present, bs.AccountNumber.Value)),
		periodOrderingValid,
		currencySupported,
		boolFeature(true, IssuerSupported(bs.BankName.Present, bs.BankName.Value)),
	)

	// magnitudes
	avgTxn := 0.0
	if len(bs.Transactions) > 0 {
		var sum float64
		for _, t := range bs.Transactions {
			sum += t.Amount.Value
		}
		avgTxn = sum / float64(len(bs.Transactions))
	}
	v = append(v,
		clamp(bs.BeginningBalance.Value.Value, -periodTotalCap, periodTotalCap),
		clamp(bs.EndingBalance.Value.Value, -periodTotalCap, periodTotalCap),
		clamp(bs.TotalCredits.Value.Value, 0, periodTotalCap),
		clamp(bs.TotalDebits.Value.Value, 0, periodTotalCap),
		clamp(float64(len(bs.Transactions)), 0, 1000),
		clamp(avgTxn, -singleAmountCap, singleAmountCap),
	)

	// consistency
	recomputedCredits := sumPositive(bs.Transactions)
	recomputedDebits := sumNegativeAbs(bs.Transactions)
	creditsConsistency := 1.0
	if bs.TotalCredits.Present && bs.TotalCredits.Value.Value != 0 && len(bs.Transactions) > 0 {
		diff := recomputedCredits - bs.TotalCredits.Value.Value
		if diff < 0 {
			diff = -diff
		}
		if diff > 10 {
			creditsConsistency = 0.0
		} else if diff > 1 {
			creditsConsistency = 0.5
		}
	}
	debitsConsistency := 1.0
	if bs.TotalDebits.Present && bs.TotalDebits.Value.Value != 0 && len(bs.Transactions) > 0 {
		diff := recomputedDebits - bs.TotalDebits.Value.Value
		if diff < 0 {
			diff = -diff
		}
		if diff > 10 {
			debitsConsistency = 0.0
		} else if diff > 1 {
			debitsConsistency = 0.5
		}
	}
	v = append(v,
		BalanceConsistency(bs),
		creditsConsistency,
		debitsConsistency,
	)

	// pattern
	roundCount, largeCount, weekendCount, dupCount := 0, 0, 0, 0
	seen := map[string]bool{}
	for _, t := range bs.Transactions {
		if isRoundAmount(t.Amount.Value) {
			roundCount++
		}
		absAmt := t.Amount.Value
		if absAmt < 0 {
			absAmt = -absAmt
		}
		if absAmt >= 1000 {
			largeCount++
		}
		if dayOfWeek(t.Date) >= 5 {
			weekendCount++
		}
		key := normalizeDescription(t.Description) + "|" + formatAmount(t.Amount.Value) + "|" + formatDate(t.Date)
		if seen[key] {
			dupCount++
		}
		seen[key] = true
	}
	weekendRatio := 0.0
	roundAmountFlag := 0.0
	if len(bs.Transactions) > 0 {
		weekendRatio = float64(weekendCount) / float64(len(bs.Transactions))
		if float64(roundCount)/float64(len(bs.Transactions)) > 0.5 {
			roundAmountFlag = 1.0
		}
	}
	frequency := 0.0
	if bs.StatementPeriodStartDate.Present && bs.StatementPeriodEndDate.Present {
		days := daysSinceEpoch(bs.StatementPeriodEndDate.Value) - daysSinceEpoch(bs.StatementPeriodStartDate.Value) + 1
		if days > 0 {
			frequency = float64(len(bs.Transactions)) / float64(days)
		}
	}
	v = append(v,
		clamp(float64(roundCount), 0, 1000),
		clamp(float64(largeCount), 0, 1000),
		clamp(weekendRatio, 0, 1),
		roundAmountFlag,
		clamp(float64(dupCount), 0, 1000),
		clamp(frequency, 0, 50),
	)

	// quality
	v = append(v,
		textQuality(text),
		fieldQuality(bs.BankName.Present, bs.AccountHolderName.Present, bs.AccountNumber.Present,
			bs.StatementPeriodStartDate.Present, bs.StatementPeriodEndDate.Present,
			bs.BeginningBalance.Present, bs.EndingBalance.Present),
		descriptionQuality(bs.Transactions),
		nameQuality(bs.AccountHolderName.Present, bs.AccountHolderName.Value),
	)

	// derived
	volatility := balanceVolatility(bs.Transactions)
	creditDebitRatio := 0.0
	if recomputedDebits > 0 {
		creditDebitRatio = recomputedCredits / recomputedDebits
	} else if recomputedCredits > 0 {
		creditDebitRatio = 10.0
	}
	netChangeRatio := 0.0
	if bs.BeginningBalance.Present && bs.BeginningBalance.Value.Value != 0 {
		netChangeRatio = (bs.EndingBalance.Value.Value - bs.BeginningBalance.Value.Value) / bs.BeginningBalance.Value.Value
	}
	avgDailyChange := 0.0
	if bs.StatementPeriodStartDate.Present && bs.StatementPeriodEndDate.Present {
		days := daysSinceEpoch(bs.StatementPeriodEndDate.Value) - daysSinceEpoch(bs.StatementPeriodStartDate.Value) + 1
		if days > 0 {
			avgDailyChange = (bs.EndingBalance.Value.Value - bs.BeginningBalance.Value.Value) / float64(days)
		}
	}
	v = append(v,
		clamp(volatility, 0, periodTotalCap),
		clamp(creditDebitRatio, 0, 10),
		clamp(netChangeRatio, -10, 10),
		clamp(avgDailyChange, -singleAmountCap, singleAmountCap),
	)

	return finalize(v, document.KindBankStatement)
}

func finalize(v Vector, kind document.Kind) (Vector, error) {
	want := FEATURE_COUNT[kind]
	if len(v) != want {
		return nil, &ContractError{Kind: kind, Reason: "vector length mismatch"}
	}
	for _, f := range v {
		if f != f { // NaN
			return nil, &ContractError{Kind: kind, Reason: "feature is NaN"}
		}
	}
	return v, nil
}

// descriptionQuality is the fraction of transactions whose description is
// non-trivial (more than a handful of characters).
func descriptionQuality(txns []document.Transaction) float64 {
	if len(txns) == 0 {
		return 0.0
	}
	good := 0
	for _, t := range txns {
		if len(t.Description) >= 4 {
			good++
		}
	}
	return float64(good) / float64(len(txns))
}

// balanceVolatility is the standard deviation of transaction amounts, a
// coarse measure of how erratic activity within the statement is.
func balanceVolatility(txns []document.Transaction) float64 {
	if len(txns) == 0 {
		return 0.0
	}
	var sum float64
	for _, t := range txns {
		sum += t.Amount.Value
	}
	mean := sum / float64(len(txns))
	var variance float64
	for _, t := range txns {
		d := t.Amount.Value - mean
		variance += d * d
	}
	variance /= float64(len(txns))
	return math.Sqrt(variance)
}

func normalizeDescription(s string) string {
	return normalizeName(s)
}

func formatAmount(v float64) string {
	cents := int64(v*100 + 0.5)
	return fmt.Sprintf("%d", cents)
}

func formatDate(d document.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
