package scoring

import (
	"github.com/enterprise/fraud-pipeline/internal/document"
	"github.com/enterprise/fraud-pipeline/internal/features"
)

// hvrSignals is the set of document-level predicates the Hard Validation
// Rules (spec.md §4.2 step 4) are evaluated against. They are computed
// directly from the Document rather than the FeatureVector, since FS's
// public operation takes both as input and HVR is specified over semantic
// document facts, not feature indices.
type hvrSignals struct {
	UnsupportedIssuer     bool
	FutureDated           bool
	NegativeEndingBalance bool
	BalanceConsistency    float64
	CriticalMissingCount  int
	MissingSignature      bool // checks only
}

func computeHVRSignals(doc document.Document, asOf document.Date) hvrSignals {
	switch doc.Kind {
	case document.KindBankStatement:
		bs := doc.BankStatement
		critical := 0
		for _, present := range []bool{
			bs.BankName.Present, bs.AccountHolderName.Present, bs.AccountNumber.Present,
			bs.StatementPeriodStartDate.Present, bs.StatementPeriodEndDate.Present,
			bs.BeginningBalance.Present, bs.EndingBalance.Present,
		} {
			if !present {
				critical++
			}
		}
		return hvrSignals{
			UnsupportedIssuer:     bs.BankName.Present && !features.IssuerSupported(true, bs.BankName.Value),
			FutureDated:           bs.StatementPeriodEndDate.Present && features.FutureDated(bs.StatementPeriodEndDate.Value, asOf),
			NegativeEndingBalance: bs.EndingBalance.Present && bs.EndingBalance.Value.Value < 0,
			BalanceConsistency:    features.BalanceConsistency(bs),
			CriticalMissingCount:  critical,
		}
	case document.KindCheck:
		c := doc.Check
		critical := 0
		for _, present := range []bool{
			c.BankName.Present, c.RoutingNumber.Present, c.AccountNumber.Present,
			c.CheckNumber.Present, c.PayerName.Present, c.PayeeName.Present,
		} {
			if !present {
				critical++
			}
		}
		return hvrSignals{
			UnsupportedIssuer:    c.BankName.Present && !features.IssuerSupported(true, c.BankName.Value),
			FutureDated:          c.CheckDate.Present && features.FutureDated(c.CheckDate.Value, asOf),
			BalanceConsistency:   1.0, // not applicable to checks
			CriticalMissingCount: critical,
			MissingSignature:     !(c.SignatureDetected.Present && c.SignatureDetected.Value),
		}
	case document.KindPaystub:
		p := doc.Paystub
		critical := 0
		for _, present := range []bool{
			p.EmployerName.Present, p.EmployeeName.Present, p.PayPeriodStart.Present,
			p.PayPeriodEnd.Present, p.GrossPay.Present, p.NetPay.Present,
		} {
			if !present {
				critical++
			}
		}
		return hvrSignals{
			FutureDated:          p.PayPeriodEnd.Present && features.FutureDated(p.PayPeriodEnd.Value, asOf),
			BalanceConsistency:   1.0,
			CriticalMissingCount: critical,
		}
	case document.KindMoneyOrder:
		m := doc.MoneyOrder
		critical := 0
		for _, present := range []bool{
			m.Issuer.Present, m.SerialNumber.Present, m.PurchaserName.Present,
			m.PayeeName.Present, m.Amount.Present,
		} {
			if !present {
				critical++
			}
		}
		return hvrSignals{
			UnsupportedIssuer:    m.Issuer.Present && !features.IssuerSupported(true, m.Issuer.Value),
			FutureDated:          m.PurchaseDate.Present && features.FutureDated(m.PurchaseDate.Value, asOf),
			BalanceConsistency:   1.0,
			CriticalMissingCount: critical,
		}
	}
	return hvrSignals{BalanceConsistency: 1.0}
}

// applyHVR implements spec.md §4.2 step 4: monotonic upward corrections,
// applied in a fixed order, then clamped to [0,1]. It returns the corrected
// score and the ordered list of triggered anomaly labels. The evaluation
// order below is the documented canonical order chosen for the Open
// Question in spec.md §9(a): triggered labels always appear in this
// relative order regardless of which rules actually fired, so the anomaly
// list is stable across runs.
func applyHVR(base float64, s hvrSignals) (float64, []string) {
	score := base
	var triggered []string

	if s.UnsupportedIssuer {
		if score < 0.50 {
			score = 0.50
		}
		triggered = append(triggered, "Unsupported issuer")
	}
	if s.FutureDated {
		score += 0.40
		triggered = append(triggered, "Future-dated instrument")
	}
	if s.NegativeEndingBalance {
		score += 0.35
		triggered = append(triggered, "Negative ending balance")
	}
	if s.BalanceConsistency < 0.5 {
		score += 0.40
		triggered = append(triggered, "Balance inconsistency detected")
	}
	if s.CriticalMissingCount >= 4 {
		score += 0.30
		triggered = append(triggered, "Critical identity fields missing")
	}
	if s.MissingSignature {
		score += 0.35
		triggered = append(triggered, "Missing signature")
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, triggered
}
