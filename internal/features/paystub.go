package features

import "github.com/enterprise/fraud-pipeline/internal/document"

const paystubAmountCap = 50000.0

func extractPaystub(p *document.Paystub, text document.RawText) (Vector, error) {
	if p == nil {
		return nil, &ContractError{Kind: document.KindPaystub, Reason: "nil variant"}
	}

	v := make(Vector, 0, FEATURE_COUNT[document.KindPaystub])

	// presence (6)
	v = append(v,
		presence(p.EmployerName.Present),
		presence(p.EmployeeName.Present),
		presence(p.PayPeriodStart.Present),
		presence(p.PayPeriodEnd.Present),
		presence(p.GrossPay.Present),
		presence(p.NetPay.Present),
	)

	// validity (2)
	periodValid := 0.0
	if p.PayPeriodStart.Present && p.PayPeriodEnd.Present && !p.PayPeriodEnd.Value.Before(p.PayPeriodStart.Value) {
		periodValid = 1.0
	}
	netLeGross := 0.0
	if p.GrossPay.Present && p.NetPay.Present && p.NetPay.Value.Value <= p.GrossPay.Value.Value {
		netLeGross = 1.0
	}
	v = append(v, periodValid, netLeGross)

	// magnitudes (4)
	v = append(v,
		clamp(p.GrossPay.Value.Value, 0, paystubAmountCap),
		clamp(p.NetPay.Value.Value, 0, paystubAmountCap),
		clamp(p.YTDGross.Value.Value, 0, paystubAmountCap*52),
		clamp(p.YTDNet.Value.Value, 0, paystubAmountCap*52),
	)

	// consistency (3)
	netGrossRatioConsistency := 0.5
	if p.GrossPay.Present && p.NetPay.Present && p.GrossPay.Value.Value > 0 {
		ratio := p.NetPay.Value.Value / p.GrossPay.Value.Value
		if ratio >= 0.5 && ratio <= 1.0 {
			netGrossRatioConsistency = 1.0
		} else {
			netGrossRatioConsistency = 0.0
		}
	}
	ytdConsistency := 0.5
	if p.YTDGross.Present && p.GrossPay.Present {
		if p.YTDGross.Value.Value >= p.GrossPay.Value.Value {
			ytdConsistency = 1.0
		} else {
			ytdConsistency = 0.0
		}
	}
	taxConsistency := 1.0
	if p.GrossPay.Present {
		totalTax := p.FederalTax.Value.Value + p.StateTax.Value.Value + p.SocialSecurity.Value.Value + p.Medicare.Value.Value
		if totalTax > p.GrossPay.Value.Value {
			taxConsistency = 0.0
		}
	}
	v = append(v, netGrossRatioConsistency, ytdConsistency, taxConsistency)

	// pattern (2)
	roundPayFlag := boolFeature(true, p.GrossPay.Present && isRoundAmount(p.GrossPay.Value.Value))
	ytdPeriodEstimate := 0.0
	if p.YTDGross.Present && p.GrossPay.Present && p.GrossPay.Value.Value > 0 {
		ytdPeriodEstimate = clamp(p.YTDGross.Value.Value/p.GrossPay.Value.Value, 0, 53)
	}
	v = append(v, roundPayFlag, ytdPeriodEstimate)

	// quality (3)
	v = append(v,
		textQuality(text),
		fieldQuality(p.EmployerName.Present, p.EmployeeName.Present, p.PayPeriodStart.Present,
			p.PayPeriodEnd.Present, p.GrossPay.Present, p.NetPay.Present),
		nameQuality(p.EmployerName.Present, p.EmployerName.Value),
	)

	// derived (2)
	deductionRatio := 0.0
	if p.GrossPay.Present && p.NetPay.Present && p.GrossPay.Value.Value > 0 {
		deductionRatio = clamp((p.GrossPay.Value.Value-p.NetPay.Value.Value)/p.GrossPay.Value.Value, 0, 1)
	}
	ytdNetGrossRatio := 0.0
	if p.YTDGross.Present && p.YTDNet.Present && p.YTDGross.Value.Value > 0 {
		ytdNetGrossRatio = clamp(p.YTDNet.Value.Value/p.YTDGross.Value.Value, 0, 1)
	}
	v = append(v, deductionRatio, ytdNetGrossRatio)

	return finalize(v, document.KindPaystub)
}
