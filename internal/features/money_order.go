package features

import "github.com/enterprise/fraud-pipeline/internal/document"

const moneyOrderAmountCap = 1000.0 // typical regulatory cap on a single money order

func extractMoneyOrder(m *document.MoneyOrder, text document.RawText, asOf document.Date) (Vector, error) {
	if m == nil {
		return nil, &ContractError{Kind: document.KindMoneyOrder, Reason: "nil variant"}
	}

	v := make(Vector, 0, FEATURE_COUNT[document.KindMoneyOrder])

	// presence (5)
	v = append(v,
		presence(m.Issuer.Present),
		presence(m.SerialNumber.Present),
		presence(m.PurchaserName.Present),
		presence(m.PayeeName.Present),
		presence(m.Amount.Present),
	)

	// validity (3)
	serialValid := m.SerialNumber.Present && isAllDigits(m.SerialNumber.Value) && len(m.SerialNumber.Value) >= 6
	v = append(v,
		boolFeature(true, serialValid),
		boolFeature(true, m.PurchaseDate.Present),
		boolFeature(true, IssuerSupported(m.Issuer.Present, m.Issuer.Value)),
	)

	// magnitudes (2)
	v = append(v,
		clamp(m.Amount.Value.Value, 0, moneyOrderAmountCap),
		boolFeature(true, m.Amount.Present && m.Amount.Value.Value >= moneyOrderAmountCap),
	)

	// consistency (2)
	purchaserPayeeDistinct := 1.0
	if m.PurchaserName.Present && m.PayeeName.Present &&
		normalizeName(m.PurchaserName.Value) == normalizeName(m.PayeeName.Value) {
		purchaserPayeeDistinct = 0.0
	}
	dateConsistency := 1.0
	if m.PurchaseDate.Present && FutureDated(m.PurchaseDate.Value, asOf) {
		dateConsistency = 0.0
	}
	v = append(v, purchaserPayeeDistinct, dateConsistency)

	// pattern (3)
	v = append(v,
		boolFeature(true, m.Amount.Present && isRoundAmount(m.Amount.Value.Value)),
		boolFeature(true, m.Amount.Present && m.Amount.Value.Value >= moneyOrderAmountCap*0.9),
		boolFeature(true, m.PurchaseDate.Present && FutureDated(m.PurchaseDate.Value, asOf)),
	)

	// quality (3)
	v = append(v,
		textQuality(text),
		fieldQuality(m.Issuer.Present, m.SerialNumber.Present, m.PurchaserName.Present,
			m.PayeeName.Present, m.Amount.Present),
		nameQuality(m.PurchaserName.Present, m.PurchaserName.Value),
	)

	// derived (2)
	amountToCapRatio := 0.0
	if m.Amount.Present {
		amountToCapRatio = clamp(m.Amount.Value.Value/moneyOrderAmountCap, 0, 1)
	}
	v = append(v,
		amountToCapRatio,
		clamp(float64(len(m.SerialNumber.Value))/12.0, 0, 1),
	)

	return finalize(v, document.KindMoneyOrder)
}
