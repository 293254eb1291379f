package document

import (
	"fmt"
	"strings"
)

// normalizeName lowercases and collapses internal whitespace, matching the
// "normalized-description" / "normalized-payer" comparisons spec.md requires
// for duplicate detection.
func normalizeName(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// Fingerprint computes the identity-plus-content tuple spec.md §3.2 requires
// for resubmission detection, serialized as a single string key. The second
// return value is false when the document does not carry enough fields to
// compute one (treated as "no duplicate check possible" by the caller).
func (d Document) Fingerprint() (string, bool) {
	switch d.Kind {
	case KindBankStatement:
		bs := d.BankStatement
		if bs == nil || !bs.AccountNumber.Present || !bs.StatementPeriodStartDate.Present {
			return "", false
		}
		return fmt.Sprintf("bank_statement:%s:%04d-%02d-%02d",
			bs.AccountNumber.Value,
			bs.StatementPeriodStartDate.Value.Year,
			bs.StatementPeriodStartDate.Value.Month,
			bs.StatementPeriodStartDate.Value.Day,
		), true
	case KindCheck:
		c := d.Check
		if c == nil || !c.BankName.Present || !c.CheckNumber.Present || !c.PayerName.Present {
			return "", false
		}
		return fmt.Sprintf("check:%s:%s:%s",
			normalizeName(c.BankName.Value),
			c.CheckNumber.Value,
			normalizeName(c.PayerName.Value),
		), true
	case KindPaystub:
		p := d.Paystub
		if p == nil || !p.EmployerName.Present || !p.EmployeeName.Present || !p.PayPeriodStart.Present {
			return "", false
		}
		return fmt.Sprintf("paystub:%s:%s:%04d-%02d-%02d",
			normalizeName(p.EmployerName.Value),
			normalizeName(p.EmployeeName.Value),
			p.PayPeriodStart.Value.Year,
			p.PayPeriodStart.Value.Month,
			p.PayPeriodStart.Value.Day,
		), true
	case KindMoneyOrder:
		m := d.MoneyOrder
		if m == nil || !m.Issuer.Present || !m.SerialNumber.Present {
			return "", false
		}
		return fmt.Sprintf("money_order:%s:%s",
			normalizeName(m.Issuer.Value),
			m.SerialNumber.Value,
		), true
	}
	return "", false
}
