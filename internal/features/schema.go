package features

import "github.com/enterprise/fraud-pipeline/internal/document"

// Schema is the declared ordered feature name list for a document kind. It
// is the source of truth for index→name mapping; FE, the scaler, and the
// regressors are all validated against it.
type Schema struct {
	Kind  document.Kind
	Names []string
}

var bankStatementSchema = Schema{
	Kind: document.KindBankStatement,
	Names: []string{
		// presence (8)
		"bank_name_present", "account_holder_name_present", "account_number_present",
		"statement_period_start_present", "statement_period_end_present",
		"beginning_balance_present", "ending_balance_present", "transactions_present",
		// validity (4)
		"account_number_valid", "period_ordering_valid", "currency_supported", "bank_name_supported",
		// magnitudes (6)
		"beginning_balance_clamped", "ending_balance_clamped", "total_credits_clamped",
		"total_debits_clamped", "transaction_count_clamped", "avg_transaction_amount_clamped",
		// consistency (3)
		"balance_consistency_score", "credits_recompute_consistency", "debits_recompute_consistency",
		// pattern (6)
		"round_number_count", "large_transaction_count", "weekend_ratio",
		"round_amount_flag", "duplicate_transaction_count", "transaction_frequency",
		// quality (4)
		"text_quality", "field_quality", "description_quality", "holder_name_quality",
		// derived (4)
		"balance_volatility", "credit_debit_ratio", "net_change_ratio", "avg_daily_balance_change",
	},
}

var checkSchema = Schema{
	Kind: document.KindCheck,
	Names: []string{
		// presence (7)
		"bank_name_present", "routing_number_present", "account_number_present",
		"check_number_present", "amount_numeric_present", "payer_name_present", "payee_name_present",
		// validity (5)
		"routing_number_valid", "account_number_valid", "check_number_valid",
		"check_date_valid", "signature_present",
		// magnitudes (3)
		"amount_numeric_clamped", "amount_written_match", "memo_length_clamped",
		// consistency (3)
		"amount_consistency", "payer_payee_distinct", "date_consistency",
		// pattern (4)
		"round_amount_flag", "large_amount_flag", "future_date_flag", "stale_date_flag",
		// quality (4)
		"text_quality", "field_quality", "payer_name_quality", "memo_quality",
		// derived (4)
		"amount_to_round_ratio", "bank_name_quality", "check_number_length_score", "payer_address_present",
	},
}

var paystubSchema = Schema{
	Kind: document.KindPaystub,
	Names: []string{
		// presence (6)
		"employer_name_present", "employee_name_present", "pay_period_start_present",
		"pay_period_end_present", "gross_pay_present", "net_pay_present",
		// validity (2)
		"pay_period_valid", "net_le_gross_valid",
		// magnitudes (4)
		"gross_pay_clamped", "net_pay_clamped", "ytd_gross_clamped", "ytd_net_clamped",
		// consistency (3)
		"net_gross_ratio_consistency", "ytd_consistency", "tax_consistency",
		// pattern (2)
		"round_pay_flag", "ytd_period_count_estimate",
		// quality (3)
		"text_quality", "field_quality", "employer_name_quality",
		// derived (2)
		"deduction_ratio", "ytd_net_gross_ratio",
	},
}

var moneyOrderSchema = Schema{
	Kind: document.KindMoneyOrder,
	Names: []string{
		// presence (5)
		"issuer_present", "serial_number_present", "purchaser_name_present",
		"payee_name_present", "amount_present",
		// validity (3)
		"serial_number_valid", "purchase_date_valid", "issuer_supported",
		// magnitudes (2)
		"amount_clamped", "amount_cap_flag",
		// consistency (2)
		"purchaser_payee_distinct", "date_consistency",
		// pattern (3)
		"round_amount_flag", "large_amount_flag", "future_date_flag",
		// quality (3)
		"text_quality", "field_quality", "purchaser_name_quality",
		// derived (2)
		"amount_to_cap_ratio", "serial_number_length_score",
	},
}

// SchemaFor returns the declared schema for kind.
func SchemaFor(kind document.Kind) Schema {
	switch kind {
	case document.KindBankStatement:
		return bankStatementSchema
	case document.KindCheck:
		return checkSchema
	case document.KindPaystub:
		return paystubSchema
	case document.KindMoneyOrder:
		return moneyOrderSchema
	}
	return Schema{}
}

// Lookup returns the named feature's value from vec, and whether the name
// exists in the schema.
func (s Schema) Lookup(vec Vector, name string) (float64, bool) {
	idx := schemaIndex(s.Names, name)
	if idx < 0 || idx >= len(vec) {
		return 0, false
	}
	return vec[idx], true
}

func init() {
	for kind, n := range FEATURE_COUNT {
		s := SchemaFor(kind)
		if len(s.Names) != n {
			panic("features: schema/length mismatch for " + string(kind))
		}
	}
}
