// Package document defines the normalized document schema consumed by the
// fraud decision pipeline. Normalization itself (OCR extraction, bank-specific
// field mapping) happens upstream; this package only models the result.
package document

// Kind identifies which variant of the tagged union a Document carries.
type Kind string

const (
	KindBankStatement Kind = "bank_statement"
	KindCheck         Kind = "check"
	KindPaystub       Kind = "paystub"
	KindMoneyOrder    Kind = "money_order"
)

// Money is an amount paired with its ISO-4217 currency code.
type Money struct {
	Value    float64
	Currency string
}

// Date is a calendar date with no time component, matching spec's ISO
// YYYY-MM-DD dates. time.Time is deliberately not used here: the pipeline
// must never compare instants with timezone offsets when deciding
// future-dated instruments.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Before reports whether d occurs strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d occurs strictly after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// OptString is an explicitly-present-or-absent string. Absence is a
// first-class value, never an empty-string sentinel.
type OptString struct {
	Value   string
	Present bool
}

func Str(v string) OptString { return OptString{Value: v, Present: true} }

// OptDate is an explicitly-present-or-absent Date.
type OptDate struct {
	Value   Date
	Present bool
}

func DateVal(v Date) OptDate { return OptDate{Value: v, Present: true} }

// OptMoney is an explicitly-present-or-absent Money.
type OptMoney struct {
	Value   Money
	Present bool
}

func MoneyVal(v Money) OptMoney { return OptMoney{Value: v, Present: true} }

// OptBool is an explicitly-present-or-absent bool.
type OptBool struct {
	Value   bool
	Present bool
}

func BoolVal(v bool) OptBool { return OptBool{Value: v, Present: true} }

// Transaction is one line item inside a bank statement.
type Transaction struct {
	Date        Date
	Description string
	Amount      Money // signed: positive = credit, negative = debit
}

// BankStatement carries the fields listed in spec.md §6.1.
type BankStatement struct {
	BankName                  OptString
	BankAddress               OptString
	AccountHolderName         OptString
	AccountHolderNames        []string
	AccountNumber             OptString
	AccountType               OptString
	Currency                  string // defaults to "USD" upstream if absent
	StatementPeriodStartDate  OptDate
	StatementPeriodEndDate    OptDate
	StatementDate             OptDate
	BeginningBalance          OptMoney
	EndingBalance             OptMoney
	TotalCredits              OptMoney
	TotalDebits               OptMoney
	Transactions              []Transaction
}

// Check carries the fields listed in spec.md §6.1.
type Check struct {
	BankName          OptString
	RoutingNumber     OptString
	AccountNumber     OptString
	CheckNumber       OptString
	AmountNumeric     OptMoney
	AmountWritten     OptString
	PayerName         OptString
	PayerAddress      OptString
	PayeeName         OptString
	CheckDate         OptDate
	SignatureDetected OptBool
	Memo              OptString
}

// Paystub carries the fields listed in spec.md §6.1.
type Paystub struct {
	EmployerName    OptString
	EmployeeName    OptString
	PayPeriodStart  OptDate
	PayPeriodEnd    OptDate
	GrossPay        OptMoney
	NetPay          OptMoney
	YTDGross        OptMoney
	YTDNet          OptMoney
	FederalTax      OptMoney
	StateTax        OptMoney
	SocialSecurity  OptMoney
	Medicare        OptMoney
}

// MoneyOrder is documented by spec.md §2 as a supported instrument kind but
// its field list is not enumerated in §6.1; this schema follows the same
// shape as Check (issuer, identity parties, amount, date) since a money
// order is functionally a bearer check issued by a non-bank institution.
type MoneyOrder struct {
	Issuer          OptString
	SerialNumber    OptString
	PurchaserName   OptString
	PayeeName       OptString
	Amount          OptMoney
	PurchaseDate    OptDate
	PurchaseLocation OptString
}

// Document is the tagged union over the four supported instrument kinds.
type Document struct {
	Kind          Kind
	BankStatement *BankStatement
	Check         *Check
	Paystub       *Paystub
	MoneyOrder    *MoneyOrder
}

// RawText is the OCR concatenation, used only by the feature extractor for
// quality heuristics.
type RawText string

// IdentityKey extracts the identity used for PG lookups and H keying: the
// account-holder name, payer name, employee name, or purchaser name,
// depending on kind. The second return value is false when no identity
// field is present.
func (d Document) IdentityKey() (string, bool) {
	switch d.Kind {
	case KindBankStatement:
		if d.BankStatement != nil && d.BankStatement.AccountHolderName.Present && d.BankStatement.AccountHolderName.Value != "" {
			return d.BankStatement.AccountHolderName.Value, true
		}
	case KindCheck:
		if d.Check != nil && d.Check.PayerName.Present && d.Check.PayerName.Value != "" {
			return d.Check.PayerName.Value, true
		}
	case KindPaystub:
		if d.Paystub != nil && d.Paystub.EmployeeName.Present && d.Paystub.EmployeeName.Value != "" {
			return d.Paystub.EmployeeName.Value, true
		}
	case KindMoneyOrder:
		if d.MoneyOrder != nil && d.MoneyOrder.PurchaserName.Present && d.MoneyOrder.PurchaserName.Value != "" {
			return d.MoneyOrder.PurchaserName.Value, true
		}
	}
	return "", false
}
