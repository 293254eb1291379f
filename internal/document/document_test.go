package document

import "testing"

func TestDateBeforeAfter(t *testing.T) {
	cases := []struct {
		name   string
		a, b   Date
		before bool
		after  bool
	}{
		{"earlier year", Date{2024, 1, 1}, Date{2025, 1, 1}, true, false},
		{"same date", Date{2024, 6, 15}, Date{2024, 6, 15}, false, false},
		{"later month", Date{2024, 7, 1}, Date{2024, 6, 30}, false, true},
		{"later day", Date{2024, 6, 16}, Date{2024, 6, 15}, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Before(c.b); got != c.before {
				t.Errorf("Before() = %v, want %v", got, c.before)
			}
			if got := c.a.After(c.b); got != c.after {
				t.Errorf("After() = %v, want %v", got, c.after)
			}
		})
	}
}

func TestIdentityKeyPresence(t *testing.T) {
	cases := []struct {
		name    string
		doc     Document
		wantKey string
		wantOK  bool
	}{
		{
			name:    "bank statement with holder name",
			doc:     Document{Kind: KindBankStatement, BankStatement: &BankStatement{AccountHolderName: Str("Jane Doe")}},
			wantKey: "Jane Doe",
			wantOK:  true,
		},
		{
			name:    "bank statement with absent holder name",
			doc:     Document{Kind: KindBankStatement, BankStatement: &BankStatement{}},
			wantOK:  false,
		},
		{
			name:    "check with payer",
			doc:     Document{Kind: KindCheck, Check: &Check{PayerName: Str("John Smith")}},
			wantKey: "John Smith",
			wantOK:  true,
		},
		{
			name:    "paystub with employee",
			doc:     Document{Kind: KindPaystub, Paystub: &Paystub{EmployeeName: Str("Alice")}},
			wantKey: "Alice",
			wantOK:  true,
		},
		{
			name:    "money order with purchaser",
			doc:     Document{Kind: KindMoneyOrder, MoneyOrder: &MoneyOrder{PurchaserName: Str("Bob")}},
			wantKey: "Bob",
			wantOK:  true,
		},
		{
			name:    "money order missing purchaser",
			doc:     Document{Kind: KindMoneyOrder, MoneyOrder: &MoneyOrder{}},
			wantOK:  false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			key, ok := c.doc.IdentityKey()
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if ok && key != c.wantKey {
				t.Errorf("key = %q, want %q", key, c.wantKey)
			}
		})
	}
}

func TestFingerprintRequiresAllFields(t *testing.T) {
	complete := Document{Kind: KindCheck, Check: &Check{
		BankName:    Str("First Bank"),
		CheckNumber: Str("1001"),
		PayerName:   Str("Jane Doe"),
	}}
	if _, ok := complete.Fingerprint(); !ok {
		t.Fatal("expected fingerprint to be computable with all required fields present")
	}

	incomplete := Document{Kind: KindCheck, Check: &Check{
		BankName: Str("First Bank"),
	}}
	if _, ok := incomplete.Fingerprint(); ok {
		t.Fatal("expected fingerprint to be unavailable when required fields are absent")
	}
}

func TestFingerprintNormalizesNames(t *testing.T) {
	a := Document{Kind: KindCheck, Check: &Check{
		BankName:    Str("First   Bank"),
		CheckNumber: Str("1001"),
		PayerName:   Str("JANE DOE"),
	}}
	b := Document{Kind: KindCheck, Check: &Check{
		BankName:    Str("first bank"),
		CheckNumber: Str("1001"),
		PayerName:   Str("jane doe"),
	}}
	fa, okA := a.Fingerprint()
	fb, okB := b.Fingerprint()
	if !okA || !okB {
		t.Fatal("expected both fingerprints to be computable")
	}
	if fa != fb {
		t.Errorf("expected normalized fingerprints to match, got %q and %q", fa, fb)
	}
}

func TestFingerprintDistinguishesKinds(t *testing.T) {
	check := Document{Kind: KindCheck, Check: &Check{
		BankName: Str("First Bank"), CheckNumber: Str("1"), PayerName: Str("A"),
	}}
	moneyOrder := Document{Kind: KindMoneyOrder, MoneyOrder: &MoneyOrder{
		Issuer: Str("First Bank"), SerialNumber: Str("1"),
	}}
	fc, _ := check.Fingerprint()
	fm, _ := moneyOrder.Fingerprint()
	if fc == fm {
		t.Errorf("expected different document kinds to never collide on fingerprint, got %q for both", fc)
	}
}
