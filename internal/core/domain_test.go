package core

import "testing"

func TestTxTypeValid(t *testing.T) {
	valid := []TxType{TypeRevenue, TypeFixedExpense, TypeVariableExpense}
	for _, tt := range valid {
		if !tt.Valid() {
			t.Fatalf("%q should be valid", tt)
		}
	}
	invalid := []TxType{"", "income", "fixed", "fixed-expens", "fixed-expenses", "REVENUE"}
	for _, tt := range invalid {
		if tt.Valid() {
			t.Fatalf("%q should be invalid", tt)
		}
	}
}

func TestTxTypeExpenseFamilyIsExact(t *testing.T) {
	if !TypeFixedExpense.IsExpense() || !TypeVariableExpense.IsExpense() {
		t.Fatal("both expense variants must belong to the family")
	}
	if TypeRevenue.IsExpense() {
		t.Fatal("revenue is not an expense")
	}
	// A typoed variant that merely shares the prefix must not be absorbed.
	if TxType("fixed-expensee").IsExpense() {
		t.Fatal("prefix match must not count as family membership")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-09-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-09-15" {
		t.Fatalf("round trip mismatch: %s", d.String())
	}
	for _, bad := range []string{"", "2025-9-15", "15/09/2025", "2025-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateNext(t *testing.T) {
	if got := NewDate(2025, 9, 30).Next().String(); got != "2025-10-01" {
		t.Fatalf("expected 2025-10-01, got %s", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		OwnerID:     "owner-1",
		Description: "Salário",
		Amount:      Money{Cents: 100000},
		Date:        NewDate(2025, 9, 3),
		Type:        TypeRevenue,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"missing owner", func(x *Transaction) { x.OwnerID = " " }, ErrMissingOwner},
		{"zero date", func(x *Transaction) { x.Date = Date{} }, ErrInvalidDate},
		{"short description", func(x *Transaction) { x.Description = "a" }, ErrShortDescription},
		{"zero amount", func(x *Transaction) { x.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(x *Transaction) { x.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"unknown type", func(x *Transaction) { x.Type = "despesa" }, ErrUnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			if err := tx.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 2, 28)
	b, err := d.MarshalJSON()
	if err != nil || string(b) != `"2025-02-28"` {
		t.Fatalf("marshal: %s (err=%v)", b, err)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
}
