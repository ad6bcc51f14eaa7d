package core

import "testing"

func TestFilterIsZero(t *testing.T) {
	if !(Filter{}).IsZero() {
		t.Fatal("empty filter should be zero")
	}
	if (Filter{Type: TypeRevenue}).IsZero() {
		t.Fatal("filter with a type is not zero")
	}
}

func TestFilterMatches(t *testing.T) {
	salary := tx(TypeRevenue, 100000, NewDate(2025, 9, 15), "")
	salary.Description = "Salário"
	rent := tx(TypeFixedExpense, 30000, NewDate(2025, 9, 5), "Rent")
	rent.Description = "Aluguel"

	cases := []struct {
		name string
		f    Filter
		tx   Transaction
		want bool
	}{
		{"zero filter matches all", Filter{}, rent, true},
		{"dateFrom inclusive on boundary", Filter{DateFrom: NewDate(2025, 9, 15)}, salary, true},
		{"dateFrom excludes earlier", Filter{DateFrom: NewDate(2025, 9, 15)}, rent, false},
		{"dateTo inclusive on boundary", Filter{DateTo: NewDate(2025, 9, 5)}, rent, true},
		{"substring is case-insensitive", Filter{Description: "sal"}, salary, true},
		{"substring misses", Filter{Description: "sal"}, rent, false},
		{"type exact match", Filter{Type: TypeFixedExpense}, rent, true},
		{"type excludes others", Filter{Type: TypeFixedExpense}, salary, false},
		{"conjunction of predicates", Filter{DateFrom: NewDate(2025, 9, 1), Type: TypeRevenue, Description: "SAL"}, salary, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Matches(tc.tx); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
