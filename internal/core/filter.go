package core

import "strings"

// Filter is an immutable set of optional predicates over an owner's
// transactions. The zero value matches everything; present fields are
// combined as a conjunction.
type Filter struct {
	DateFrom    Date   // inclusive lower bound on the calendar date
	DateTo      Date   // inclusive upper bound
	Description string // case-insensitive substring on the description
	Type        TxType // exact type match; empty means all types
}

// IsZero reports whether no predicate is set (the "cleared filters" state).
func (f Filter) IsZero() bool {
	return f.DateFrom.IsZero() && f.DateTo.IsZero() && f.Description == "" && f.Type == ""
}

// Matches reports whether t satisfies every present predicate. The SQL
// built by the storage layer implements the same semantics; this form exists
// for in-memory checks and cross-validation in tests.
func (f Filter) Matches(t Transaction) bool {
	if !f.DateFrom.IsZero() && t.Date.String() < f.DateFrom.String() {
		return false
	}
	if !f.DateTo.IsZero() && t.Date.String() > f.DateTo.String() {
		return false
	}
	if f.Description != "" &&
		!strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Description)) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}
