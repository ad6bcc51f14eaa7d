package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeRevenue         TxType = "revenue"
	TypeFixedExpense    TxType = "fixed-expense"
	TypeVariableExpense TxType = "variable-expense"
)

// OtherCategory is the breakdown label for expense transactions without a category.
const OtherCategory = "Other"

type (
	TxType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            string    `json:"id"`
		OwnerID       string    `json:"ownerId"`
		Description   string    `json:"description"`
		Amount        Money     `json:"amount"`
		Date          Date      `json:"date"`
		Type          TxType    `json:"type"`
		Category      string    `json:"category,omitempty"`      // empty groups under OtherCategory
		PaymentMethod string    `json:"paymentMethod,omitempty"` // informational, never aggregated
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrShortDescription = errors.New("description must have at least 2 characters")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
	ErrUnknownType      = errors.New("unknown transaction type")
	ErrMissingOwner     = errors.New("missing owner")
)

// Valid reports whether t is a member of the closed type set.
func (t TxType) Valid() bool {
	switch t {
	case TypeRevenue, TypeFixedExpense, TypeVariableExpense:
		return true
	}
	return false
}

// IsExpense reports membership in the expense family. Membership is exact
// against the two expense variants; a prefix test would silently absorb
// typoed types into the expense bucket.
func (t TxType) IsExpense() bool {
	return t == TypeFixedExpense || t == TypeVariableExpense
}

func (t TxType) IsRevenue() bool {
	return t == TypeRevenue
}

// NewDate creates a calendar date. The time component is pinned to UTC
// midnight so two dates compare equal exactly when their calendar days do.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return Date{Time: d.AddDate(0, 0, 1)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the field constraints enforced before any store write.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrMissingOwner
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	desc := strings.TrimSpace(t.Description)
	if len([]rune(desc)) < 2 {
		return ErrShortDescription
	}
	if len(desc) > 200 {
		return ErrLongDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrUnknownType
	}
	return nil
}
