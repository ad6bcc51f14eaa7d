package core

import "fmt"

type (
	// Period is an inclusive calendar-date window, conventionally one month.
	Period struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	// CategoryAmount is one expense category with its summed amount.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	// DayTotals is one dense daily-series entry.
	DayTotals struct {
		Day      Date  `json:"day"`
		Revenue  Money `json:"revenue"`
		Expenses Money `json:"expenses"`
	}

	// Summary is the aggregate view of one period's transactions.
	Summary struct {
		Period        Period           `json:"period"`
		TotalRevenue  Money            `json:"totalRevenue"`
		TotalExpenses Money            `json:"totalExpenses"`
		Balance       Money            `json:"balance"`
		ByCategory    []CategoryAmount `json:"byCategory"`
		Daily         []DayTotals      `json:"daily"`
	}
)

// MonthPeriod returns the first-through-last-day window of a calendar month.
func MonthPeriod(year, month int) Period {
	start := NewDate(year, month, 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return Period{Start: start, End: end}
}

// Days returns the number of calendar days in the period, both endpoints
// included.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours()/24) + 1
}

// Contains reports whether d falls inside the period, endpoints included.
func (p Period) Contains(d Date) bool {
	s := d.String()
	return s >= p.Start.String() && s <= p.End.String()
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidDate
	}
	if p.End.String() < p.Start.String() {
		return fmt.Errorf("%w: period end before start", ErrInvalidDate)
	}
	return nil
}

// Summarize folds a period-bounded snapshot of transactions into totals, the
// per-category expense breakdown (first-insertion order), and a dense daily
// series with one zero-filled entry per calendar day.
//
// The input is expected to be restricted to the period already; rows dated
// outside it are skipped entirely so that the daily sums always add up to the
// totals. A transaction with a type outside the closed enum is a
// data-integrity error, not a silent bucket assignment.
func Summarize(p Period, txs []Transaction) (Summary, error) {
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}

	s := Summary{
		Period:     p,
		ByCategory: []CategoryAmount{},
		Daily:      make([]DayTotals, 0, p.Days()),
	}
	dayIndex := make(map[string]int, p.Days())
	for d := p.Start; !d.After(p.End.Time); d = d.Next() {
		dayIndex[d.String()] = len(s.Daily)
		s.Daily = append(s.Daily, DayTotals{Day: d})
	}

	catIndex := make(map[string]int)
	for _, t := range txs {
		if !p.Contains(t.Date) {
			continue
		}
		i := dayIndex[t.Date.String()]
		switch {
		case t.Type.IsRevenue():
			s.TotalRevenue = s.TotalRevenue.Add(t.Amount)
			s.Daily[i].Revenue = s.Daily[i].Revenue.Add(t.Amount)
		case t.Type.IsExpense():
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			s.Daily[i].Expenses = s.Daily[i].Expenses.Add(t.Amount)

			name := t.Category
			if name == "" {
				name = OtherCategory
			}
			if j, seen := catIndex[name]; seen {
				s.ByCategory[j].Amount = s.ByCategory[j].Amount.Add(t.Amount)
			} else {
				catIndex[name] = len(s.ByCategory)
				s.ByCategory = append(s.ByCategory, CategoryAmount{Name: name, Amount: t.Amount})
			}
		default:
			return Summary{}, fmt.Errorf("%w: %q (transaction %s)", ErrUnknownType, t.Type, t.ID)
		}
	}

	s.Balance = s.TotalRevenue.Sub(s.TotalExpenses)
	return s, nil
}
