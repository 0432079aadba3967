package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidYearMonth is returned when a summary month is not in YYYY-MM form.
var ErrInvalidYearMonth = errors.New("month must be in YYYY-MM format")

// ExpenseForSummary carries the expense data needed for monthly aggregation.
type ExpenseForSummary struct {
	PaidBy    string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Contribution is one payer's total spend within the summary window.
type Contribution struct {
	UserID string
	Total  decimal.Decimal
}

// MonthWindow is the inclusive time range covering one calendar month.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// ParseYearMonth parses "YYYY-MM" into the window [first instant of the
// month, last instant of the month].
func ParseYearMonth(yearMonth string) (MonthWindow, error) {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return MonthWindow{}, ErrInvalidYearMonth
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return MonthWindow{Start: start, End: end}, nil
}

// Summarize totals the given expenses and groups them by payer. Only
// payers with at least one expense appear in the contributions; an empty
// input yields a zero total and no contributions. Contributions are
// ordered by first appearance of the payer.
func Summarize(expenses []ExpenseForSummary) (decimal.Decimal, []Contribution) {
	total := decimal.Zero
	byPayer := make(map[string]decimal.Decimal)
	var order []string

	for _, e := range expenses {
		total = total.Add(e.Amount)
		if _, ok := byPayer[e.PaidBy]; !ok {
			order = append(order, e.PaidBy)
		}
		byPayer[e.PaidBy] = byPayer[e.PaidBy].Add(e.Amount)
	}

	contributions := make([]Contribution, 0, len(order))
	for _, id := range order {
		contributions = append(contributions, Contribution{UserID: id, Total: byPayer[id]})
	}
	return total, contributions
}
