package ledger

import "github.com/shopspring/decimal"

// Member identifies a balance participant with their display name.
type Member struct {
	UserID string
	Name   string
}

// ExpenseForBalance carries the minimal expense data needed for aggregation.
type ExpenseForBalance struct {
	PaidBy string
	Amount decimal.Decimal
}

// ShareForBalance carries the minimal share data needed for aggregation.
type ShareForBalance struct {
	UserID string
	Amount decimal.Decimal
}

// Balance is one participant's net position: paid minus owed.
type Balance struct {
	UserID string
	Name   string
	Net    decimal.Decimal
}

// ComputeBalances aggregates a group's full history into net balances.
// Every expense credits its payer with the full amount; every share debits
// the owing member. The result has one entry per current member plus one
// for any former member who still carries history, in the order of members
// followed by former members as first encountered. The sum of all entries
// is always exactly zero because shares sum to their expense amounts.
func ComputeBalances(members []Member, expenses []ExpenseForBalance, shares []ShareForBalance) []Balance {
	nets := make(map[string]decimal.Decimal, len(members))
	names := make(map[string]string, len(members))
	order := make([]string, 0, len(members))

	for _, m := range members {
		nets[m.UserID] = decimal.Zero
		names[m.UserID] = m.Name
		order = append(order, m.UserID)
	}

	track := func(userID string) {
		if _, ok := nets[userID]; !ok {
			nets[userID] = decimal.Zero
			order = append(order, userID)
		}
	}

	for _, e := range expenses {
		track(e.PaidBy)
		nets[e.PaidBy] = nets[e.PaidBy].Add(e.Amount)
	}
	for _, s := range shares {
		track(s.UserID)
		nets[s.UserID] = nets[s.UserID].Sub(s.Amount)
	}

	balances := make([]Balance, 0, len(order))
	for _, id := range order {
		balances = append(balances, Balance{UserID: id, Name: names[id], Net: nets[id]})
	}
	return balances
}
