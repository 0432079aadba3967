// Package ledger implements the pure computation core of the expense
// ledger: share splitting, balance aggregation and monthly summaries.
// It never touches storage; services feed it already-loaded rows.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyGroup is returned when an amount cannot be split because
	// the group has no members.
	ErrEmptyGroup = errors.New("cannot split an expense in an empty group")

	// ErrNonPositiveAmount is returned for zero or negative expense amounts.
	ErrNonPositiveAmount = errors.New("expense amount must be positive")
)

// Share is one member's computed portion of an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// SplitEqually divides amount into one share per member, rounded half-up
// to 2 decimal places. The rounding residue (amount minus the sum of the
// rounded shares) is folded into the payer's share so the shares always
// sum exactly to the expense amount.
func SplitEqually(amount decimal.Decimal, memberIDs []string, payerID string) ([]Share, error) {
	if len(memberIDs) == 0 {
		return nil, ErrEmptyGroup
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	n := decimal.NewFromInt(int64(len(memberIDs)))
	base := amount.Div(n).Round(2)
	residue := amount.Sub(base.Mul(n))

	shares := make([]Share, 0, len(memberIDs))
	residueHolder := -1
	for i, id := range memberIDs {
		shares = append(shares, Share{UserID: id, Amount: base})
		if id == payerID {
			residueHolder = i
		}
	}
	// The payer absorbs the residue; if the payer somehow is not in the
	// member list the first member does, keeping the sum invariant intact.
	if residueHolder < 0 {
		residueHolder = 0
	}
	shares[residueHolder].Amount = shares[residueHolder].Amount.Add(residue)

	return shares, nil
}
