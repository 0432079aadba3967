package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShareStatus tracks whether a member has settled their share.
type ShareStatus string

const (
	SharePending ShareStatus = "PENDING"
	SharePaid    ShareStatus = "PAID"
)

// Expense represents a single shared expense paid by one group member.
// Expenses are immutable once recorded.
type Expense struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"groupId"`
	PaidBy    string          `json:"paidBy"`
	Title     string          `json:"title"`
	Category  string          `json:"category,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	ProofPath string          `json:"-"` // Internal storage reference
	CreatedAt time.Time       `json:"createdAt"`
}

// ExpenseShare is one member's portion of an expense.
type ExpenseShare struct {
	ID          string          `json:"id"`
	ExpenseID   string          `json:"expenseId"`
	UserID      string          `json:"userId"`
	ShareAmount decimal.Decimal `json:"shareAmount"`
	Status      ShareStatus     `json:"status"`
}

// ExpenseInfo is the expense projection returned to clients. Only the
// payer's display name is exposed, none of their other identity fields.
type ExpenseInfo struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category,omitempty"`
	PaidBy    string          `json:"paidBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

// MemberBalance is a member's net position in a group.
// Positive means the group owes them, negative means they owe the group.
type MemberBalance struct {
	UserID  string          `json:"userId"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// MemberContribution is one payer's total spend within a summary window.
type MemberContribution struct {
	UserID       string          `json:"userId"`
	Name         string          `json:"name"`
	Contribution decimal.Decimal `json:"contribution"`
}

// MonthlySummary aggregates a group's spending for one calendar month.
type MonthlySummary struct {
	TotalSpent    decimal.Decimal      `json:"totalSpent"`
	Contributions []MemberContribution `json:"contributions"`
}
