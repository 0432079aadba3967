package services

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/roomshare/roomshare-be/internal/ledger"
	"github.com/roomshare/roomshare-be/internal/models"
)

// BlobStore persists proof-of-payment uploads and returns a stable
// reference string. The ledger stores only the reference.
type BlobStore interface {
	Save(originalName string, content io.Reader) (string, error)
	Open(ref string) (io.ReadCloser, error)
}

// ExpenseServiceProvider defines the interface for expense recording and
// the read-side aggregations built on top of it.
type ExpenseServiceProvider interface {
	AddExpense(groupID, payerID, title, category string, amount decimal.Decimal, proofName string, proof io.Reader) (models.ExpenseInfo, error)
	GetExpenseProof(expenseID, requesterID string) (io.ReadCloser, error)
	GetExpensesByGroup(groupID, requesterID string) ([]models.ExpenseInfo, error)
	GetGroupBalances(groupID, requesterID string) ([]models.MemberBalance, error)
	GetMonthlySummary(groupID, requesterID, yearMonth string) (models.MonthlySummary, error)
}

// ExpenseService provides business logic for expenses, balances and
// monthly summaries.
type ExpenseService struct {
	db       *sql.DB
	security SecurityServiceProvider
	files    BlobStore
	activity ActivityServiceProvider
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(db *sql.DB, security SecurityServiceProvider, files BlobStore, activity ActivityServiceProvider) *ExpenseService {
	return &ExpenseService{db: db, security: security, files: files, activity: activity}
}

// AddExpense records an expense and fans it out into one share per
// current group member. The payer must be a member of the group. The
// expense row and all share rows commit in a single transaction.
func (s *ExpenseService) AddExpense(groupID, payerID, title, category string, amount decimal.Decimal, proofName string, proof io.Reader) (models.ExpenseInfo, error) {
	if err := s.security.VerifyMember(groupID, payerID); err != nil {
		return models.ExpenseInfo{}, err
	}
	if !amount.IsPositive() {
		return models.ExpenseInfo{}, fmt.Errorf("%w: expense amount must be positive", ErrBadRequest)
	}

	var groupName string
	err := s.db.QueryRow("SELECT name FROM groups WHERE id = ?", groupID).Scan(&groupName)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ExpenseInfo{}, fmt.Errorf("%w: group not found", ErrNotFound)
		}
		return models.ExpenseInfo{}, err
	}

	// Proof storage is independent of the financial logic; it runs
	// before the transaction so a storage failure aborts cleanly.
	proofPath := ""
	if proof != nil {
		proofPath, err = s.files.Save(proofName, proof)
		if err != nil {
			return models.ExpenseInfo{}, fmt.Errorf("could not store proof file: %w", err)
		}
	}

	memberIDs, err := s.memberIDs(groupID)
	if err != nil {
		return models.ExpenseInfo{}, err
	}

	shares, err := ledger.SplitEqually(amount, memberIDs, payerID)
	if err != nil {
		return models.ExpenseInfo{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	expense := models.Expense{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		PaidBy:    payerID,
		Title:     title,
		Category:  category,
		Amount:    amount.Round(2),
		ProofPath: proofPath,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.ExpenseInfo{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO expenses (id, group_id, paid_by, title, category, amount, proof_path, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PaidBy, expense.Title, nullable(expense.Category), expense.Amount.StringFixed(2), nullable(expense.ProofPath), expense.CreatedAt.Unix())
	if err != nil {
		return models.ExpenseInfo{}, err
	}

	for _, share := range shares {
		_, err = tx.Exec(
			"INSERT INTO expense_shares (id, expense_id, user_id, share_amount, status) VALUES (?, ?, ?, ?, ?)",
			uuid.New().String(), expense.ID, share.UserID, share.Amount.StringFixed(2), models.SharePending)
		if err != nil {
			return models.ExpenseInfo{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.ExpenseInfo{}, err
	}

	var payerName string
	if err := s.db.QueryRow("SELECT name FROM users WHERE id = ?", payerID).Scan(&payerName); err != nil {
		return models.ExpenseInfo{}, err
	}

	log.Info().Str("group_id", groupID).Str("expense_id", expense.ID).Str("amount", expense.Amount.StringFixed(2)).Msg("Expense recorded")
	s.activity.Record(groupID, "expense.add", fmt.Sprintf("%s added '%s' (%s).", payerName, expense.Title, expense.Amount.StringFixed(2)))

	return models.ExpenseInfo{
		ID:        expense.ID,
		Title:     expense.Title,
		Amount:    expense.Amount,
		Category:  expense.Category,
		PaidBy:    payerName,
		CreatedAt: expense.CreatedAt,
	}, nil
}

// GetExpenseProof opens the stored proof-of-payment file for an expense.
// The requester must be a member of the expense's group.
func (s *ExpenseService) GetExpenseProof(expenseID, requesterID string) (io.ReadCloser, error) {
	var groupID string
	var proofPath sql.NullString
	err := s.db.QueryRow("SELECT group_id, proof_path FROM expenses WHERE id = ?", expenseID).Scan(&groupID, &proofPath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: expense not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.security.VerifyMember(groupID, requesterID); err != nil {
		return nil, err
	}
	if !proofPath.Valid {
		return nil, fmt.Errorf("%w: expense has no proof file", ErrNotFound)
	}
	return s.files.Open(proofPath.String)
}

// GetExpensesByGroup returns the expense projections for a group, newest
// first. The requester must be a member.
func (s *ExpenseService) GetExpensesByGroup(groupID, requesterID string) ([]models.ExpenseInfo, error) {
	if err := s.security.VerifyMember(groupID, requesterID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT e.id, e.title, e.amount, COALESCE(e.category, ''), u.name, e.created_at
		FROM expenses e
		JOIN users u ON u.id = e.paid_by
		WHERE e.group_id = ?
		ORDER BY e.created_at DESC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.ExpenseInfo
	for rows.Next() {
		var info models.ExpenseInfo
		var amount string
		var created int64
		if err := rows.Scan(&info.ID, &info.Title, &amount, &info.Category, &info.PaidBy, &created); err != nil {
			return nil, err
		}
		if info.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount on expense %s: %w", info.ID, err)
		}
		info.CreatedAt = time.Unix(created, 0).UTC()
		expenses = append(expenses, info)
	}
	return expenses, rows.Err()
}

// GetGroupBalances computes each member's net balance across the group's
// full history. Former members with remaining history stay in the output
// so the returned balances always sum to zero.
func (s *ExpenseService) GetGroupBalances(groupID, requesterID string) ([]models.MemberBalance, error) {
	if err := s.security.VerifyMember(groupID, requesterID); err != nil {
		return nil, err
	}

	names := make(map[string]string)

	members, err := s.currentMembers(groupID, names)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expensesForBalance(groupID, names)
	if err != nil {
		return nil, err
	}
	shares, err := s.sharesForBalance(groupID, names)
	if err != nil {
		return nil, err
	}

	balances := ledger.ComputeBalances(members, expenses, shares)

	result := make([]models.MemberBalance, 0, len(balances))
	for _, b := range balances {
		name := b.Name
		if name == "" {
			name = names[b.UserID]
		}
		result = append(result, models.MemberBalance{UserID: b.UserID, Name: name, Balance: b.Net})
	}
	return result, nil
}

// GetMonthlySummary aggregates a group's spending for one calendar month
// given as "YYYY-MM". The requester must be a member.
func (s *ExpenseService) GetMonthlySummary(groupID, requesterID, yearMonth string) (models.MonthlySummary, error) {
	if err := s.security.VerifyMember(groupID, requesterID); err != nil {
		return models.MonthlySummary{}, err
	}

	window, err := ledger.ParseYearMonth(yearMonth)
	if err != nil {
		return models.MonthlySummary{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	rows, err := s.db.Query(`
		SELECT e.paid_by, u.name, e.amount, e.created_at
		FROM expenses e
		JOIN users u ON u.id = e.paid_by
		WHERE e.group_id = ? AND e.created_at BETWEEN ? AND ?`,
		groupID, window.Start.Unix(), window.End.Unix())
	if err != nil {
		return models.MonthlySummary{}, err
	}
	defer rows.Close()

	names := make(map[string]string)
	var inMonth []ledger.ExpenseForSummary
	for rows.Next() {
		var e ledger.ExpenseForSummary
		var name, amount string
		var created int64
		if err := rows.Scan(&e.PaidBy, &name, &amount, &created); err != nil {
			return models.MonthlySummary{}, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return models.MonthlySummary{}, fmt.Errorf("corrupt amount in group %s: %w", groupID, err)
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		names[e.PaidBy] = name
		inMonth = append(inMonth, e)
	}
	if err := rows.Err(); err != nil {
		return models.MonthlySummary{}, err
	}

	total, contributions := ledger.Summarize(inMonth)

	summary := models.MonthlySummary{
		TotalSpent:    total,
		Contributions: make([]models.MemberContribution, 0, len(contributions)),
	}
	for _, c := range contributions {
		summary.Contributions = append(summary.Contributions, models.MemberContribution{
			UserID:       c.UserID,
			Name:         names[c.UserID],
			Contribution: c.Total,
		})
	}
	return summary, nil
}

func (s *ExpenseService) memberIDs(groupID string) ([]string, error) {
	rows, err := s.db.Query("SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at", groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ExpenseService) currentMembers(groupID string, names map[string]string) ([]ledger.Member, error) {
	rows, err := s.db.Query(`
		SELECT u.id, u.name
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []ledger.Member
	for rows.Next() {
		var m ledger.Member
		if err := rows.Scan(&m.UserID, &m.Name); err != nil {
			return nil, err
		}
		names[m.UserID] = m.Name
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *ExpenseService) expensesForBalance(groupID string, names map[string]string) ([]ledger.ExpenseForBalance, error) {
	rows, err := s.db.Query(`
		SELECT e.paid_by, u.name, e.amount
		FROM expenses e
		JOIN users u ON u.id = e.paid_by
		WHERE e.group_id = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []ledger.ExpenseForBalance
	for rows.Next() {
		var e ledger.ExpenseForBalance
		var name, amount string
		if err := rows.Scan(&e.PaidBy, &name, &amount); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount in group %s: %w", groupID, err)
		}
		names[e.PaidBy] = name
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *ExpenseService) sharesForBalance(groupID string, names map[string]string) ([]ledger.ShareForBalance, error) {
	rows, err := s.db.Query(`
		SELECT es.user_id, u.name, es.share_amount
		FROM expense_shares es
		JOIN expenses e ON e.id = es.expense_id
		JOIN users u ON u.id = es.user_id
		WHERE e.group_id = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []ledger.ShareForBalance
	for rows.Next() {
		var sh ledger.ShareForBalance
		var name, amount string
		if err := rows.Scan(&sh.UserID, &name, &amount); err != nil {
			return nil, err
		}
		if sh.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt share amount in group %s: %w", groupID, err)
		}
		names[sh.UserID] = name
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
