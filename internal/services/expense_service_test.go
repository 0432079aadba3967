package services

import (
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roomshare/roomshare-be/internal/models"
	"github.com/roomshare/roomshare-be/internal/storage"
)

type expenseFixture struct {
	db       *sql.DB
	users    *UserService
	groups   *GroupService
	expenses *ExpenseService

	group models.Group
	alice models.User
	bob   models.User
	carol models.User
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()

	db := newTestDB(t)
	users := NewUserService(db)
	security := NewSecurityService(db)
	groups := NewGroupService(db, security, users, noopActivity{})

	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	expenses := NewExpenseService(db, security, files, noopActivity{})

	f := &expenseFixture{db: db, users: users, groups: groups, expenses: expenses}
	f.alice = createTestUser(t, users, "Alice", "alice@example.com")
	f.bob = createTestUser(t, users, "Bob", "bob@example.com")
	f.carol = createTestUser(t, users, "Carol", "carol@example.com")

	f.group, err = groups.CreateGroup("Flat 4B", f.alice.ID)
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	for _, email := range []string{f.bob.Email, f.carol.Email} {
		if _, err := groups.AddMember(f.group.ID, f.alice.ID, email); err != nil {
			t.Fatalf("AddMember(%s) error = %v", email, err)
		}
	}
	return f
}

func (f *expenseFixture) addExpense(t *testing.T, payerID, title, amount string) models.ExpenseInfo {
	t.Helper()
	info, err := f.expenses.AddExpense(f.group.ID, payerID, title, "", decimal.RequireFromString(amount), "", nil)
	if err != nil {
		t.Fatalf("AddExpense(%s) error = %v", title, err)
	}
	return info
}

func TestAddExpenseSplitsAmongMembers(t *testing.T) {
	f := newExpenseFixture(t)

	info := f.addExpense(t, f.bob.ID, "Groceries", "100.00")
	if info.PaidBy != "Bob" {
		t.Errorf("PaidBy = %q, want payer name", info.PaidBy)
	}

	rows, err := f.db.Query("SELECT user_id, share_amount, status FROM expense_shares WHERE expense_id = ?", info.ID)
	if err != nil {
		t.Fatalf("querying shares: %v", err)
	}
	defer rows.Close()

	shares := make(map[string]string)
	sum := decimal.Zero
	for rows.Next() {
		var userID, amount string
		var status models.ShareStatus
		if err := rows.Scan(&userID, &amount, &status); err != nil {
			t.Fatal(err)
		}
		if status != models.SharePending {
			t.Errorf("share status = %q, want pending", status)
		}
		shares[userID] = amount
		sum = sum.Add(decimal.RequireFromString(amount))
	}
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	if shares[f.bob.ID] != "33.34" {
		t.Errorf("payer share = %s, want 33.34", shares[f.bob.ID])
	}
	if shares[f.alice.ID] != "33.33" || shares[f.carol.ID] != "33.33" {
		t.Errorf("non-payer shares = %s / %s, want 33.33 each", shares[f.alice.ID], shares[f.carol.ID])
	}
	if !sum.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("shares sum to %s, want 100.00", sum)
	}
}

func TestAddExpenseRequiresMembership(t *testing.T) {
	f := newExpenseFixture(t)
	outsider := createTestUser(t, f.users, "Sam", "sam@example.com")

	_, err := f.expenses.AddExpense(f.group.ID, outsider.ID, "Sneaky", "", decimal.RequireFromString("5.00"), "", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("AddExpense by outsider = %v, want ErrForbidden", err)
	}
}

func TestAddExpenseRejectsNonPositiveAmount(t *testing.T) {
	f := newExpenseFixture(t)

	for _, amount := range []string{"0", "-12.50"} {
		_, err := f.expenses.AddExpense(f.group.ID, f.alice.ID, "Bad", "", decimal.RequireFromString(amount), "", nil)
		if !errors.Is(err, ErrBadRequest) {
			t.Errorf("AddExpense(%s) = %v, want ErrBadRequest", amount, err)
		}
	}
}

func TestAddExpenseStoresProof(t *testing.T) {
	f := newExpenseFixture(t)

	info, err := f.expenses.AddExpense(f.group.ID, f.alice.ID, "Internet", "utilities",
		decimal.RequireFromString("45.00"), "receipt.png", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	var proofPath sql.NullString
	if err := f.db.QueryRow("SELECT proof_path FROM expenses WHERE id = ?", info.ID).Scan(&proofPath); err != nil {
		t.Fatal(err)
	}
	if !proofPath.Valid || !strings.HasSuffix(proofPath.String, ".png") {
		t.Errorf("proof_path = %v, want generated .png reference", proofPath)
	}

	// Members can read the proof back; outsiders cannot.
	proof, err := f.expenses.GetExpenseProof(info.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("GetExpenseProof() error = %v", err)
	}
	content, err := io.ReadAll(proof)
	proof.Close()
	if err != nil || string(content) != "fake image bytes" {
		t.Errorf("proof content = %q, err = %v", content, err)
	}

	outsider := createTestUser(t, f.users, "Eve", "eve@example.com")
	if _, err := f.expenses.GetExpenseProof(info.ID, outsider.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("GetExpenseProof by outsider = %v, want ErrForbidden", err)
	}
}

func TestGetExpenseProofMissing(t *testing.T) {
	f := newExpenseFixture(t)
	info := f.addExpense(t, f.alice.ID, "No receipt", "12.00")

	if _, err := f.expenses.GetExpenseProof(info.ID, f.alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("proofless expense = %v, want ErrNotFound", err)
	}
	if _, err := f.expenses.GetExpenseProof("no-such-expense", f.alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown expense = %v, want ErrNotFound", err)
	}
}

func TestGetExpensesByGroup(t *testing.T) {
	f := newExpenseFixture(t)
	f.addExpense(t, f.alice.ID, "Rent", "1200.00")
	f.addExpense(t, f.bob.ID, "Groceries", "89.70")

	list, err := f.expenses.GetExpensesByGroup(f.group.ID, f.carol.ID)
	if err != nil {
		t.Fatalf("GetExpensesByGroup() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d expenses, want 2", len(list))
	}

	outsider := createTestUser(t, f.users, "Sam", "sam@example.com")
	if _, err := f.expenses.GetExpensesByGroup(f.group.ID, outsider.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("GetExpensesByGroup by outsider = %v, want ErrForbidden", err)
	}
}

func TestGetGroupBalances(t *testing.T) {
	f := newExpenseFixture(t)
	f.addExpense(t, f.alice.ID, "Rent", "90.00")
	f.addExpense(t, f.bob.ID, "Groceries", "30.00")

	balances, err := f.expenses.GetGroupBalances(f.group.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("GetGroupBalances() error = %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}

	byUser := make(map[string]decimal.Decimal)
	sum := decimal.Zero
	for _, b := range balances {
		byUser[b.UserID] = b.Balance
		sum = sum.Add(b.Balance)
	}
	// Alice paid 90 and owes 30+10; Bob paid 30 and owes 30+10; Carol owes 40.
	if !byUser[f.alice.ID].Equal(decimal.RequireFromString("50")) {
		t.Errorf("alice balance = %s, want 50", byUser[f.alice.ID])
	}
	if !byUser[f.bob.ID].Equal(decimal.RequireFromString("-10")) {
		t.Errorf("bob balance = %s, want -10", byUser[f.bob.ID])
	}
	if !byUser[f.carol.ID].Equal(decimal.RequireFromString("-40")) {
		t.Errorf("carol balance = %s, want -40", byUser[f.carol.ID])
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}

func TestGetGroupBalancesKeepsFormerMember(t *testing.T) {
	f := newExpenseFixture(t)
	f.addExpense(t, f.alice.ID, "Rent", "90.00")

	// Carol leaves the group after the split.
	if err := f.groups.RemoveMember(f.group.ID, f.alice.ID, f.carol.ID); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}

	balances, err := f.expenses.GetGroupBalances(f.group.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("GetGroupBalances() error = %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3 including the former member", len(balances))
	}

	sum := decimal.Zero
	found := false
	for _, b := range balances {
		sum = sum.Add(b.Balance)
		if b.UserID == f.carol.ID {
			found = true
			if !b.Balance.Equal(decimal.RequireFromString("-30")) {
				t.Errorf("former member balance = %s, want -30", b.Balance)
			}
			if b.Name != "Carol" {
				t.Errorf("former member name = %q, want Carol", b.Name)
			}
		}
	}
	if !found {
		t.Error("former member missing from balances")
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}

func TestGetMonthlySummary(t *testing.T) {
	f := newExpenseFixture(t)

	// Seed expenses at fixed times so the month boundary is exact.
	insert := func(payerID, amount string, at time.Time) {
		_, err := f.db.Exec(
			"INSERT INTO expenses (id, group_id, paid_by, title, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.New().String(), f.group.ID, payerID, "seeded", amount, at.Unix())
		if err != nil {
			t.Fatal(err)
		}
	}
	insert(f.alice.ID, "100.00", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	insert(f.alice.ID, "20.00", time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))
	insert(f.bob.ID, "30.00", time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC))
	insert(f.bob.ID, "999.00", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))

	summary, err := f.expenses.GetMonthlySummary(f.group.ID, f.alice.ID, "2026-03")
	if err != nil {
		t.Fatalf("GetMonthlySummary() error = %v", err)
	}
	if !summary.TotalSpent.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("TotalSpent = %s, want 150.00", summary.TotalSpent)
	}
	if len(summary.Contributions) != 2 {
		t.Fatalf("got %d contributions, want 2", len(summary.Contributions))
	}

	byUser := make(map[string]decimal.Decimal)
	for _, c := range summary.Contributions {
		byUser[c.UserID] = c.Contribution
	}
	if !byUser[f.alice.ID].Equal(decimal.RequireFromString("120.00")) {
		t.Errorf("alice contribution = %s, want 120.00", byUser[f.alice.ID])
	}
	if !byUser[f.bob.ID].Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("bob contribution = %s, want 30.00", byUser[f.bob.ID])
	}
}

func TestGetMonthlySummaryEmptyMonth(t *testing.T) {
	f := newExpenseFixture(t)

	summary, err := f.expenses.GetMonthlySummary(f.group.ID, f.alice.ID, "2001-01")
	if err != nil {
		t.Fatalf("GetMonthlySummary() error = %v", err)
	}
	if !summary.TotalSpent.IsZero() {
		t.Errorf("TotalSpent = %s, want 0", summary.TotalSpent)
	}
	if len(summary.Contributions) != 0 {
		t.Errorf("got %d contributions, want none", len(summary.Contributions))
	}
}

func TestGetMonthlySummaryBadMonth(t *testing.T) {
	f := newExpenseFixture(t)

	for _, month := range []string{"", "march", "2026-3", "2026-14"} {
		if _, err := f.expenses.GetMonthlySummary(f.group.ID, f.alice.ID, month); !errors.Is(err, ErrBadRequest) {
			t.Errorf("GetMonthlySummary(%q) = %v, want ErrBadRequest", month, err)
		}
	}
}
