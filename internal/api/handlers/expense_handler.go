package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/roomshare/roomshare-be/internal/auth"
	"github.com/roomshare/roomshare-be/internal/models"
	"github.com/roomshare/roomshare-be/internal/services"
)

// maxProofSize caps proof-of-payment uploads at 10 MiB.
const maxProofSize = 10 << 20

// ExpenseHandler handles HTTP requests for expenses, balances and
// monthly summaries.
type ExpenseHandler struct {
	expenses services.ExpenseServiceProvider
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenses services.ExpenseServiceProvider) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// ExpensePayload defines the structure for new expenses. Amount is a
// decimal string so no precision is lost in transit.
type ExpensePayload struct {
	GroupID  string          `json:"groupId"`
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Add records an expense for a group, splitting it equally among the
// current members. Accepts plain JSON, or multipart/form-data with an
// "expense" JSON part and an optional "proofFile" attachment.
func (h *ExpenseHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}

	var payload ExpensePayload
	var proof io.Reader
	proofName := ""

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxProofSize); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid multipart body", services.ErrBadRequest))
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("expense")), &payload); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid expense payload", services.ErrBadRequest))
			return
		}
		file, header, err := r.FormFile("proofFile")
		if err == nil {
			defer file.Close()
			proof = file
			proofName = header.Filename
		} else if err != http.ErrMissingFile {
			writeError(w, r, fmt.Errorf("%w: could not read proof file", services.ErrBadRequest))
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
			return
		}
	}

	if payload.GroupID == "" || payload.Title == "" {
		writeError(w, r, fmt.Errorf("%w: groupId and title are required", services.ErrBadRequest))
		return
	}

	expense, err := h.expenses.AddExpense(payload.GroupID, claims.UserID, payload.Title, payload.Category, payload.Amount, proofName, proof)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

// Proof streams the stored proof-of-payment file for an expense.
// Members of the expense's group only.
func (h *ExpenseHandler) Proof(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	expenseID := chi.URLParam(r, "expenseId")

	proof, err := h.expenses.GetExpenseProof(expenseID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer proof.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, proof)
}

// ByGroup lists a group's expenses, newest first. Members only.
func (h *ExpenseHandler) ByGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")

	expenses, err := h.expenses.GetExpensesByGroup(groupID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []models.ExpenseInfo{}
	}

	writeJSON(w, http.StatusOK, expenses)
}

// Balances returns each member's net position over the group's full
// history. Members only.
func (h *ExpenseHandler) Balances(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")

	balances, err := h.expenses.GetGroupBalances(groupID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balances)
}

// MonthlySummary aggregates one calendar month of spending, selected
// with ?month=YYYY-MM. Members only.
func (h *ExpenseHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthenticated)
		return
	}
	groupID := chi.URLParam(r, "groupId")
	month := r.URL.Query().Get("month")

	summary, err := h.expenses.GetMonthlySummary(groupID, claims.UserID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
