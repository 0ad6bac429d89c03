package http

import (
	"net/http"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

// summaryDisplay holds the summary figures formatted for the UI.
type summaryDisplay struct {
	PendingIncome   string `json:"pendingIncome"`
	ConfirmedIncome string `json:"confirmedIncome"`
	Expenses        string `json:"expenses"`
	Balance         string `json:"balance"`
}

type summaryResponse struct {
	ledger.Summary
	Display summaryDisplay `json:"display"`
}

type monthlyResponse struct {
	Monthly          []ledger.MonthTotals `json:"monthly"`
	InsufficientData bool                 `json:"insufficientData"`
}

type breakdownResponse struct {
	IncomeByCategory   ledger.Breakdown `json:"incomeByCategory"`
	ExpensesByCategory ledger.Breakdown `json:"expensesByCategory"`
}

type ledgerResponse struct {
	Summary summaryResponse `json:"summary"`
	monthlyResponse
	breakdownResponse
	PendingIncomes   []incomeJSON  `json:"pendingIncomes"`
	ConfirmedIncomes []incomeJSON  `json:"confirmedIncomes"`
	Expenses         []expenseJSON `json:"expenses"`
}

type categoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

func (s *Server) summaryOf(v ledger.View) summaryResponse {
	sum := v.Summary
	return summaryResponse{
		Summary: sum,
		Display: summaryDisplay{
			PendingIncome:   sum.TotalPendingIncome.FormatGrouped(s.currency, s.grouping),
			ConfirmedIncome: sum.TotalConfirmedIncome.FormatGrouped(s.currency, s.grouping),
			Expenses:        sum.TotalExpenses.FormatGrouped(s.currency, s.grouping),
			Balance:         sum.Balance.FormatGrouped(s.currency, s.grouping),
		},
	}
}

// An empty series tells the client there is nothing to chart yet.
func monthlyOf(v ledger.View) monthlyResponse {
	monthly := v.Monthly
	if monthly == nil {
		monthly = []ledger.MonthTotals{}
	}
	return monthlyResponse{Monthly: monthly, InsufficientData: len(monthly) == 0}
}

func breakdownOf(v ledger.View) breakdownResponse {
	inc, exp := v.IncomeByCategory, v.ExpensesByCategory
	if inc == nil {
		inc = ledger.Breakdown{}
	}
	if exp == nil {
		exp = ledger.Breakdown{}
	}
	return breakdownResponse{IncomeByCategory: inc, ExpensesByCategory: exp}
}

// view loads the caller's view, writing the error response on failure.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (ledger.View, bool) {
	userID, _ := UserID(r.Context())
	v, err := s.ledger.View(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, log.OpCompute)
		return ledger.View{}, false
	}
	return v, true
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ledgerResponse{
		Summary:           s.summaryOf(v),
		monthlyResponse:   monthlyOf(v),
		breakdownResponse: breakdownOf(v),
		PendingIncomes:    incomesJSON(v.Pending),
		ConfirmedIncomes:  incomesJSON(v.Confirmed),
		Expenses:          expensesJSON(v.Expenses),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if v, ok := s.view(w, r); ok {
		writeJSON(w, http.StatusOK, s.summaryOf(v))
	}
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if v, ok := s.view(w, r); ok {
		writeJSON(w, http.StatusOK, monthlyOf(v))
	}
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if v, ok := s.view(w, r); ok {
		writeJSON(w, http.StatusOK, breakdownOf(v))
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{
		Income:  core.IncomeCategories(),
		Expense: core.ExpenseCategories(),
	})
}
