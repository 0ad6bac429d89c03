// Package ledger derives balances and analytics from a user's income and
// expense records.
//
// Every function is a pure projection: inputs are never mutated, nothing is
// cached between calls, and Compute rebuilds the whole View from scratch.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"saldo/internal/core"
)

var (
	ErrMalformedRecord  = errors.New("malformed record")
	ErrAmountOverflow   = core.ErrAmountOverflow
	ErrSnapshotNotReady = errors.New("snapshot not fully loaded")
)

const (
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan 2006"
)

// Summary holds the headline figures. Balance never includes pending income.
type Summary struct {
	TotalPendingIncome   core.Money `json:"totalPendingIncome"`
	TotalConfirmedIncome core.Money `json:"totalConfirmedIncome"`
	TotalExpenses        core.Money `json:"totalExpenses"`
	Balance              core.Money `json:"balance"`
}

// MonthTotals is one entry of the monthly series.
type MonthTotals struct {
	Key      string     `json:"key"`   // "2024-01"
	Label    string     `json:"month"` // "Jan 2024"
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
}

type View struct {
	Pending            []core.Income  `json:"-"`
	Confirmed          []core.Income  `json:"-"`
	Expenses           []core.Expense `json:"-"`
	Summary            Summary        `json:"summary"`
	Monthly            []MonthTotals  `json:"monthly"`
	IncomeByCategory   Breakdown      `json:"incomeByCategory"`
	ExpensesByCategory Breakdown      `json:"expensesByCategory"`
}

// Partition splits incomes into pending and confirmed, keeping input order
// within each part.
func Partition(incomes []core.Income) (pending, confirmed []core.Income) {
	pending = make([]core.Income, 0)
	confirmed = make([]core.Income, 0, len(incomes))
	for _, inc := range incomes {
		if inc.Pending {
			pending = append(pending, inc)
		} else {
			confirmed = append(confirmed, inc)
		}
	}
	return pending, confirmed
}

// Summarize totals the three collections. Amounts are summed as given,
// including non-positive ones.
func Summarize(pending, confirmed []core.Income, expenses []core.Expense) (Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.TotalPendingIncome, err = sumIncomes(pending); err != nil {
		return Summary{}, fmt.Errorf("pending income: %w", err)
	}
	if s.TotalConfirmedIncome, err = sumIncomes(confirmed); err != nil {
		return Summary{}, fmt.Errorf("confirmed income: %w", err)
	}
	for _, e := range expenses {
		if s.TotalExpenses, err = s.TotalExpenses.Add(e.Amount); err != nil {
			return Summary{}, fmt.Errorf("expenses: %w", err)
		}
	}
	if s.Balance, err = s.TotalConfirmedIncome.Sub(s.TotalExpenses); err != nil {
		return Summary{}, fmt.Errorf("balance: %w", err)
	}
	return s, nil
}

func sumIncomes(incomes []core.Income) (core.Money, error) {
	var (
		total core.Money
		err   error
	)
	for _, inc := range incomes {
		if total, err = total.Add(inc.Amount); err != nil {
			return core.Money{}, err
		}
	}
	return total, nil
}

// MonthlySeries groups records by UTC calendar month and returns the totals in
// chronological order. Income records add to Income whatever their pending
// state; callers choose which incomes to pass.
func MonthlySeries(records []core.Record) ([]MonthTotals, error) {
	byKey := make(map[string]*MonthTotals)
	for _, r := range records {
		if r.Date.IsZero() {
			return nil, fmt.Errorf("%w: %s %q has no date", ErrMalformedRecord, r.Kind, r.ID)
		}
		day := r.Date.UTC()
		key := day.Format(monthKeyLayout)
		m, ok := byKey[key]
		if !ok {
			m = &MonthTotals{Key: key, Label: day.Format(monthLabelLayout)}
			byKey[key] = m
		}
		var err error
		switch r.Kind {
		case core.KindIncome:
			m.Income, err = m.Income.Add(r.Amount)
		case core.KindExpense:
			m.Expenses, err = m.Expenses.Add(r.Amount)
		default:
			return nil, fmt.Errorf("%w: record %q has unknown kind %s", ErrMalformedRecord, r.ID, r.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("month %s: %w", key, err)
		}
	}

	out := make([]MonthTotals, 0, len(byKey))
	for _, m := range byKey {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Compute builds the full view for one snapshot of a user's records.
//
// The monthly series counts confirmed income only, matching Balance. The
// income category breakdown counts every income, pending included.
func Compute(incomes []core.Income, expenses []core.Expense) (View, error) {
	pending, confirmed := Partition(incomes)

	summary, err := Summarize(pending, confirmed, expenses)
	if err != nil {
		return View{}, fmt.Errorf("summary: %w", err)
	}

	records := make([]core.Record, 0, len(confirmed)+len(expenses))
	for _, inc := range confirmed {
		records = append(records, inc.Record())
	}
	for _, e := range expenses {
		records = append(records, e.Record())
	}
	monthly, err := MonthlySeries(records)
	if err != nil {
		return View{}, fmt.Errorf("monthly series: %w", err)
	}

	incomeBreakdown, expenseBreakdown, err := CategoryBreakdown(incomes, expenses)
	if err != nil {
		return View{}, fmt.Errorf("category breakdown: %w", err)
	}

	return View{
		Pending:            pending,
		Confirmed:          confirmed,
		Expenses:           append(make([]core.Expense, 0, len(expenses)), expenses...),
		Summary:            summary,
		Monthly:            monthly,
		IncomeByCategory:   incomeBreakdown,
		ExpensesByCategory: expenseBreakdown,
	}, nil
}

// Snapshot is one delivery of both collections from the upstream store.
// A collection that has not finished loading must not be aggregated.
type Snapshot struct {
	Incomes        []core.Income
	Expenses       []core.Expense
	IncomesLoaded  bool
	ExpensesLoaded bool
}

func (s Snapshot) Ready() bool {
	return s.IncomesLoaded && s.ExpensesLoaded
}

func (s Snapshot) Compute() (View, error) {
	if !s.Ready() {
		return View{}, ErrSnapshotNotReady
	}
	return Compute(s.Incomes, s.Expenses)
}
