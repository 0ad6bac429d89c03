package ledger

import (
	"fmt"
	"sort"

	"saldo/internal/core"
)

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string     `json:"name"`
	Total    core.Money `json:"value"`
}

// Breakdown lists category totals in order of each category's first
// appearance in the input.
type Breakdown []CategoryTotal

// IncomeByCategory sums incomes per category. "Other" and "" are ordinary keys.
func IncomeByCategory(incomes []core.Income) (Breakdown, error) {
	return breakdown(len(incomes), func(i int) (string, core.Money) {
		return incomes[i].Category, incomes[i].Amount
	})
}

// ExpensesByCategory sums expenses per category.
func ExpensesByCategory(expenses []core.Expense) (Breakdown, error) {
	return breakdown(len(expenses), func(i int) (string, core.Money) {
		return expenses[i].Category, expenses[i].Amount
	})
}

// CategoryBreakdown returns both breakdowns at once.
func CategoryBreakdown(incomes []core.Income, expenses []core.Expense) (Breakdown, Breakdown, error) {
	inc, err := IncomeByCategory(incomes)
	if err != nil {
		return nil, nil, fmt.Errorf("income: %w", err)
	}
	exp, err := ExpensesByCategory(expenses)
	if err != nil {
		return nil, nil, fmt.Errorf("expenses: %w", err)
	}
	return inc, exp, nil
}

func breakdown(n int, at func(int) (string, core.Money)) (Breakdown, error) {
	out := make(Breakdown, 0)
	index := make(map[string]int)
	for i := 0; i < n; i++ {
		cat, amount := at(i)
		pos, ok := index[cat]
		if !ok {
			index[cat] = len(out)
			out = append(out, CategoryTotal{Category: cat, Total: amount})
			continue
		}
		sum, err := out[pos].Total.Add(amount)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cat, err)
		}
		out[pos].Total = sum
	}
	return out, nil
}

// Get returns the total for a category.
func (b Breakdown) Get(category string) (core.Money, bool) {
	for _, ct := range b {
		if ct.Category == category {
			return ct.Total, true
		}
	}
	return core.Money{}, false
}

func (b Breakdown) Map() map[string]core.Money {
	m := make(map[string]core.Money, len(b))
	for _, ct := range b {
		m[ct.Category] = ct.Total
	}
	return m
}

// Sorted returns a copy ordered by category name.
func (b Breakdown) Sorted() Breakdown {
	out := append(make(Breakdown, 0, len(b)), b...)
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
