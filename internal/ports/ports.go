// Package ports declares the outbound interfaces the ledger service depends on.
package ports

import (
	"context"
	"time"

	"saldo/internal/core"
)

type (
	// IncomeRepository stores a user's incomes. Every method is scoped by
	// user id; a record owned by someone else is reported as core.ErrNotFound.
	IncomeRepository interface {
		ListIncomes(ctx context.Context, userID string) ([]core.Income, error)
		CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error)
		UpdateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error)
		// ToggleIncomePending flips the pending flag in one step and returns
		// the updated income.
		ToggleIncomePending(ctx context.Context, userID, id string) (core.Income, error)
		DeleteIncome(ctx context.Context, userID, id string) error
	}

	ExpenseRepository interface {
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
		CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	Repository interface {
		IncomeRepository
		ExpenseRepository
		Close() error
	}

	// ChangePublisher announces that a user's ledger changed.
	ChangePublisher interface {
		PublishLedgerChange(ctx context.Context, change LedgerChange) error
	}
)

// Change operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpToggle = "toggle"
	OpDelete = "delete"
)

// LedgerChange describes a single mutation of a user's ledger.
type LedgerChange struct {
	UserID   string
	Kind     core.Kind
	RecordID string
	Op       string
	At       time.Time
}

// NopPublisher discards every change.
type NopPublisher struct{}

func (NopPublisher) PublishLedgerChange(context.Context, LedgerChange) error { return nil }
