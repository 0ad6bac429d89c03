// Package storagetest holds behaviour checks shared by every repository
// implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"saldo/internal/core"
	"saldo/internal/ports"
)

func income(cents int64, day int, category string, pending bool) core.Income {
	return core.Income{
		Transaction: core.Transaction{Amount: core.Cents(cents), Date: core.NewDate(2024, 1, day), Note: "n"},
		Category:    category,
		Pending:     pending,
	}
}

func expense(cents int64, day int, category string) core.Expense {
	return core.Expense{
		Transaction: core.Transaction{Amount: core.Cents(cents), Date: core.NewDate(2024, 1, day)},
		Category:    category,
	}
}

// Run exercises repo against the Repository contract. newRepo must return an
// empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) ports.Repository) {
	t.Run("empty user lists are empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		in, err := repo.ListIncomes(ctx, "nobody")
		if err != nil || in == nil || len(in) != 0 {
			t.Fatalf("ListIncomes = %v, %v; want empty non-nil", in, err)
		}
		ex, err := repo.ListExpenses(ctx, "nobody")
		if err != nil || ex == nil || len(ex) != 0 {
			t.Fatalf("ListExpenses = %v, %v; want empty non-nil", ex, err)
		}
	})

	t.Run("income lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.CreateIncome(ctx, "u1", income(100000, 5, "Salary", false))
		if err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}
		if a.ID == "" {
			t.Fatal("expected generated id")
		}
		b, err := repo.CreateIncome(ctx, "u1", income(50000, 10, "Gifts", true))
		if err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}

		list, err := repo.ListIncomes(ctx, "u1")
		if err != nil {
			t.Fatalf("ListIncomes: %v", err)
		}
		if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
			t.Fatalf("unexpected list order: %+v", list)
		}
		if !list[1].Pending || list[1].Amount.Cents != 50000 || !list[1].Date.Equal(core.NewDate(2024, 1, 10)) {
			t.Fatalf("round trip mismatch: %+v", list[1])
		}

		toggled, err := repo.ToggleIncomePending(ctx, "u1", b.ID)
		if err != nil {
			t.Fatalf("ToggleIncomePending: %v", err)
		}
		if toggled.Pending {
			t.Fatal("expected pending to flip to false")
		}
		toggled, err = repo.ToggleIncomePending(ctx, "u1", b.ID)
		if err != nil || !toggled.Pending {
			t.Fatalf("second toggle = %+v, %v", toggled, err)
		}

		a.Amount = core.Cents(120000)
		a.Category = "Freelance"
		if _, err := repo.UpdateIncome(ctx, "u1", a); err != nil {
			t.Fatalf("UpdateIncome: %v", err)
		}
		list, _ = repo.ListIncomes(ctx, "u1")
		if list[0].Amount.Cents != 120000 || list[0].Category != "Freelance" {
			t.Fatalf("update not persisted: %+v", list[0])
		}

		if err := repo.DeleteIncome(ctx, "u1", a.ID); err != nil {
			t.Fatalf("DeleteIncome: %v", err)
		}
		list, _ = repo.ListIncomes(ctx, "u1")
		if len(list) != 1 || list[0].ID != b.ID {
			t.Fatalf("unexpected list after delete: %+v", list)
		}
	})

	t.Run("expense lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		e, err := repo.CreateExpense(ctx, "u1", expense(30000, 15, "Rent"))
		if err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
		e.Note = "january"
		if _, err := repo.UpdateExpense(ctx, "u1", e); err != nil {
			t.Fatalf("UpdateExpense: %v", err)
		}
		list, err := repo.ListExpenses(ctx, "u1")
		if err != nil || len(list) != 1 || list[0].Note != "january" || list[0].Category != "Rent" {
			t.Fatalf("ListExpenses = %+v, %v", list, err)
		}
		if err := repo.DeleteExpense(ctx, "u1", e.ID); err != nil {
			t.Fatalf("DeleteExpense: %v", err)
		}
		list, _ = repo.ListExpenses(ctx, "u1")
		if len(list) != 0 {
			t.Fatalf("expected empty after delete, got %+v", list)
		}
	})

	t.Run("offset dates are stored in UTC", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		when := time.Date(2024, 1, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))

		in := income(1000, 1, "Salary", false)
		in.Date = when
		created, err := repo.CreateIncome(ctx, "u1", in)
		if err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}
		ex := expense(500, 1, "Rent")
		ex.Date = when
		if _, err := repo.CreateExpense(ctx, "u1", ex); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}

		incomes, _ := repo.ListIncomes(ctx, "u1")
		expenses, _ := repo.ListExpenses(ctx, "u1")
		if len(incomes) != 1 || len(expenses) != 1 {
			t.Fatalf("lists = %d incomes, %d expenses", len(incomes), len(expenses))
		}
		for _, got := range []time.Time{created.Date, incomes[0].Date, expenses[0].Date} {
			if !got.Equal(when) || got.Location() != time.UTC {
				t.Errorf("date = %v, want %v in UTC", got, when.UTC())
			}
			if month := got.Format("2006-01"); month != "2024-02" {
				t.Errorf("month = %s, want 2024-02", month)
			}
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in, err := repo.CreateIncome(ctx, "alice", income(1000, 1, "Salary", false))
		if err != nil {
			t.Fatalf("CreateIncome: %v", err)
		}
		ex, err := repo.CreateExpense(ctx, "alice", expense(500, 2, "Groceries"))
		if err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}

		list, _ := repo.ListIncomes(ctx, "bob")
		if len(list) != 0 {
			t.Fatalf("bob sees alice's incomes: %+v", list)
		}
		if _, err := repo.ToggleIncomePending(ctx, "bob", in.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("toggle across users: got %v, want ErrNotFound", err)
		}
		if err := repo.DeleteIncome(ctx, "bob", in.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete income across users: got %v, want ErrNotFound", err)
		}
		if _, err := repo.UpdateExpense(ctx, "bob", ex); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("update expense across users: got %v, want ErrNotFound", err)
		}
		if err := repo.DeleteExpense(ctx, "bob", ex.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete expense across users: got %v, want ErrNotFound", err)
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if _, err := repo.ToggleIncomePending(ctx, "u1", "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("toggle: got %v", err)
		}
		missing := income(100, 1, "Salary", false)
		missing.ID = "missing"
		if _, err := repo.UpdateIncome(ctx, "u1", missing); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("update: got %v", err)
		}
		if err := repo.DeleteExpense(ctx, "u1", "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete: got %v", err)
		}
	})

	t.Run("invalid records are rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if _, err := repo.CreateIncome(ctx, "u1", income(0, 1, "Salary", false)); !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("zero amount: got %v", err)
		}
		if _, err := repo.CreateExpense(ctx, "u1", expense(100, 1, "Salary")); !errors.Is(err, core.ErrInvalidCategory) {
			t.Fatalf("income category on expense: got %v", err)
		}
	})
}
