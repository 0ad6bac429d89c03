package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/ports"
	"saldo/internal/storage/memory"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []ports.LedgerChange
	err     error
}

func (p *recordingPublisher) PublishLedgerChange(_ context.Context, c ports.LedgerChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return p.err
}

// failingRepo fails expense reads, to prove no partial snapshot escapes.
type failingRepo struct {
	*memory.Store
	listExpensesErr error
	listCalls       int
	mu              sync.Mutex
}

func (r *failingRepo) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	r.mu.Lock()
	r.listCalls++
	r.mu.Unlock()
	if r.listExpensesErr != nil {
		return nil, r.listExpensesErr
	}
	return r.Store.ListExpenses(ctx, userID)
}

func newService(t *testing.T, repo ports.Repository, pub ports.ChangePublisher, opts ...Option) *LedgerService {
	t.Helper()
	opts = append([]Option{WithLogger(log.Discard())}, opts...)
	return NewLedgerService(repo, pub, opts...)
}

func income(cents int64, y, m, d int, category string, pending bool) core.Income {
	return core.Income{
		Transaction: core.Transaction{Amount: core.Cents(cents), Date: core.NewDate(y, m, d)},
		Category:    category,
		Pending:     pending,
	}
}

func expense(cents int64, y, m, d int, category string) core.Expense {
	return core.Expense{
		Transaction: core.Transaction{Amount: core.Cents(cents), Date: core.NewDate(y, m, d)},
		Category:    category,
	}
}

func seedScenario(t *testing.T, s *LedgerService, user string) (salary, gifts core.Income) {
	t.Helper()
	ctx := context.Background()
	var err error
	if salary, err = s.CreateIncome(ctx, user, income(100000, 2024, 1, 5, "Salary", false)); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if gifts, err = s.CreateIncome(ctx, user, income(50000, 2024, 1, 10, "Gifts", true)); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if _, err = s.CreateExpense(ctx, user, expense(30000, 2024, 1, 15, "Rent")); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	return salary, gifts
}

func TestLedgerService_ViewScenario(t *testing.T) {
	s := newService(t, memory.New(), nil)
	seedScenario(t, s, "u1")

	view, err := s.View(context.Background(), "u1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	want := ledger.Summary{
		TotalPendingIncome:   core.Cents(50000),
		TotalConfirmedIncome: core.Cents(100000),
		TotalExpenses:        core.Cents(30000),
		Balance:              core.Cents(70000),
	}
	if view.Summary != want {
		t.Fatalf("summary = %+v, want %+v", view.Summary, want)
	}
	if len(view.Monthly) != 1 || view.Monthly[0].Income.Cents != 100000 || view.Monthly[0].Expenses.Cents != 30000 {
		t.Fatalf("monthly = %+v", view.Monthly)
	}
	gifts, _ := view.IncomeByCategory.Get("Gifts")
	rent, _ := view.ExpensesByCategory.Get("Rent")
	if gifts.Cents != 50000 || rent.Cents != 30000 {
		t.Fatalf("breakdowns = %+v / %+v", view.IncomeByCategory, view.ExpensesByCategory)
	}
}

func TestLedgerService_TogglePublishesAndInvalidates(t *testing.T) {
	pub := &recordingPublisher{}
	views := cache.NewVersioned[ledger.View](10, time.Hour)
	s := newService(t, memory.New(), pub, WithViewCache(views))
	_, gifts := seedScenario(t, s, "u1")
	ctx := context.Background()

	before, err := s.View(ctx, "u1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if _, ok := views.Get("u1"); !ok {
		t.Fatal("expected view to be cached")
	}

	if _, err := s.ToggleIncomePending(ctx, "u1", gifts.ID); err != nil {
		t.Fatalf("ToggleIncomePending: %v", err)
	}
	if _, ok := views.Get("u1"); ok {
		t.Fatal("toggle must invalidate the cached view")
	}

	after, err := s.View(ctx, "u1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if after.Summary.TotalPendingIncome.Cents != before.Summary.TotalPendingIncome.Cents-50000 ||
		after.Summary.TotalConfirmedIncome.Cents != before.Summary.TotalConfirmedIncome.Cents+50000 ||
		after.Summary.Balance.Cents != before.Summary.Balance.Cents+50000 ||
		after.Summary.TotalExpenses != before.Summary.TotalExpenses {
		t.Fatalf("toggle moved the wrong amounts: before %+v after %+v", before.Summary, after.Summary)
	}

	last := pub.changes[len(pub.changes)-1]
	if last.Op != ports.OpToggle || last.RecordID != gifts.ID || last.Kind != core.KindIncome || last.UserID != "u1" {
		t.Fatalf("unexpected change: %+v", last)
	}
	if len(pub.changes) != 4 {
		t.Fatalf("expected 4 published changes, got %d", len(pub.changes))
	}
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	repo := memory.New()
	s := newService(t, repo, pub)

	created, err := s.CreateExpense(context.Background(), "u1", expense(1000, 2024, 2, 1, "Transport"))
	if err != nil {
		t.Fatalf("CreateExpense should succeed when publishing fails: %v", err)
	}
	list, _ := repo.ListExpenses(context.Background(), "u1")
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("expense not persisted: %+v", list)
	}
}

func TestLedgerService_FailedLoadYieldsNoView(t *testing.T) {
	repo := &failingRepo{Store: memory.New(), listExpensesErr: errors.New("expenses unavailable")}
	views := cache.NewVersioned[ledger.View](10, time.Hour)
	s := newService(t, repo, nil, WithViewCache(views))
	if _, err := s.CreateIncome(context.Background(), "u1", income(100, 2024, 1, 1, "Salary", false)); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	if _, err := s.View(context.Background(), "u1"); err == nil {
		t.Fatal("expected error when expenses cannot be loaded")
	}
	if _, err := s.LoadSnapshot(context.Background(), "u1"); err == nil {
		t.Fatal("expected LoadSnapshot error")
	}
	if views.Size() != 0 {
		t.Fatal("nothing must be cached after a failed load")
	}
}

func TestLedgerService_CachedViewIsServed(t *testing.T) {
	repo := &failingRepo{Store: memory.New()}
	views := cache.NewVersioned[ledger.View](10, time.Hour)
	s := newService(t, repo, nil, WithViewCache(views))
	ctx := context.Background()

	if _, err := s.View(ctx, "u1"); err != nil {
		t.Fatalf("View: %v", err)
	}
	if _, err := s.View(ctx, "u1"); err != nil {
		t.Fatalf("View: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one load, got %d", repo.listCalls)
	}

	if _, err := s.Recompute(ctx, "u1"); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("Recompute must always reload, got %d loads", repo.listCalls)
	}
}

func TestLedgerService_Validation(t *testing.T) {
	pub := &recordingPublisher{}
	s := newService(t, memory.New(), pub)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"missing user", func() error { _, err := s.View(ctx, ""); return err }, ErrMissingUser},
		{"missing user on write", func() error {
			_, err := s.CreateIncome(ctx, "", income(100, 2024, 1, 1, "Salary", false))
			return err
		}, ErrMissingUser},
		{"zero amount", func() error {
			_, err := s.CreateIncome(ctx, "u1", income(0, 2024, 1, 1, "Salary", false))
			return err
		}, core.ErrInvalidAmount},
		{"missing date", func() error {
			_, err := s.CreateExpense(ctx, "u1", core.Expense{Transaction: core.Transaction{Amount: core.Cents(1)}, Category: "Rent"})
			return err
		}, core.ErrMissingDate},
		{"wrong category", func() error {
			_, err := s.CreateExpense(ctx, "u1", expense(100, 2024, 1, 1, "Salary"))
			return err
		}, core.ErrInvalidCategory},
		{"unknown toggle", func() error { _, err := s.ToggleIncomePending(ctx, "u1", "nope"); return err }, core.ErrNotFound},
		{"unknown delete", func() error { return s.DeleteExpense(ctx, "u1", "nope") }, core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
	if len(pub.changes) != 0 {
		t.Fatalf("failed writes must not publish, got %+v", pub.changes)
	}
}

func TestLedgerService_UpdateAndDelete(t *testing.T) {
	pub := &recordingPublisher{}
	s := newService(t, memory.New(), pub)
	salary, _ := seedScenario(t, s, "u1")
	ctx := context.Background()

	salary.Amount = core.Cents(200000)
	if _, err := s.UpdateIncome(ctx, "u1", salary); err != nil {
		t.Fatalf("UpdateIncome: %v", err)
	}
	view, _ := s.View(ctx, "u1")
	if view.Summary.Balance.Cents != 170000 {
		t.Fatalf("balance after update = %v", view.Summary.Balance)
	}

	if err := s.DeleteIncome(ctx, "u1", salary.ID); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	view, _ = s.View(ctx, "u1")
	if view.Summary.TotalConfirmedIncome.Cents != 0 || view.Summary.Balance.Cents != -30000 {
		t.Fatalf("summary after delete = %+v", view.Summary)
	}
	if len(view.Monthly) != 1 || view.Monthly[0].Income.Cents != 0 {
		t.Fatalf("monthly after delete = %+v", view.Monthly)
	}

	last := pub.changes[len(pub.changes)-1]
	if last.Op != ports.OpDelete || last.RecordID != salary.ID {
		t.Fatalf("unexpected last change: %+v", last)
	}
}

func TestLedgerService_UsersAreIsolated(t *testing.T) {
	s := newService(t, memory.New(), nil)
	seedScenario(t, s, "alice")

	view, err := s.View(context.Background(), "bob")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Summary != (ledger.Summary{}) || len(view.Monthly) != 0 || len(view.IncomeByCategory) != 0 {
		t.Fatalf("bob should see an empty ledger, got %+v", view)
	}
}
