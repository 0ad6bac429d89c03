package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/ports"
)

var ErrMissingUser = errors.New("missing user id")

// LedgerService orchestrates reads and writes of a user's ledger across the
// repository, the view cache and the change publisher.
type LedgerService struct {
	repo      ports.Repository
	publisher ports.ChangePublisher
	views     *cache.Versioned[ledger.View]
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*LedgerService)

// WithViewCache caches computed views per user. Every mutation invalidates
// the user's entry.
func WithViewCache(views *cache.Versioned[ledger.View]) Option {
	return func(s *LedgerService) { s.views = views }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *LedgerService) { s.logger = logger }
}

func NewLedgerService(repo ports.Repository, publisher ports.ChangePublisher, opts ...Option) *LedgerService {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	s := &LedgerService{
		repo:      repo,
		publisher: publisher,
		logger:    log.New(log.DefaultConfig()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

// LoadSnapshot reads both collections concurrently. If either read fails no
// snapshot is returned.
func (s *LedgerService) LoadSnapshot(ctx context.Context, userID string) (ledger.Snapshot, error) {
	if userID == "" {
		return ledger.Snapshot{}, ErrMissingUser
	}

	var snap ledger.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		incomes, err := s.repo.ListIncomes(gctx, userID)
		if err != nil {
			return fmt.Errorf("load incomes: %w", err)
		}
		snap.Incomes = incomes
		snap.IncomesLoaded = true
		return nil
	})
	g.Go(func() error {
		expenses, err := s.repo.ListExpenses(gctx, userID)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		snap.Expenses = expenses
		snap.ExpensesLoaded = true
		return nil
	})
	if err := g.Wait(); err != nil {
		return ledger.Snapshot{}, err
	}
	return snap, nil
}

// View returns the user's current view, from cache when possible.
func (s *LedgerService) View(ctx context.Context, userID string) (ledger.View, error) {
	if userID == "" {
		return ledger.View{}, ErrMissingUser
	}
	if s.views != nil {
		if v, ok := s.views.Get(userID); ok {
			return v, nil
		}
	}
	return s.Recompute(ctx, userID)
}

// Recompute always rebuilds the view from a fresh snapshot and refreshes
// the cache entry.
func (s *LedgerService) Recompute(ctx context.Context, userID string) (ledger.View, error) {
	var gen uint64
	if s.views != nil {
		gen = s.views.Generation(userID)
	}

	snap, err := s.LoadSnapshot(ctx, userID)
	if err != nil {
		return ledger.View{}, err
	}
	view, err := snap.Compute()
	if err != nil {
		s.logger.ErrorContext(ctx, "Ledger computation failed", log.NewFields().
			WithUser(userID).
			WithOperation(log.OpCompute).
			WithError(err).ToSlice()...)
		return ledger.View{}, err
	}

	if s.views != nil {
		s.views.StoreIf(userID, gen, view)
	}

	sum := view.Summary
	s.logger.DebugContext(ctx, "Ledger view computed", log.NewFields().
		WithUser(userID).
		WithOperation(log.OpCompute).
		WithSummary(sum.TotalPendingIncome, sum.TotalConfirmedIncome, sum.TotalExpenses, sum.Balance).
		ToSlice()...)
	return view, nil
}

func (s *LedgerService) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.repo.ListIncomes(ctx, userID)
}

func (s *LedgerService) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.repo.ListExpenses(ctx, userID)
}

func (s *LedgerService) CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	if userID == "" {
		return core.Income{}, ErrMissingUser
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	created, err := s.repo.CreateIncome(ctx, userID, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	s.changed(ctx, userID, ports.OpCreate, created.Record())
	return created, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	if userID == "" {
		return core.Income{}, ErrMissingUser
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	updated, err := s.repo.UpdateIncome(ctx, userID, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	s.changed(ctx, userID, ports.OpUpdate, updated.Record())
	return updated, nil
}

// ToggleIncomePending flips one income between pending and confirmed.
func (s *LedgerService) ToggleIncomePending(ctx context.Context, userID, id string) (core.Income, error) {
	if userID == "" {
		return core.Income{}, ErrMissingUser
	}
	toggled, err := s.repo.ToggleIncomePending(ctx, userID, id)
	if err != nil {
		return core.Income{}, fmt.Errorf("toggle income: %w", err)
	}
	s.changed(ctx, userID, ports.OpToggle, toggled.Record())
	return toggled, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := s.repo.DeleteIncome(ctx, userID, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.changed(ctx, userID, ports.OpDelete, core.Record{Kind: core.KindIncome, ID: id})
	return nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, ErrMissingUser
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	created, err := s.repo.CreateExpense(ctx, userID, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.changed(ctx, userID, ports.OpCreate, created.Record())
	return created, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, ErrMissingUser
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.repo.UpdateExpense(ctx, userID, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.changed(ctx, userID, ports.OpUpdate, updated.Record())
	return updated, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := s.repo.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.changed(ctx, userID, ports.OpDelete, core.Record{Kind: core.KindExpense, ID: id})
	return nil
}

// Invalidate drops the cached view for userID.
func (s *LedgerService) Invalidate(userID string) {
	if s.views != nil {
		s.views.Invalidate(userID)
	}
}

// changed runs after a successful write: the cached view goes first, then
// the change is announced. A publish failure never fails the write.
func (s *LedgerService) changed(ctx context.Context, userID, op string, rec core.Record) {
	s.Invalidate(userID)

	fields := log.NewFields().WithUser(userID).WithOperation(op).WithRecord(rec)
	s.logger.InfoContext(ctx, "Ledger record changed", fields.ToSlice()...)

	change := ports.LedgerChange{
		UserID:   userID,
		Kind:     rec.Kind,
		RecordID: rec.ID,
		Op:       op,
		At:       s.now(),
	}
	if err := s.publisher.PublishLedgerChange(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			fields.WithOperation(log.OpPublish).WithError(err).ToSlice()...)
	}
}

// Close releases the repository.
func (s *LedgerService) Close() error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
