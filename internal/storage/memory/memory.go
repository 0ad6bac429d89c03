// Package memory is an in-process ledger store, used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"saldo/internal/core"
)

type userBook struct {
	incomes  []core.Income
	expenses []core.Expense
}

type Store struct {
	mu    sync.Mutex
	books map[string]*userBook
}

func New() *Store {
	return &Store{books: make(map[string]*userBook)}
}

// book returns the user's book, creating it on first write. Caller holds mu.
func (s *Store) book(userID string, create bool) *userBook {
	b, ok := s.books[userID]
	if !ok && create {
		b = &userBook{}
		s.books[userID] = b
	}
	return b
}

func (s *Store) ListIncomes(_ context.Context, userID string) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return []core.Income{}, nil
	}
	return append([]core.Income{}, b.incomes...), nil
}

func (s *Store) CreateIncome(_ context.Context, userID string, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	in.Date = in.Date.UTC()
	in.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, true)
	b.incomes = append(b.incomes, in)
	return in, nil
}

func (s *Store) UpdateIncome(_ context.Context, userID string, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	in.Date = in.Date.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return core.Income{}, core.ErrNotFound
	}
	for i := range b.incomes {
		if b.incomes[i].ID == in.ID {
			b.incomes[i] = in
			return in, nil
		}
	}
	return core.Income{}, core.ErrNotFound
}

func (s *Store) ToggleIncomePending(_ context.Context, userID, id string) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return core.Income{}, core.ErrNotFound
	}
	for i := range b.incomes {
		if b.incomes[i].ID == id {
			b.incomes[i].Pending = !b.incomes[i].Pending
			return b.incomes[i], nil
		}
	}
	return core.Income{}, core.ErrNotFound
}

func (s *Store) DeleteIncome(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return core.ErrNotFound
	}
	for i := range b.incomes {
		if b.incomes[i].ID == id {
			b.incomes = append(b.incomes[:i], b.incomes[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return []core.Expense{}, nil
	}
	return append([]core.Expense{}, b.expenses...), nil
}

func (s *Store) CreateExpense(_ context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.Date = e.Date.UTC()
	e.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, true)
	b.expenses = append(b.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.Date = e.Date.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return core.Expense{}, core.ErrNotFound
	}
	for i := range b.expenses {
		if b.expenses[i].ID == e.ID {
			b.expenses[i] = e
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.book(userID, false)
	if b == nil {
		return core.ErrNotFound
	}
	for i := range b.expenses {
		if b.expenses[i].ID == id {
			b.expenses = append(b.expenses[:i], b.expenses[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Close() error { return nil }
