// Package postgres stores the ledger in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"saldo/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS incomes (
    seq          BIGSERIAL PRIMARY KEY,
    id           UUID        NOT NULL UNIQUE,
    user_id      TEXT        NOT NULL,
    amount_cents BIGINT      NOT NULL CHECK (amount_cents > 0),
    occurred_at  TIMESTAMPTZ NOT NULL,
    note         TEXT        NOT NULL DEFAULT '',
    category     TEXT        NOT NULL,
    is_pending   BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_incomes_user ON incomes (user_id, seq);

CREATE TABLE IF NOT EXISTS expenses (
    seq          BIGSERIAL PRIMARY KEY,
    id           UUID        NOT NULL UNIQUE,
    user_id      TEXT        NOT NULL,
    amount_cents BIGINT      NOT NULL CHECK (amount_cents > 0),
    occurred_at  TIMESTAMPTZ NOT NULL,
    note         TEXT        NOT NULL DEFAULT '',
    category     TEXT        NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses (user_id, seq);
`

const (
	incomeColumns  = `id::text, amount_cents, occurred_at, note, category, is_pending`
	expenseColumns = `id::text, amount_cents, occurred_at, note, category`
)

type Repository struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanIncome(row pgx.Row) (core.Income, error) {
	var in core.Income
	if err := row.Scan(&in.ID, &in.Amount.Cents, &in.Date, &in.Note, &in.Category, &in.Pending); err != nil {
		return core.Income{}, err
	}
	in.Date = in.Date.UTC()
	return in, nil
}

func scanExpense(row pgx.Row) (core.Expense, error) {
	var e core.Expense
	if err := row.Scan(&e.ID, &e.Amount.Cents, &e.Date, &e.Note, &e.Category); err != nil {
		return core.Expense{}, err
	}
	e.Date = e.Date.UTC()
	return e, nil
}

// validID filters out ids that cannot be a UUID so they surface as not
// found rather than as a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Repository) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	incomes := []core.Income{}
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return incomes, nil
}

func (r *Repository) CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO incomes (id, user_id, amount_cents, occurred_at, note, category, is_pending)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+incomeColumns,
		uuid.New(), userID, in.Amount.Cents, in.Date, in.Note, in.Category, in.Pending)
	created, err := scanIncome(row)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if !validID(in.ID) {
		return core.Income{}, core.ErrNotFound
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE incomes
		 SET amount_cents = $1, occurred_at = $2, note = $3, category = $4, is_pending = $5, updated_at = now()
		 WHERE user_id = $6 AND id = $7
		 RETURNING `+incomeColumns,
		in.Amount.Cents, in.Date, in.Note, in.Category, in.Pending, userID, in.ID)
	updated, err := scanIncome(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	return updated, nil
}

func (r *Repository) ToggleIncomePending(ctx context.Context, userID, id string) (core.Income, error) {
	if !validID(id) {
		return core.Income{}, core.ErrNotFound
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE incomes SET is_pending = NOT is_pending, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+incomeColumns, userID, id)
	in, err := scanIncome(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("toggle income: %w", err)
	}
	return in, nil
}

func (r *Repository) DeleteIncome(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return core.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM incomes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *Repository) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, occurred_at, note, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+expenseColumns,
		uuid.New(), userID, e.Amount.Cents, e.Date, e.Note, e.Category)
	created, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if !validID(e.ID) {
		return core.Expense{}, core.ErrNotFound
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE expenses
		 SET amount_cents = $1, occurred_at = $2, note = $3, category = $4, updated_at = now()
		 WHERE user_id = $5 AND id = $6
		 RETURNING `+expenseColumns,
		e.Amount.Cents, e.Date, e.Note, e.Category, userID, e.ID)
	updated, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return core.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
