package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists incomes and expenses in a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const (
	incomeColumns  = `id, amount_cents, occurred_at, note, category, is_pending`
	expenseColumns = `id, amount_cents, occurred_at, note, category`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in      core.Income
		date    string
		pending int64
	)
	if err := row.Scan(&in.ID, &in.Amount.Cents, &date, &in.Note, &in.Category, &pending); err != nil {
		return core.Income{}, err
	}
	d, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %q: stored date %q: %w", in.ID, date, err)
	}
	in.Date = d
	in.Pending = pending != 0
	return in, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e    core.Expense
		date string
	)
	if err := row.Scan(&e.ID, &e.Amount.Cents, &date, &e.Note, &e.Category); err != nil {
		return core.Expense{}, err
	}
	d, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %q: stored date %q: %w", e.ID, date, err)
	}
	e.Date = d
	return e, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = ? ORDER BY seq`, userID)
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

func (r *SQLiteRepository) CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	in.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, amount_cents, occurred_at, note, category, is_pending)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, userID, in.Amount.Cents, formatDate(in.Date), in.Note, in.Category, boolToInt(in.Pending))
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	slog.DebugContext(ctx, "Income saved to SQLite",
		"id", in.ID,
		"user_id", userID,
		"amount_cents", in.Amount.Cents,
		"pending", in.Pending)

	in.Date = in.Date.UTC()
	return in, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes
		 SET amount_cents = ?, occurred_at = ?, note = ?, category = ?, is_pending = ?,
		     updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE user_id = ? AND id = ?`,
		in.Amount.Cents, formatDate(in.Date), in.Note, in.Category, boolToInt(in.Pending), userID, in.ID)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if err := expectOne(res); err != nil {
		return core.Income{}, err
	}
	in.Date = in.Date.UTC()
	return in, nil
}

// ToggleIncomePending flips the flag in a single statement so concurrent
// toggles never lose an update.
func (r *SQLiteRepository) ToggleIncomePending(ctx context.Context, userID, id string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE incomes
		 SET is_pending = 1 - is_pending, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE user_id = ? AND id = ?
		 RETURNING `+incomeColumns, userID, id)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("toggle income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY seq`, userID)
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

func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, occurred_at, note, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Amount.Cents, formatDate(e.Date), e.Note, e.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"user_id", userID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	e.Date = e.Date.UTC()
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET amount_cents = ?, occurred_at = ?, note = ?, category = ?,
		     updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE user_id = ? AND id = ?`,
		e.Amount.Cents, formatDate(e.Date), e.Note, e.Category, userID, e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := expectOne(res); err != nil {
		return core.Expense{}, err
	}
	e.Date = e.Date.UTC()
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
