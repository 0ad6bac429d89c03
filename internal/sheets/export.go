// Package sheets exports a computed ledger view into a spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saldo/internal/ledger"
	"saldo/internal/log"
)

// exportColumns bounds the cleared range; the widest block has five columns.
const exportColumns = "A:E"

var (
	monthlyHeader  = []any{"Month", "Key", "Income", "Expenses", "Net"}
	categoryHeader = []any{"Category", "Total"}
)

// SummaryRows lists the headline figures, one per row. Amounts are written
// as numbers so the sheet can sum them.
func SummaryRows(s ledger.Summary) [][]any {
	return [][]any{
		{"Pending income", s.TotalPendingIncome.Float64()},
		{"Confirmed income", s.TotalConfirmedIncome.Float64()},
		{"Expenses", s.TotalExpenses.Float64()},
		{"Balance", s.Balance.Float64()},
	}
}

// MonthlyRows renders the monthly series under a header row. An empty
// series yields the header and a single "Insufficient data" row.
func MonthlyRows(monthly []ledger.MonthTotals) ([][]any, error) {
	rows := [][]any{monthlyHeader}
	if len(monthly) == 0 {
		return append(rows, []any{"Insufficient data"}), nil
	}
	for _, m := range monthly {
		net, err := m.Income.Sub(m.Expenses)
		if err != nil {
			return nil, fmt.Errorf("month %s: %w", m.Key, err)
		}
		rows = append(rows, []any{m.Label, m.Key, m.Income.Float64(), m.Expenses.Float64(), net.Float64()})
	}
	return rows, nil
}

// CategoryRows renders a breakdown under a header row, in breakdown order.
func CategoryRows(b ledger.Breakdown) [][]any {
	rows := make([][]any, 0, len(b)+1)
	rows = append(rows, categoryHeader)
	for _, ct := range b {
		name := ct.Category
		if name == "" {
			name = "(uncategorized)"
		}
		rows = append(rows, []any{name, ct.Total.Float64()})
	}
	return rows
}

// Layout stacks every block of the view into one grid, separated by blank
// rows, starting with a title row naming the user and export time.
func Layout(userID string, view ledger.View, at time.Time) ([][]any, error) {
	monthly, err := MonthlyRows(view.Monthly)
	if err != nil {
		return nil, fmt.Errorf("monthly rows: %w", err)
	}

	var grid [][]any
	section := func(title string, rows [][]any) {
		grid = append(grid, []any{}, []any{title})
		grid = append(grid, rows...)
	}
	grid = append(grid, []any{"Ledger export", userID, at.UTC().Format(time.RFC3339)})
	section("Summary", SummaryRows(view.Summary))
	section("Monthly", monthly)
	section("Income by category", CategoryRows(view.IncomeByCategory))
	section("Expenses by category", CategoryRows(view.ExpensesByCategory))
	return grid, nil
}

// Exporter writes views into a single sheet, replacing its previous contents.
type Exporter struct {
	values    ValuesWriter
	sheetName string
	logger    *log.Logger
	now       func() time.Time
}

func NewExporter(values ValuesWriter, sheetName string, logger *log.Logger) (*Exporter, error) {
	if values == nil {
		return nil, errors.New("sheets: nil values writer")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		return nil, errors.New("sheets: empty sheet name")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Exporter{
		values:    values,
		sheetName: sheetName,
		logger:    logger.WithComponent(log.ComponentSheets),
		now:       time.Now,
	}, nil
}

// Range qualifies cells with the exporter's sheet name in A1 notation.
func (e *Exporter) Range(cells string) string {
	return QuoteSheetName(e.sheetName) + "!" + cells
}

// QuoteSheetName quotes a sheet name for A1 notation, doubling embedded quotes.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Export clears the sheet and writes the layout of view in one update.
func (e *Exporter) Export(ctx context.Context, userID string, view ledger.View) error {
	grid, err := Layout(userID, view, e.now())
	if err != nil {
		return fmt.Errorf("export %s: %w", userID, err)
	}
	if err := e.values.ClearRange(ctx, e.Range(exportColumns)); err != nil {
		return fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}
	if err := e.values.WriteRange(ctx, e.Range("A1"), grid); err != nil {
		return fmt.Errorf("write sheet %s: %w", e.sheetName, err)
	}

	sum := view.Summary
	e.logger.InfoContext(ctx, "Ledger exported", log.NewFields().
		WithUser(userID).
		WithOperation(log.OpExport).
		WithSummary(sum.TotalPendingIncome, sum.TotalConfirmedIncome, sum.TotalExpenses, sum.Balance).
		ToSlice()...)
	return nil
}
