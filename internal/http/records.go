package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"saldo/internal/core"
)

var errBadRequest = errors.New("bad request")

type incomeJSON struct {
	ID        string     `json:"id"`
	Amount    core.Money `json:"amount"`
	Date      string     `json:"date"`
	Note      string     `json:"note"`
	Category  string     `json:"category"`
	IsPending bool       `json:"isPending"`
}

type expenseJSON struct {
	ID       string     `json:"id"`
	Amount   core.Money `json:"amount"`
	Date     string     `json:"date"`
	Note     string     `json:"note"`
	Category string     `json:"category"`
}

// formatDate renders calendar days as YYYY-MM-DD and anything with a time
// of day as RFC 3339. Both forms are accepted back by core.ParseDate.
func formatDate(t time.Time) string {
	if t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())) && t.Location() == time.UTC {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func toIncomeJSON(in core.Income) incomeJSON {
	return incomeJSON{
		ID:        in.ID,
		Amount:    in.Amount,
		Date:      formatDate(in.Date),
		Note:      in.Note,
		Category:  in.Category,
		IsPending: in.Pending,
	}
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:       e.ID,
		Amount:   e.Amount,
		Date:     formatDate(e.Date),
		Note:     e.Note,
		Category: e.Category,
	}
}

func incomesJSON(incomes []core.Income) []incomeJSON {
	out := make([]incomeJSON, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeJSON(in))
	}
	return out
}

func expensesJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

// decodeJSON reads exactly one JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: content type must be application/json", errBadRequest)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: body must hold a single object", errBadRequest)
	}
	return nil
}

func decodeIncome(w http.ResponseWriter, r *http.Request) (core.Income, error) {
	var doc core.IncomeDocument
	if err := decodeJSON(w, r, &doc); err != nil {
		return core.Income{}, err
	}
	in, err := doc.Income()
	if err != nil {
		return core.Income{}, err
	}
	return in, in.Validate()
}

func decodeExpense(w http.ResponseWriter, r *http.Request) (core.Expense, error) {
	var doc core.ExpenseDocument
	if err := decodeJSON(w, r, &doc); err != nil {
		return core.Expense{}, err
	}
	e, err := doc.Expense()
	if err != nil {
		return core.Expense{}, err
	}
	return e, e.Validate()
}
