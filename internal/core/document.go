package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrMissingPending = errors.New("missing isPending")
)

// IncomeDocument is the wire shape of an income as delivered by the
// upstream store or submitted by a client.
type IncomeDocument struct {
	ID        string          `json:"id,omitempty"`
	Amount    json.RawMessage `json:"amount"`
	Date      string          `json:"date"`
	Note      string          `json:"note"`
	Category  string          `json:"category"`
	IsPending *bool           `json:"isPending"`
}

// ExpenseDocument is the wire shape of an expense. It has no isPending.
type ExpenseDocument struct {
	ID       string          `json:"id,omitempty"`
	Amount   json.RawMessage `json:"amount"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`
	Category string          `json:"category"`
}

// Income decodes the document. Malformed amounts and dates fail with a
// labelled error instead of being coerced to zero.
func (d IncomeDocument) Income() (Income, error) {
	tx, err := decodeTransaction(d.ID, d.Amount, d.Date, d.Note)
	if err != nil {
		return Income{}, fmt.Errorf("income %q: %w", d.ID, err)
	}
	if d.IsPending == nil {
		return Income{}, fmt.Errorf("income %q: %w", d.ID, ErrMissingPending)
	}
	return Income{Transaction: tx, Category: strings.TrimSpace(d.Category), Pending: *d.IsPending}, nil
}

func (d ExpenseDocument) Expense() (Expense, error) {
	tx, err := decodeTransaction(d.ID, d.Amount, d.Date, d.Note)
	if err != nil {
		return Expense{}, fmt.Errorf("expense %q: %w", d.ID, err)
	}
	return Expense{Transaction: tx, Category: strings.TrimSpace(d.Category)}, nil
}

// DecodeIncomes decodes a JSON array of income documents.
func DecodeIncomes(data []byte) ([]Income, error) {
	var docs []IncomeDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode incomes: %w", err)
	}
	out := make([]Income, 0, len(docs))
	for _, d := range docs {
		inc, err := d.Income()
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, nil
}

// DecodeExpenses decodes a JSON array of expense documents.
func DecodeExpenses(data []byte) ([]Expense, error) {
	var docs []ExpenseDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	out := make([]Expense, 0, len(docs))
	for _, d := range docs {
		exp, err := d.Expense()
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, nil
}

func decodeTransaction(id string, amount json.RawMessage, date, note string) (Transaction, error) {
	m, err := decodeAmount(amount)
	if err != nil {
		return Transaction{}, err
	}
	t, err := ParseDate(date)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{ID: id, Amount: m, Date: t, Note: strings.TrimSpace(note)}, nil
}

func decodeAmount(raw json.RawMessage) (Money, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Money{}, ErrMissingAmount
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		return ParseAmount(s)
	}
	// Only JSON numbers are parsed, so a comma separator cannot appear here.
	return ParseAmount(string(raw))
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. The
// result is always in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
