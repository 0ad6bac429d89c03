package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindIncome Kind = iota + 1
	KindExpense
)

// OtherCategory is the open escape value accepted by both category sets.
const OtherCategory = "Other"

var (
	incomeCategories  = []string{"Salary", "Freelance", "Gifts", "Investment"}
	expenseCategories = []string{"Groceries", "Rent", "Utilities", "Entertainment", "Transport", "Health"}
)

type (
	// Kind tags a Record as income or expense.
	Kind int

	Transaction struct {
		ID     string
		Amount Money
		Date   time.Time
		Note   string
	}

	Income struct {
		Transaction
		Category string
		Pending  bool // awaiting confirmation, excluded from balance
	}

	Expense struct {
		Transaction
		Category string
	}

	// Record is the tagged form of an Income or Expense, used wherever
	// both collections are consumed together.
	Record struct {
		Kind     Kind
		ID       string
		Amount   Money
		Date     time.Time
		Note     string
		Category string
		Pending  bool
	}
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrMissingDate     = errors.New("missing date")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNoteTooLong     = errors.New("note too long (max 500 characters)")
)

const maxNoteLength = 500

func (k Kind) String() string {
	switch k {
	case KindIncome:
		return "income"
	case KindExpense:
		return "expense"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "income"/"incomes" and "expense"/"expenses".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes":
		return KindIncome, nil
	case "expense", "expenses":
		return KindExpense, nil
	}
	return 0, fmt.Errorf("unknown record kind %q", s)
}

// IncomeCategories returns the enumerated income categories, Other last.
func IncomeCategories() []string {
	return append(append([]string(nil), incomeCategories...), OtherCategory)
}

// ExpenseCategories returns the enumerated expense categories, Other last.
func ExpenseCategories() []string {
	return append(append([]string(nil), expenseCategories...), OtherCategory)
}

func ValidIncomeCategory(c string) bool {
	return c == OtherCategory || contains(incomeCategories, c)
}

func ValidExpenseCategory(c string) bool {
	return c == OtherCategory || contains(expenseCategories, c)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (t Transaction) validate() error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Transaction.validate(); err != nil {
		return err
	}
	if !ValidIncomeCategory(i.Category) {
		return fmt.Errorf("%w: %q is not an income category", ErrInvalidCategory, i.Category)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Transaction.validate(); err != nil {
		return err
	}
	if !ValidExpenseCategory(e.Category) {
		return fmt.Errorf("%w: %q is not an expense category", ErrInvalidCategory, e.Category)
	}
	return nil
}

func (i Income) Record() Record {
	return Record{
		Kind:     KindIncome,
		ID:       i.ID,
		Amount:   i.Amount,
		Date:     i.Date,
		Note:     i.Note,
		Category: i.Category,
		Pending:  i.Pending,
	}
}

func (e Expense) Record() Record {
	return Record{
		Kind:     KindExpense,
		ID:       e.ID,
		Amount:   e.Amount,
		Date:     e.Date,
		Note:     e.Note,
		Category: e.Category,
	}
}

// NewDate returns midnight UTC of the given calendar day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
