package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIncomeValidate(t *testing.T) {
	good := Income{
		Transaction: Transaction{Amount: Cents(100), Date: NewDate(2024, 1, 5)},
		Category:    "Salary",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	other := good
	other.Category = OtherCategory
	if err := other.Validate(); err != nil {
		t.Fatalf("Other must be accepted, got %v", err)
	}

	bads := []struct {
		name string
		inc  Income
		want error
	}{
		{"zero date", Income{Transaction: Transaction{Amount: Cents(1)}, Category: "Salary"}, ErrMissingDate},
		{"zero amount", Income{Transaction: Transaction{Date: NewDate(2024, 1, 1)}, Category: "Salary"}, ErrInvalidAmount},
		{"expense category", Income{Transaction: Transaction{Amount: Cents(1), Date: NewDate(2024, 1, 1)}, Category: "Rent"}, ErrInvalidCategory},
		{"long note", Income{Transaction: Transaction{Amount: Cents(1), Date: NewDate(2024, 1, 1), Note: strings.Repeat("x", 501)}, Category: "Salary"}, ErrNoteTooLong},
	}
	for _, tc := range bads {
		if err := tc.inc.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestNoteLengthCountsCharacters(t *testing.T) {
	e := Expense{
		Transaction: Transaction{Amount: Cents(1), Date: NewDate(2024, 1, 1), Note: strings.Repeat("é", 500)},
		Category:    "Rent",
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("500 two-byte characters rejected: %v", err)
	}
	e.Note = strings.Repeat("₹", 501)
	if err := e.Validate(); !errors.Is(err, ErrNoteTooLong) {
		t.Fatalf("expected ErrNoteTooLong, got %v", err)
	}
}

func TestParseDateNormalizesToUTC(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-31T23:30:00-05:00", time.Date(2024, 2, 1, 4, 30, 0, 0, time.UTC)},
		{"2024-02-01T02:00:00+05:30", time.Date(2024, 1, 31, 20, 30, 0, 0, time.UTC)},
		{"2024-01-15", NewDate(2024, 1, 15)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Transaction: Transaction{Amount: Cents(300), Date: NewDate(2024, 1, 15)},
		Category:    "Rent",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Category = "Salary"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestCategoriesEndWithOther(t *testing.T) {
	inc := IncomeCategories()
	exp := ExpenseCategories()
	if inc[len(inc)-1] != OtherCategory || exp[len(exp)-1] != OtherCategory {
		t.Fatalf("Other must be last: %v %v", inc, exp)
	}
	// Returned slices are copies.
	inc[0] = "mutated"
	if IncomeCategories()[0] != "Salary" {
		t.Fatalf("IncomeCategories leaked internal slice")
	}
}

func TestRecordTagging(t *testing.T) {
	inc := Income{Transaction: Transaction{ID: "a", Amount: Cents(1)}, Category: "Gifts", Pending: true}
	exp := Expense{Transaction: Transaction{ID: "a", Amount: Cents(2)}, Category: "Rent"}
	if r := inc.Record(); r.Kind != KindIncome || !r.Pending || r.Category != "Gifts" {
		t.Fatalf("unexpected income record %+v", r)
	}
	if r := exp.Record(); r.Kind != KindExpense || r.Pending {
		t.Fatalf("unexpected expense record %+v", r)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"income": KindIncome, "Expenses": KindExpense, " incomes ": KindIncome} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDecodeIncomes(t *testing.T) {
	data := []byte(`[
		{"id":"i1","amount":1000,"date":"2024-01-05","category":"Salary","isPending":false},
		{"id":"i2","amount":"500.50","date":"2024-01-10T09:30:00Z","note":" gift ","category":"Gifts","isPending":true}
	]`)
	incs, err := DecodeIncomes(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(incs) != 2 {
		t.Fatalf("expected 2 incomes, got %d", len(incs))
	}
	if incs[0].Amount.Cents != 100000 || incs[0].Pending {
		t.Fatalf("unexpected first income %+v", incs[0])
	}
	if incs[1].Amount.Cents != 50050 || !incs[1].Pending || incs[1].Note != "gift" {
		t.Fatalf("unexpected second income %+v", incs[1])
	}
	if !incs[1].Date.Equal(time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", incs[1].Date)
	}
}

func TestDecodeMalformedDocuments(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"missing amount", `[{"id":"x","date":"2024-01-01","category":"Salary","isPending":false}]`, ErrMissingAmount},
		{"null amount", `[{"id":"x","amount":null,"date":"2024-01-01","category":"Salary","isPending":false}]`, ErrMissingAmount},
		{"non-numeric amount", `[{"id":"x","amount":"lots","date":"2024-01-01","category":"Salary","isPending":false}]`, ErrInvalidAmount},
		{"boolean amount", `[{"id":"x","amount":true,"date":"2024-01-01","category":"Salary","isPending":false}]`, ErrInvalidAmount},
		{"missing date", `[{"id":"x","amount":1,"category":"Salary","isPending":false}]`, ErrMissingDate},
		{"bad date", `[{"id":"x","amount":1,"date":"yesterday","category":"Salary","isPending":false}]`, ErrInvalidDate},
		{"missing isPending", `[{"id":"x","amount":1,"date":"2024-01-01","category":"Salary"}]`, ErrMissingPending},
	}
	for _, tc := range cases {
		_, err := DecodeIncomes([]byte(tc.data))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if !strings.Contains(err.Error(), `income "x"`) {
			t.Fatalf("%s: error should name the record: %v", tc.name, err)
		}
	}
}

func TestDecodeExpenses(t *testing.T) {
	exps, err := DecodeExpenses([]byte(`[{"id":"e1","amount":300,"date":"2024-01-15","category":"Rent"}]`))
	if err != nil || len(exps) != 1 || exps[0].Amount.Cents != 30000 {
		t.Fatalf("unexpected decode %+v err=%v", exps, err)
	}
	if _, err := DecodeExpenses([]byte(`[{"id":"e2","amount":0,"date":"2024-01-15","category":"Rent"}]`)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
}
