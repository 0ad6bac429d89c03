package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/services"
	"saldo/internal/storage/memory"
)

const testSecret = "0123456789abcdef-test-secret"

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	srv *Server
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	svc := services.NewLedgerService(memory.New(), nil,
		services.WithLogger(log.Discard()),
		services.WithViewCache(cache.NewVersioned[ledger.View](16, time.Minute)))
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "Rs"
	}
	srv := NewServer(":0", svc, opts)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testServer{t: t, srv: srv}
}

// do sends a request as user (via X-User-ID when user is non-empty).
func (ts *testServer) do(method, path, user, body string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	return ts.serve(req)
}

func (ts *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)
	var env envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			ts.t.Fatalf("%s %s: body is not an envelope: %v (%q)", req.Method, req.URL.Path, err, rr.Body.String())
		}
	}
	return rr, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

type summaryBody struct {
	TotalPendingIncome   float64 `json:"totalPendingIncome"`
	TotalConfirmedIncome float64 `json:"totalConfirmedIncome"`
	TotalExpenses        float64 `json:"totalExpenses"`
	Balance              float64 `json:"balance"`
	Display              struct {
		Balance string `json:"balance"`
	} `json:"display"`
}

type monthlyBody struct {
	Monthly []struct {
		Key      string  `json:"key"`
		Month    string  `json:"month"`
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
	} `json:"monthly"`
	InsufficientData bool `json:"insufficientData"`
}

type recordBody struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Category  string  `json:"category"`
	IsPending bool    `json:"isPending"`
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, Options{Pinger: fakePinger{}})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr, env := ts.do(http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK || env.Status != "success" {
			t.Fatalf("%s status=%d env=%+v", path, rr.Code, env)
		}
	}

	down := newTestServer(t, Options{Pinger: fakePinger{err: errors.New("db gone")}})
	rr, env := down.do(http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable || env.Status != "error" {
		t.Fatalf("readyz with failing store: status=%d env=%+v", rr.Code, env)
	}
}

func TestAPIRequiresUser(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, path := range []string{"/api/ledger", "/api/incomes", "/api/categories"} {
		rr, env := ts.do(http.MethodGet, path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s status=%d, want 401", path, rr.Code)
		}
		if env.Status != "error" || env.Message == "" {
			t.Errorf("%s envelope=%+v", path, env)
		}
	}
}

func TestLedgerFlow(t *testing.T) {
	ts := newTestServer(t, Options{})
	const user = "alice"

	rr, env := ts.do(http.MethodPost, "/api/incomes", user,
		`{"amount":"1000","date":"2024-01-15","note":"pay","category":"Salary","isPending":false}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create income status=%d msg=%q", rr.Code, env.Message)
	}
	salary := decodeData[recordBody](t, env)
	if salary.ID == "" || salary.Amount != 1000 || salary.Date != "2024-01-15" {
		t.Fatalf("created income = %+v", salary)
	}

	rr, env = ts.do(http.MethodPost, "/api/incomes", user,
		`{"amount":500,"date":"2024-02-01","note":"","category":"Gifts","isPending":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create pending income status=%d msg=%q", rr.Code, env.Message)
	}
	gift := decodeData[recordBody](t, env)

	rr, env = ts.do(http.MethodPost, "/api/expenses", user,
		`{"amount":"300","date":"2024-01-20","note":"market","category":"Groceries"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status=%d msg=%q", rr.Code, env.Message)
	}

	rr, env = ts.do(http.MethodGet, "/api/ledger/summary", user, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d msg=%q", rr.Code, env.Message)
	}
	sum := decodeData[summaryBody](t, env)
	if sum.TotalPendingIncome != 500 || sum.TotalConfirmedIncome != 1000 || sum.TotalExpenses != 300 || sum.Balance != 700 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Display.Balance != "Rs 700.00" {
		t.Errorf("display balance = %q", sum.Display.Balance)
	}

	_, env = ts.do(http.MethodGet, "/api/ledger/monthly", user, "")
	monthly := decodeData[monthlyBody](t, env)
	if monthly.InsufficientData || len(monthly.Monthly) != 1 {
		t.Fatalf("monthly = %+v", monthly)
	}
	if m := monthly.Monthly[0]; m.Key != "2024-01" || m.Month != "Jan 2024" || m.Income != 1000 || m.Expenses != 300 {
		t.Errorf("January = %+v", m)
	}

	// Confirming the gift moves it into the balance and the series
	rr, env = ts.do(http.MethodPost, "/api/incomes/"+gift.ID+"/toggle", user, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status=%d msg=%q", rr.Code, env.Message)
	}
	if toggled := decodeData[recordBody](t, env); toggled.IsPending {
		t.Fatal("income still pending after toggle")
	}

	_, env = ts.do(http.MethodGet, "/api/ledger", user, "")
	full := decodeData[struct {
		Summary          summaryBody  `json:"summary"`
		Monthly          []any        `json:"monthly"`
		InsufficientData bool         `json:"insufficientData"`
		PendingIncomes   []recordBody `json:"pendingIncomes"`
		ConfirmedIncomes []recordBody `json:"confirmedIncomes"`
		Expenses         []recordBody `json:"expenses"`
		IncomeByCategory []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"incomeByCategory"`
	}](t, env)
	if full.Summary.Balance != 1200 || full.Summary.TotalPendingIncome != 0 {
		t.Errorf("summary after toggle = %+v", full.Summary)
	}
	if len(full.Monthly) != 2 || len(full.PendingIncomes) != 0 || len(full.ConfirmedIncomes) != 2 || len(full.Expenses) != 1 {
		t.Errorf("ledger after toggle: monthly=%d pending=%d confirmed=%d expenses=%d",
			len(full.Monthly), len(full.PendingIncomes), len(full.ConfirmedIncomes), len(full.Expenses))
	}
	if len(full.IncomeByCategory) != 2 || full.IncomeByCategory[0].Name != "Salary" || full.IncomeByCategory[1].Value != 500 {
		t.Errorf("income by category = %+v", full.IncomeByCategory)
	}

	rr, _ = ts.do(http.MethodDelete, "/api/incomes/"+salary.ID, user, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	_, env = ts.do(http.MethodGet, "/api/ledger/summary", user, "")
	if sum := decodeData[summaryBody](t, env); sum.Balance != 200 {
		t.Errorf("balance after delete = %v, want 200", sum.Balance)
	}
}

func TestSummaryDisplayGrouping(t *testing.T) {
	tests := []struct {
		name     string
		grouping core.Grouping
		want     string
	}{
		{"indian by default", core.GroupIndian, "Rs 12,34,567.89"},
		{"western", core.GroupWestern, "Rs 1,234,567.89"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Options{Grouping: tt.grouping})
			rr, env := ts.do(http.MethodPost, "/api/incomes", "alice",
				`{"amount":"1234567.89","date":"2024-01-15","category":"Salary","isPending":false}`)
			if rr.Code != http.StatusCreated {
				t.Fatalf("create status=%d msg=%q", rr.Code, env.Message)
			}
			_, env = ts.do(http.MethodGet, "/api/ledger/summary", "alice", "")
			if got := decodeData[summaryBody](t, env).Display.Balance; got != tt.want {
				t.Errorf("display balance = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOffsetDatesGroupByUTCMonth(t *testing.T) {
	ts := newTestServer(t, Options{})
	rr, env := ts.do(http.MethodPost, "/api/incomes", "alice",
		`{"amount":"100","date":"2024-01-31T23:30:00-05:00","category":"Salary","isPending":false}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d msg=%q", rr.Code, env.Message)
	}
	if created := decodeData[recordBody](t, env); created.Date != "2024-02-01T04:30:00Z" {
		t.Errorf("stored date = %q", created.Date)
	}

	_, env = ts.do(http.MethodGet, "/api/ledger/monthly", "alice", "")
	monthly := decodeData[monthlyBody](t, env)
	if len(monthly.Monthly) != 1 || monthly.Monthly[0].Key != "2024-02" || monthly.Monthly[0].Income != 100 {
		t.Fatalf("monthly = %+v", monthly.Monthly)
	}
}

func TestEmptyLedgerIsInsufficientData(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr, env := ts.do(http.MethodGet, "/api/ledger/monthly", "nobody", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(string(env.Data), `"monthly":[]`) {
		t.Errorf("monthly not an empty array: %s", env.Data)
	}
	if m := decodeData[monthlyBody](t, env); !m.InsufficientData {
		t.Error("insufficientData = false for empty ledger")
	}

	_, env = ts.do(http.MethodGet, "/api/ledger/categories", "nobody", "")
	if string(env.Data) != `{"incomeByCategory":[],"expensesByCategory":[]}` {
		t.Errorf("categories = %s", env.Data)
	}

	_, env = ts.do(http.MethodGet, "/api/ledger/summary", "nobody", "")
	if sum := decodeData[summaryBody](t, env); sum.Balance != 0 || sum.Display.Balance != "Rs 0.00" {
		t.Errorf("empty summary = %+v", sum)
	}
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t, Options{})
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed amount", "/api/incomes", `{"amount":"abc","date":"2024-01-01","category":"Salary","isPending":false}`, http.StatusUnprocessableEntity},
		{"zero amount", "/api/expenses", `{"amount":0,"date":"2024-01-01","category":"Rent"}`, http.StatusUnprocessableEntity},
		{"missing amount", "/api/expenses", `{"date":"2024-01-01","category":"Rent"}`, http.StatusUnprocessableEntity},
		{"bad date", "/api/expenses", `{"amount":1,"date":"01/02/2024","category":"Rent"}`, http.StatusUnprocessableEntity},
		{"missing isPending", "/api/incomes", `{"amount":1,"date":"2024-01-01","category":"Salary"}`, http.StatusUnprocessableEntity},
		{"income category on expense", "/api/expenses", `{"amount":1,"date":"2024-01-01","category":"Salary"}`, http.StatusUnprocessableEntity},
		{"note too long", "/api/expenses", `{"amount":1,"date":"2024-01-01","category":"Rent","note":"` + strings.Repeat("x", 501) + `"}`, http.StatusUnprocessableEntity},
		{"broken json", "/api/expenses", `{"amount":`, http.StatusBadRequest},
		{"unknown field", "/api/expenses", `{"amount":1,"date":"2024-01-01","category":"Rent","colour":"red"}`, http.StatusBadRequest},
		{"two objects", "/api/expenses", `{"amount":1,"date":"2024-01-01","category":"Rent"}{}`, http.StatusBadRequest},
		{"other is accepted", "/api/expenses", `{"amount":"1,50","date":"2024-01-01","category":"Other"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := ts.do(http.MethodPost, tt.path, "bob", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status=%d, want %d (msg=%q)", rr.Code, tt.want, env.Message)
			}
			if tt.want >= 400 && env.Status != "error" {
				t.Errorf("envelope status=%q", env.Status)
			}
		})
	}

	_, env := ts.do(http.MethodGet, "/api/expenses", "bob", "")
	if list := decodeData[[]recordBody](t, env); len(list) != 1 || list[0].Amount != 1.5 {
		t.Errorf("only the valid expense should be stored, got %+v", list)
	}
}

func TestUnknownRecords(t *testing.T) {
	ts := newTestServer(t, Options{})
	_, env := ts.do(http.MethodPost, "/api/expenses", "owner",
		`{"amount":10,"date":"2024-03-01","category":"Rent"}`)
	owned := decodeData[recordBody](t, env)

	tests := []struct {
		method, path, user, body string
	}{
		{http.MethodPut, "/api/incomes/missing", "owner", `{"amount":1,"date":"2024-01-01","category":"Salary","isPending":false}`},
		{http.MethodDelete, "/api/incomes/missing", "owner", ""},
		{http.MethodPost, "/api/incomes/missing/toggle", "owner", ""},
		{http.MethodDelete, "/api/expenses/" + owned.ID, "intruder", ""},
		{http.MethodPut, "/api/expenses/" + owned.ID, "intruder", `{"amount":1,"date":"2024-01-01","category":"Rent"}`},
	}
	for _, tt := range tests {
		rr, _ := ts.do(tt.method, tt.path, tt.user, tt.body)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s %s as %s: status=%d, want 404", tt.method, tt.path, tt.user, rr.Code)
		}
	}

	_, env = ts.do(http.MethodGet, "/api/expenses", "owner", "")
	if list := decodeData[[]recordBody](t, env); len(list) != 1 || list[0].Amount != 10 {
		t.Errorf("owner's expense changed: %+v", list)
	}
}

func TestUpdateExpense(t *testing.T) {
	ts := newTestServer(t, Options{})
	_, env := ts.do(http.MethodPost, "/api/expenses", "u", `{"amount":10,"date":"2024-03-01","category":"Rent"}`)
	e := decodeData[recordBody](t, env)

	rr, env := ts.do(http.MethodPut, "/api/expenses/"+e.ID, "u", `{"amount":"25.5","date":"2024-03-02","category":"Health"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d msg=%q", rr.Code, env.Message)
	}
	if got := decodeData[recordBody](t, env); got.ID != e.ID || got.Amount != 25.5 || got.Category != "Health" {
		t.Errorf("updated = %+v", got)
	}
	_, env = ts.do(http.MethodGet, "/api/ledger/summary", "u", "")
	if sum := decodeData[summaryBody](t, env); sum.TotalExpenses != 25.5 || sum.Balance != -25.5 {
		t.Errorf("summary after update = %+v", sum)
	}
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t, Options{})
	_, env := ts.do(http.MethodGet, "/api/categories", "u", "")
	cats := decodeData[categoriesResponse](t, env)
	if len(cats.Income) == 0 || cats.Income[len(cats.Income)-1] != "Other" {
		t.Errorf("income categories = %v", cats.Income)
	}
	if len(cats.Expense) == 0 || cats.Expense[0] != "Groceries" {
		t.Errorf("expense categories = %v", cats.Expense)
	}
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestJWTAuth(t *testing.T) {
	ts := newTestServer(t, Options{Auth: AuthConfig{Secret: testSecret, Issuer: "saldo", Audience: "saldo-web"}})
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	valid := jwt.RegisteredClaims{Subject: "carol", Issuer: "saldo", Audience: jwt.ClaimStrings{"saldo-web"}, ExpiresAt: future}
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, valid), http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "another-secret-of-16+", valid), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: "carol", Issuer: "saldo", Audience: jwt.ClaimStrings{"saldo-web"}, ExpiresAt: past}), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: "carol", Issuer: "saldo", Audience: jwt.ClaimStrings{"saldo-web"}}), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: "carol", Issuer: "other", Audience: jwt.ClaimStrings{"saldo-web"}, ExpiresAt: future}), http.StatusUnauthorized},
		{"wrong audience", "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: "carol", Issuer: "saldo", Audience: jwt.ClaimStrings{"x"}, ExpiresAt: future}), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Issuer: "saldo", Audience: jwt.ClaimStrings{"saldo-web"}, ExpiresAt: future}), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ledger/summary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr, env := ts.serve(req)
			if rr.Code != tt.want {
				t.Errorf("status=%d, want %d (msg=%q)", rr.Code, tt.want, env.Message)
			}
		})
	}

	// The development header is ignored once a secret is configured
	rr, _ := ts.do(http.MethodGet, "/api/ledger/summary", "carol", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("X-User-ID accepted with JWT enabled: status=%d", rr.Code)
	}
}

func TestJWTSubjectScopesData(t *testing.T) {
	ts := newTestServer(t, Options{Auth: AuthConfig{Secret: testSecret}})
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	tokenFor := func(sub string) string {
		return "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: sub, ExpiresAt: exp})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/expenses",
		bytes.NewBufferString(`{"amount":42,"date":"2024-05-05","category":"Transport"}`))
	req.Header.Set("Authorization", tokenFor("dave"))
	if rr, env := ts.serve(req); rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d msg=%q", rr.Code, env.Message)
	}

	for sub, want := range map[string]int{"dave": 1, "erin": 0} {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("Authorization", tokenFor(sub))
		_, env := ts.serve(req)
		if got := len(decodeData[[]recordBody](t, env)); got != want {
			t.Errorf("%s sees %d expenses, want %d", sub, got, want)
		}
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	ts := newTestServer(t, Options{RateLimit: ratelimit.Config{Requests: 2, Window: time.Minute}})
	body := `{"amount":1,"date":"2024-01-01","category":"Rent"}`

	for i := 0; i < 2; i++ {
		if rr, _ := ts.do(http.MethodPost, "/api/expenses", "busy", body); rr.Code != http.StatusCreated {
			t.Fatalf("request %d status=%d", i+1, rr.Code)
		}
	}
	rr, env := ts.do(http.MethodPost, "/api/expenses", "busy", body)
	if rr.Code != http.StatusTooManyRequests || env.Status != "error" {
		t.Fatalf("status=%d env=%+v, want 429", rr.Code, env)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Reads and other users are unaffected
	if rr, _ := ts.do(http.MethodGet, "/api/expenses", "busy", ""); rr.Code != http.StatusOK {
		t.Errorf("read status=%d", rr.Code)
	}
	if rr, _ := ts.do(http.MethodPost, "/api/expenses", "calm", body); rr.Code != http.StatusCreated {
		t.Errorf("other user status=%d", rr.Code)
	}
}

func TestResponseHeadersAndCORS(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: []string{"https://app.example"}})

	rr, _ := ts.do(http.MethodGet, "/healthz", "", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rr.Header().Get("Content-Type"))
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	pre := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(pre, req)
	if got := pre.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("preflight allow-origin = %q", got)
	}

	rr, env := ts.do(http.MethodGet, "/nope", "", "")
	if rr.Code != http.StatusNotFound || env.Status != "error" {
		t.Errorf("unknown route: status=%d env=%+v", rr.Code, env)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)); got != "2024-01-15" {
		t.Errorf("midnight UTC = %q", got)
	}
	if got := formatDate(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)); got != "2024-01-15T09:30:00Z" {
		t.Errorf("with time = %q", got)
	}
}
