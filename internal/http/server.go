package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"saldo/internal/backend"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/services"
)

const (
	defaultRequestTimeout = 15 * time.Second
	readyTimeout          = 2 * time.Second
	maxBodyBytes          = 1 << 16
)

// Options configures NewServer. Zero values fall back to sensible defaults.
type Options struct {
	Logger         *log.Logger
	Pinger         backend.Pinger
	Auth           AuthConfig
	AllowedOrigins []string
	CurrencySymbol string
	Grouping       core.Grouping
	RequestTimeout time.Duration
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server

	ledger   *services.LedgerService
	pinger   backend.Pinger
	auth     AuthConfig
	currency string
	grouping core.Grouping
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires the routes and returns a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		ledger:   ledger,
		pinger:   opts.Pinger,
		auth:     opts.Auth,
		currency: opts.CurrencySymbol,
		grouping: opts.Grouping,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: s.routes(opts),
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(log.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", UserIDHeader},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/categories", s.handleCategories)

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", s.handleLedger)
			r.Get("/summary", s.handleSummary)
			r.Get("/monthly", s.handleMonthly)
			r.Get("/categories", s.handleBreakdown)
		})

		r.Get("/incomes", s.handleListIncomes)
		r.Get("/expenses", s.handleListExpenses)

		// Writes are throttled per user
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware(s.rateLimitKey, func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			}))

			r.Post("/incomes", s.handleCreateIncome)
			r.Put("/incomes/{id}", s.handleUpdateIncome)
			r.Delete("/incomes/{id}", s.handleDeleteIncome)
			r.Post("/incomes/{id}/toggle", s.handleToggleIncome)

			r.Post("/expenses", s.handleCreateExpense)
			r.Put("/expenses/{id}", s.handleUpdateExpense)
			r.Delete("/expenses/{id}", s.handleDeleteExpense)
		})
	})

	return r
}

func (s *Server) rateLimitKey(r *http.Request) string {
	if userID, ok := UserID(r.Context()); ok {
		return "user:" + userID
	}
	return "ip:" + s.detector.ClientIP(r)
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
