package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/rates"
	"fintrack/internal/services"
)

// Server exposes the aggregation core as thin JSON endpoints. All domain
// decisions live in the services and rates packages; handlers only parse,
// delegate, and encode.
type Server struct {
	http.Server

	cache        *rates.Cache
	converter    *rates.Converter
	budgets      *services.BudgetService
	dashboard    *services.DashboardService
	transactions *services.TransactionService
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, cache *rates.Cache, converter *rates.Converter,
	budgets *services.BudgetService, dashboard *services.DashboardService,
	transactions *services.TransactionService) *Server {

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		cache:        cache,
		converter:    converter,
		budgets:      budgets,
		dashboard:    dashboard,
		transactions: transactions,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/currency/rate", s.withRequestLogging(s.handleExchangeRate))
	mux.HandleFunc("GET /api/currency/convert", s.withRequestLogging(s.handleConvert))
	mux.HandleFunc("GET /api/currency/rates", s.withRequestLogging(s.handleAllRates))
	mux.HandleFunc("GET /api/currency/symbol/{code}", s.withRequestLogging(s.handleSymbol))

	mux.HandleFunc("GET /api/dashboard/user/{id}", s.withRequestLogging(s.handleSummary))
	mux.HandleFunc("GET /api/dashboard/user/{id}/expenses-by-category", s.withRequestLogging(s.handleExpensesByCategory))
	mux.HandleFunc("GET /api/dashboard/user/{id}/budget-vs-spending", s.withRequestLogging(s.handleBudgetVsSpending))
	mux.HandleFunc("GET /api/dashboard/user/{id}/recent-transactions", s.withRequestLogging(s.handleRecentTransactions))

	mux.HandleFunc("GET /api/budgets/user/{id}", s.withRequestLogging(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets/user/{id}", s.withRequestLogging(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/user/{id}/status", s.withRequestLogging(s.handleBudgetStatus))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withRequestLogging(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withRequestLogging(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/transactions/user/{id}", s.withRequestLogging(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions/user/{id}", s.withRequestLogging(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withRequestLogging(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withRequestLogging(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withRequestLogging(s.handleDeleteTransaction))

	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// withRequestLogging adds a request id, basic security headers, and
// start/finish logging around a handler.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
